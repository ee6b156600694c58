package appcore

import (
	"context"
	"fmt"
)

// UseCase is the base interface for all use cases.
// TCommand - the command type (input)
// TResult - the result type (output)
type UseCase[TCommand any, TResult any] interface {
	// Execute runs the use case with the given command
	Execute(ctx context.Context, cmd TCommand) (TResult, error)
}

// Validator validates commands before execution
type Validator[T any] interface {
	// Validate checks command validity
	Validate(cmd T) error
}

// CommandHandler combines UseCase and Validator
type CommandHandler[TCommand any, TResult any] interface {
	UseCase[TCommand, TResult]
	Validator[TCommand]
}

// BaseUseCase contains common functionality for all use cases
type BaseUseCase struct{}

// WrapError wraps an error with operation context
func (b *BaseUseCase) WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// ValidateContext checks that the context has not been canceled
func (b *BaseUseCase) ValidateContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
