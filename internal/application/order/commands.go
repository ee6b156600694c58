package order

import "github.com/coursery/coursery/internal/domain/uuid"

// Command is the base interface for order commands.
type Command interface {
	CommandName() string
}

// PlaceOrderCommand places a new order for one or more courses.
// Amount and Currency describe the total price as entered at checkout.
type PlaceOrderCommand struct {
	UserID    uuid.UUID
	CourseIDs []uuid.UUID
	Amount    string
	Currency  string
}

func (c PlaceOrderCommand) CommandName() string { return "PlaceOrder" }

// PayOrderCommand records a successful payment for a pending order.
// Access to the ordered courses is granted as part of the same operation.
type PayOrderCommand struct {
	OrderID   uuid.UUID
	PaymentID string
}

func (c PayOrderCommand) CommandName() string { return "PayOrder" }

// FailPaymentCommand records a failed payment attempt for a pending order.
type FailPaymentCommand struct {
	OrderID uuid.UUID
	Reason  string
}

func (c FailPaymentCommand) CommandName() string { return "FailPayment" }

// RequestRefundCommand asks for a refund of a paid order. The refund is
// only performed when the courses' refund policies allow it.
type RequestRefundCommand struct {
	OrderID uuid.UUID
	Reason  string
}

func (c RequestRefundCommand) CommandName() string { return "RequestRefund" }

// CancelOrderCommand cancels an order that has not been paid yet.
type CancelOrderCommand struct {
	OrderID uuid.UUID
	Reason  string
}

func (c CancelOrderCommand) CommandName() string { return "CancelOrder" }
