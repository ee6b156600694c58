package httphandler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coursery/coursery/internal/application/appcore"
	userapp "github.com/coursery/coursery/internal/application/user"
	"github.com/coursery/coursery/internal/domain/user"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/httpserver"
)

// Pagination defaults for user listings.
const (
	defaultUserListLimit = 20
	maxUserListLimit     = 100
)

// User handler errors.
var (
	ErrEmailRequired     = errors.New("email is required")
	ErrFirstNameRequired = errors.New("first name is required")
	ErrLastNameRequired  = errors.New("last name is required")
)

// RegisterUserRequest represents the request to register a user account.
type RegisterUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

// UpdateProfileRequest represents the request to replace a user's profile.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

// ChangeEmailRequest represents the request to move a user to a new email.
type ChangeEmailRequest struct {
	Email string `json:"email"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Bio          string `json:"bio,omitempty"`
	RegisteredAt string `json:"registered_at"`
	Version      int    `json:"version"`
}

// UserListResponse represents a page of users in API responses.
type UserListResponse struct {
	Users   []UserResponse `json:"users"`
	Total   int            `json:"total"`
	HasMore bool           `json:"has_more"`
}

// UserService defines the interface for user operations.
// Declared on the consumer side per project guidelines.
type UserService interface {
	// Register registers a new user account.
	Register(ctx context.Context, cmd userapp.RegisterUserCommand) (userapp.Result, error)

	// UpdateProfile replaces a user's display profile.
	UpdateProfile(ctx context.Context, cmd userapp.UpdateProfileCommand) (userapp.Result, error)

	// ChangeEmail switches a user to a new email address.
	ChangeEmail(ctx context.Context, cmd userapp.ChangeEmailCommand) (userapp.Result, error)

	// GetUser gets a user by ID.
	GetUser(ctx context.Context, query userapp.GetUserQuery) (userapp.Result, error)

	// GetUserByEmail gets a user by email address.
	GetUserByEmail(ctx context.Context, query userapp.GetUserByEmailQuery) (userapp.Result, error)

	// ListUsers lists a page of users.
	ListUsers(ctx context.Context, query userapp.ListUsersQuery) (userapp.ListResult, error)
}

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	userService UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRoutes registers user routes with the router.
func (h *UserHandler) RegisterRoutes(r *httpserver.Router) {
	r.API().POST("/users", h.Register)
	r.API().GET("/users", h.List)
	r.API().GET("/users/by-email", h.GetByEmail)
	r.API().GET("/users/:id", h.Get)
	r.API().PUT("/users/:id", h.UpdateProfile)
	r.API().PUT("/users/:id/email", h.ChangeEmail)
}

// Register handles POST /api/v1/users.
// Registers a new user account.
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterUserRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if valErr := validateRegisterUserRequest(&req); valErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	}

	cmd := userapp.RegisterUserCommand{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}

	result, err := h.userService.Register(c.Request().Context(), cmd)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondCreated(c, ToUserResponse(result.User))
}

// UpdateProfile handles PUT /api/v1/users/:id.
// Replaces the user's display profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	var req UpdateProfileRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if valErr := validateUpdateProfileRequest(&req); valErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	}

	cmd := userapp.UpdateProfileCommand{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}

	result, err := h.userService.UpdateProfile(c.Request().Context(), cmd)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.User))
}

// ChangeEmail handles PUT /api/v1/users/:id/email.
// Switches the user to a new email address.
func (h *UserHandler) ChangeEmail(c echo.Context) error {
	userID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	var req ChangeEmailRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.Email == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrEmailRequired.Error())
	}

	cmd := userapp.ChangeEmailCommand{
		UserID:   userID,
		NewEmail: req.Email,
	}

	result, err := h.userService.ChangeEmail(c.Request().Context(), cmd)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.User))
}

// Get handles GET /api/v1/users/:id.
// Gets a user by ID.
func (h *UserHandler) Get(c echo.Context) error {
	userID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	query := userapp.GetUserQuery{
		UserID: userID,
	}

	result, err := h.userService.GetUser(c.Request().Context(), query)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.User))
}

// GetByEmail handles GET /api/v1/users/by-email.
// Gets a user by the email query parameter.
func (h *UserHandler) GetByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrEmailRequired.Error())
	}

	query := userapp.GetUserByEmailQuery{
		Email: email,
	}

	result, err := h.userService.GetUserByEmail(c.Request().Context(), query)
	if err != nil {
		return handleUserError(c, err)
	}

	return httpserver.RespondOK(c, ToUserResponse(result.User))
}

// List handles GET /api/v1/users.
// Lists users ordered by email, paginated with limit and offset.
func (h *UserHandler) List(c echo.Context) error {
	limit, offset := parseListPagination(c, defaultUserListLimit, maxUserListLimit)

	query := userapp.ListUsersQuery{
		Offset: offset,
		Limit:  limit,
	}

	result, err := h.userService.ListUsers(c.Request().Context(), query)
	if err != nil {
		return handleUserError(c, err)
	}

	users := make([]UserResponse, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, ToUserResponse(u))
	}

	resp := UserListResponse{
		Users:   users,
		Total:   result.TotalCount,
		HasMore: result.Offset+len(users) < result.TotalCount,
	}

	return httpserver.RespondOK(c, resp)
}

// Helper functions

func validateRegisterUserRequest(req *RegisterUserRequest) error {
	if req.Email == "" {
		return ErrEmailRequired
	}
	if req.FirstName == "" {
		return ErrFirstNameRequired
	}
	if req.LastName == "" {
		return ErrLastNameRequired
	}
	return nil
}

func validateUpdateProfileRequest(req *UpdateProfileRequest) error {
	if req.FirstName == "" {
		return ErrFirstNameRequired
	}
	if req.LastName == "" {
		return ErrLastNameRequired
	}
	return nil
}

// parseListPagination reads limit and offset query parameters, applying the
// given default and maximum page size.
func parseListPagination(c echo.Context, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, maxLimit)
		}
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	return limit, offset
}

func handleUserError(c echo.Context, err error) error {
	var valErr *appcore.ValidationError

	switch {
	case errors.As(err, &valErr):
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	case errors.Is(err, userapp.ErrEmailTaken):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "EMAIL_EXISTS", "email address is already in use")
	case errors.Is(err, appcore.ErrNotFound):
		return httpserver.RespondErrorWithCode(
			c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, appcore.ErrConcurrencyConflict):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "CONCURRENCY_CONFLICT", "user was modified concurrently")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToUserResponse converts a user aggregate to UserResponse.
func ToUserResponse(u *user.Aggregate) UserResponse {
	return UserResponse{
		ID:           u.ID().String(),
		Email:        u.Email().String(),
		FirstName:    u.Profile().FirstName(),
		LastName:     u.Profile().LastName(),
		Bio:          u.Profile().Bio(),
		RegisteredAt: u.RegisteredAt().Format(time.RFC3339),
		Version:      u.Version(),
	}
}

// MockUserService is a mock implementation of UserService for testing.
type MockUserService struct {
	users   map[uuid.UUID]*user.Aggregate
	byEmail map[string]*user.Aggregate
}

// NewMockUserService creates a new mock user service.
func NewMockUserService() *MockUserService {
	return &MockUserService{
		users:   make(map[uuid.UUID]*user.Aggregate),
		byEmail: make(map[string]*user.Aggregate),
	}
}

// AddUser adds a user to the mock service.
func (m *MockUserService) AddUser(u *user.Aggregate) {
	m.users[u.ID()] = u
	m.byEmail[u.Email().String()] = u
}

// Register registers a user in the mock service.
func (m *MockUserService) Register(
	_ context.Context,
	cmd userapp.RegisterUserCommand,
) (userapp.Result, error) {
	if _, exists := m.byEmail[cmd.Email]; exists {
		return userapp.Result{}, userapp.ErrEmailTaken
	}

	email, err := user.NewEmailAddress(cmd.Email)
	if err != nil {
		return userapp.Result{}, err
	}
	profile, err := user.NewProfile(cmd.FirstName, cmd.LastName, cmd.Bio)
	if err != nil {
		return userapp.Result{}, err
	}

	u := user.NewAggregate(uuid.NewUUID())
	if err = u.Register(email, profile); err != nil {
		return userapp.Result{}, err
	}
	m.AddUser(u)

	return userapp.Result{User: u}, nil
}

// UpdateProfile updates a user's profile in the mock service.
func (m *MockUserService) UpdateProfile(
	_ context.Context,
	cmd userapp.UpdateProfileCommand,
) (userapp.Result, error) {
	u, ok := m.users[cmd.UserID]
	if !ok {
		return userapp.Result{}, appcore.NewNotFoundError("user", cmd.UserID.String())
	}

	profile, err := user.NewProfile(cmd.FirstName, cmd.LastName, cmd.Bio)
	if err != nil {
		return userapp.Result{}, err
	}
	if err = u.UpdateProfile(profile); err != nil {
		return userapp.Result{}, err
	}

	return userapp.Result{User: u}, nil
}

// ChangeEmail changes a user's email in the mock service.
func (m *MockUserService) ChangeEmail(
	_ context.Context,
	cmd userapp.ChangeEmailCommand,
) (userapp.Result, error) {
	u, ok := m.users[cmd.UserID]
	if !ok {
		return userapp.Result{}, appcore.NewNotFoundError("user", cmd.UserID.String())
	}

	if existing, taken := m.byEmail[cmd.NewEmail]; taken && existing.ID() != u.ID() {
		return userapp.Result{}, userapp.ErrEmailTaken
	}

	email, err := user.NewEmailAddress(cmd.NewEmail)
	if err != nil {
		return userapp.Result{}, err
	}

	delete(m.byEmail, u.Email().String())
	if err = u.ChangeEmail(email); err != nil {
		return userapp.Result{}, err
	}
	m.byEmail[u.Email().String()] = u

	return userapp.Result{User: u}, nil
}

// GetUser gets a user from the mock service.
func (m *MockUserService) GetUser(
	_ context.Context,
	query userapp.GetUserQuery,
) (userapp.Result, error) {
	u, ok := m.users[query.UserID]
	if !ok {
		return userapp.Result{}, appcore.NewNotFoundError("user", query.UserID.String())
	}

	return userapp.Result{User: u}, nil
}

// GetUserByEmail gets a user by email from the mock service.
func (m *MockUserService) GetUserByEmail(
	_ context.Context,
	query userapp.GetUserByEmailQuery,
) (userapp.Result, error) {
	u, ok := m.byEmail[query.Email]
	if !ok {
		return userapp.Result{}, appcore.NewNotFoundError("user", query.Email)
	}

	return userapp.Result{User: u}, nil
}

// ListUsers lists users from the mock service, ordered by email.
func (m *MockUserService) ListUsers(
	_ context.Context,
	query userapp.ListUsersQuery,
) (userapp.ListResult, error) {
	all := make([]*user.Aggregate, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Email().String() < all[j].Email().String()
	})

	start := min(query.Offset, len(all))
	end := min(start+query.Limit, len(all))

	return userapp.ListResult{
		Users:      all[start:end],
		TotalCount: len(all),
		Offset:     query.Offset,
		Limit:      query.Limit,
	}, nil
}
