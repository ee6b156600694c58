package httphandler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	accessapp "github.com/coursery/coursery/internal/application/access"
	"github.com/coursery/coursery/internal/application/appcore"
	"github.com/coursery/coursery/internal/domain/access"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/httpserver"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Access handler errors.
var (
	ErrCourseIDRequired = errors.New("course_id is required")
	ErrProgressRequired = errors.New("progress is required")
)

// GrantAccessRequest represents the request to grant course access outside
// the order flow. A missing expiry means lifetime access.
type GrantAccessRequest struct {
	UserID    string  `json:"user_id"`
	CourseID  string  `json:"course_id"`
	ExpiresAt *string `json:"expires_at"`
}

// RevokeAccessRequest represents the request to revoke access.
type RevokeAccessRequest struct {
	Reason string `json:"reason"`
}

// ReactivateAccessRequest represents the request to restore expired access.
// A missing expiry means lifetime access.
type ReactivateAccessRequest struct {
	ExpiresAt *string `json:"expires_at"`
}

// UpdateProgressRequest represents the request to advance course progress.
type UpdateProgressRequest struct {
	Progress *int `json:"progress"`
}

// AccessResponse represents an access record in API responses.
type AccessResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	CourseID    string  `json:"course_id"`
	Status      string  `json:"status"`
	Progress    int     `json:"progress"`
	Completed   bool    `json:"completed"`
	PurchasedAt string  `json:"purchased_at"`
	ExpiresAt   *string `json:"expires_at,omitempty"`
	Version     int     `json:"version"`
}

// AccessListResponse represents a user's access records in API responses.
type AccessListResponse struct {
	Records []projection.AccessView `json:"records"`
	Total   int                     `json:"total"`
}

// AccessService defines the interface for access operations.
// Declared on the consumer side per project guidelines.
type AccessService interface {
	// GrantAccess grants a user access to a course outside the order flow.
	GrantAccess(ctx context.Context, cmd accessapp.GrantAccessCommand) (accessapp.Result, error)

	// RevokeAccess withdraws access, recording the reason.
	RevokeAccess(ctx context.Context, cmd accessapp.RevokeAccessCommand) (accessapp.Result, error)

	// ReactivateAccess restores expired access with a new expiry.
	ReactivateAccess(ctx context.Context, cmd accessapp.ReactivateAccessCommand) (accessapp.Result, error)

	// UpdateProgress advances a user's course completion percentage.
	UpdateProgress(ctx context.Context, cmd accessapp.UpdateProgressCommand) (accessapp.Result, error)

	// ListUserAccess lists all access records of a user.
	ListUserAccess(ctx context.Context, query accessapp.ListUserAccessQuery) (accessapp.ListResult, error)
}

// AccessHandler handles access-related HTTP requests.
type AccessHandler struct {
	accessService AccessService
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(accessService AccessService) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
	}
}

// RegisterRoutes registers access routes with the router.
func (h *AccessHandler) RegisterRoutes(r *httpserver.Router) {
	r.API().POST("/access", h.Grant)
	r.API().POST("/access/:id/revoke", h.Revoke)
	r.API().POST("/access/:id/reactivate", h.Reactivate)
	r.API().PATCH("/access/:id/progress", h.UpdateProgress)
	r.API().GET("/users/:id/access", h.ListUserAccess)
}

// Grant handles POST /api/v1/access.
// Grants a user access to a course, e.g. a manual or promotional grant.
func (h *AccessHandler) Grant(c echo.Context) error {
	var req GrantAccessRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.UserID == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrUserIDRequired.Error())
	}
	if req.CourseID == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrCourseIDRequired.Error())
	}

	userID, parseErr := uuid.ParseUUID(req.UserID)
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}
	courseID, parseErr := uuid.ParseUUID(req.CourseID)
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_COURSE_ID", "invalid course ID format")
	}

	expiresAt, expErr := parseExpiry(req.ExpiresAt)
	if expErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_EXPIRY", "expires_at must be an RFC 3339 timestamp")
	}

	cmd := accessapp.GrantAccessCommand{
		UserID:    userID,
		CourseID:  courseID,
		ExpiresAt: expiresAt,
	}

	result, err := h.accessService.GrantAccess(c.Request().Context(), cmd)
	if err != nil {
		return handleAccessError(c, err)
	}

	return httpserver.RespondCreated(c, ToAccessResponse(result.Record))
}

// Revoke handles POST /api/v1/access/:id/revoke.
// Withdraws access, recording the reason.
func (h *AccessHandler) Revoke(c echo.Context) error {
	accessID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ACCESS_ID", "invalid access ID format")
	}

	var req RevokeAccessRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.Reason == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrReasonRequired.Error())
	}

	cmd := accessapp.RevokeAccessCommand{
		AccessID: accessID,
		Reason:   req.Reason,
	}

	result, err := h.accessService.RevokeAccess(c.Request().Context(), cmd)
	if err != nil {
		return handleAccessError(c, err)
	}

	return httpserver.RespondOK(c, ToAccessResponse(result.Record))
}

// Reactivate handles POST /api/v1/access/:id/reactivate.
// Restores expired access with a new expiry.
func (h *AccessHandler) Reactivate(c echo.Context) error {
	accessID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ACCESS_ID", "invalid access ID format")
	}

	var req ReactivateAccessRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	expiresAt, expErr := parseExpiry(req.ExpiresAt)
	if expErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_EXPIRY", "expires_at must be an RFC 3339 timestamp")
	}

	cmd := accessapp.ReactivateAccessCommand{
		AccessID:  accessID,
		ExpiresAt: expiresAt,
	}

	result, err := h.accessService.ReactivateAccess(c.Request().Context(), cmd)
	if err != nil {
		return handleAccessError(c, err)
	}

	return httpserver.RespondOK(c, ToAccessResponse(result.Record))
}

// UpdateProgress handles PATCH /api/v1/access/:id/progress.
// Advances the completion percentage; progress never decreases.
func (h *AccessHandler) UpdateProgress(c echo.Context) error {
	accessID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ACCESS_ID", "invalid access ID format")
	}

	var req UpdateProgressRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.Progress == nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrProgressRequired.Error())
	}

	cmd := accessapp.UpdateProgressCommand{
		AccessID: accessID,
		Progress: *req.Progress,
	}

	result, err := h.accessService.UpdateProgress(c.Request().Context(), cmd)
	if err != nil {
		return handleAccessError(c, err)
	}

	return httpserver.RespondOK(c, ToAccessResponse(result.Record))
}

// ListUserAccess handles GET /api/v1/users/:id/access.
// Lists all access records of the user, ordered by course ID.
func (h *AccessHandler) ListUserAccess(c echo.Context) error {
	userID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	query := accessapp.ListUserAccessQuery{
		UserID: userID,
	}

	result, err := h.accessService.ListUserAccess(c.Request().Context(), query)
	if err != nil {
		return handleAccessError(c, err)
	}

	resp := AccessListResponse{
		Records: result.Records,
		Total:   result.TotalCount,
	}

	return httpserver.RespondOK(c, resp)
}

// Helper functions

// parseExpiry converts an optional RFC 3339 string into a time pointer.
func parseExpiry(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func handleAccessError(c echo.Context, err error) error {
	var valErr *appcore.ValidationError
	var nfErr *appcore.NotFoundError

	switch {
	case errors.As(err, &valErr):
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	case errors.Is(err, accessapp.ErrAccessExists):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "ACCESS_EXISTS",
			"access record for this user and course already exists")
	case errors.Is(err, accessapp.ErrNotExpired):
		return httpserver.RespondErrorWithCode(
			c, http.StatusUnprocessableEntity, "ACCESS_NOT_EXPIRED",
			"only expired access can be reactivated")
	case errors.As(err, &nfErr):
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "NOT_FOUND", nfErr.Error())
	case errors.Is(err, appcore.ErrConcurrencyConflict):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "CONCURRENCY_CONFLICT", "access record was modified concurrently")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToAccessResponse converts an access aggregate to AccessResponse.
func ToAccessResponse(a *access.Aggregate) AccessResponse {
	var expiresAt *string
	if a.ExpiresAt() != nil {
		formatted := a.ExpiresAt().Format(time.RFC3339)
		expiresAt = &formatted
	}

	return AccessResponse{
		ID:          a.ID().String(),
		UserID:      a.UserID().String(),
		CourseID:    a.CourseID().String(),
		Status:      a.Status().String(),
		Progress:    a.Progress().Value(),
		Completed:   a.IsCompleted(),
		PurchasedAt: a.PurchasedAt().Format(time.RFC3339),
		ExpiresAt:   expiresAt,
		Version:     a.Version(),
	}
}

// MockAccessService is a mock implementation of AccessService for testing.
type MockAccessService struct {
	records map[uuid.UUID]*access.Aggregate
}

// NewMockAccessService creates a new mock access service.
func NewMockAccessService() *MockAccessService {
	return &MockAccessService{
		records: make(map[uuid.UUID]*access.Aggregate),
	}
}

// AddRecord adds an access record to the mock service.
func (m *MockAccessService) AddRecord(a *access.Aggregate) {
	m.records[a.ID()] = a
}

// GrantAccess grants access in the mock service.
func (m *MockAccessService) GrantAccess(
	_ context.Context,
	cmd accessapp.GrantAccessCommand,
) (accessapp.Result, error) {
	for _, existing := range m.records {
		if existing.UserID() == cmd.UserID && existing.CourseID() == cmd.CourseID {
			return accessapp.Result{}, accessapp.ErrAccessExists
		}
	}

	a := access.NewAggregate(uuid.NewUUID())
	if err := a.Grant(cmd.UserID, cmd.CourseID, time.Now(), cmd.ExpiresAt); err != nil {
		return accessapp.Result{}, err
	}
	m.AddRecord(a)

	return accessapp.Result{Record: a}, nil
}

// RevokeAccess revokes access in the mock service.
func (m *MockAccessService) RevokeAccess(
	_ context.Context,
	cmd accessapp.RevokeAccessCommand,
) (accessapp.Result, error) {
	a, ok := m.records[cmd.AccessID]
	if !ok {
		return accessapp.Result{}, appcore.NewNotFoundError("access record", cmd.AccessID.String())
	}

	if err := a.Revoke(cmd.Reason); err != nil {
		return accessapp.Result{}, err
	}

	return accessapp.Result{Record: a}, nil
}

// ReactivateAccess reactivates expired access in the mock service.
func (m *MockAccessService) ReactivateAccess(
	_ context.Context,
	cmd accessapp.ReactivateAccessCommand,
) (accessapp.Result, error) {
	a, ok := m.records[cmd.AccessID]
	if !ok {
		return accessapp.Result{}, appcore.NewNotFoundError("access record", cmd.AccessID.String())
	}

	if a.Status() != access.StatusExpired {
		return accessapp.Result{}, accessapp.ErrNotExpired
	}
	if err := a.Reactivate(cmd.ExpiresAt); err != nil {
		return accessapp.Result{}, err
	}

	return accessapp.Result{Record: a}, nil
}

// UpdateProgress advances progress in the mock service.
func (m *MockAccessService) UpdateProgress(
	_ context.Context,
	cmd accessapp.UpdateProgressCommand,
) (accessapp.Result, error) {
	a, ok := m.records[cmd.AccessID]
	if !ok {
		return accessapp.Result{}, appcore.NewNotFoundError("access record", cmd.AccessID.String())
	}

	progress, err := access.NewProgress(cmd.Progress)
	if err != nil {
		return accessapp.Result{}, err
	}
	if err = a.UpdateProgress(progress); err != nil {
		return accessapp.Result{}, err
	}

	return accessapp.Result{Record: a}, nil
}

// ListUserAccess lists a user's access records from the mock service.
func (m *MockAccessService) ListUserAccess(
	_ context.Context,
	query accessapp.ListUserAccessQuery,
) (accessapp.ListResult, error) {
	views := make([]projection.AccessView, 0)
	for _, a := range m.records {
		if a.UserID() == query.UserID {
			views = append(views, mockAccessView(a))
		}
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].CourseID < views[j].CourseID
	})

	return accessapp.ListResult{
		Records:    views,
		TotalCount: len(views),
	}, nil
}

func mockAccessView(a *access.Aggregate) projection.AccessView {
	return projection.AccessView{
		AccessID:  a.ID().String(),
		UserID:    a.UserID().String(),
		CourseID:  a.CourseID().String(),
		Status:    a.Status().String(),
		Progress:  a.Progress().Value(),
		Completed: a.IsCompleted(),
		ExpiresAt: a.ExpiresAt(),
	}
}
