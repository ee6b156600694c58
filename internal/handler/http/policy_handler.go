package httphandler

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/coursery/coursery/internal/application/appcore"
	policyapp "github.com/coursery/coursery/internal/application/policy"
	"github.com/coursery/coursery/internal/domain/policy"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/httpserver"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Policy handler errors.
var (
	ErrNameRequired       = errors.New("name is required")
	ErrPolicyTypeRequired = errors.New("policy_type is required")
	ErrConditionsRequired = errors.New("conditions is required")
)

// CreatePolicyRequest represents the request to create a refund policy.
type CreatePolicyRequest struct {
	Name             string `json:"name"`
	PolicyType       string `json:"policy_type"`
	RefundPeriodDays int    `json:"refund_period_days"`
	Conditions       string `json:"conditions"`
}

// UpdatePolicyRequest represents the request to change a policy's terms.
// The type is fixed at creation and cannot be changed.
type UpdatePolicyRequest struct {
	Name             string `json:"name"`
	RefundPeriodDays int    `json:"refund_period_days"`
	Conditions       string `json:"conditions"`
}

// PolicyResponse represents a refund policy in API responses.
type PolicyResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PolicyType       string `json:"policy_type"`
	RefundPeriodDays int    `json:"refund_period_days"`
	Conditions       string `json:"conditions"`
	Status           string `json:"status"`
	Version          int    `json:"version"`
}

// PolicyUsageResponse represents the policy usage report in API responses.
type PolicyUsageResponse struct {
	Policies []projection.PolicyUsageView `json:"policies"`
	Total    int                          `json:"total"`
}

// PolicyService defines the interface for refund policy operations.
// Declared on the consumer side per project guidelines.
type PolicyService interface {
	// CreatePolicy creates a new refund policy.
	CreatePolicy(ctx context.Context, cmd policyapp.CreatePolicyCommand) (policyapp.Result, error)

	// UpdatePolicy changes the terms of an active policy.
	UpdatePolicy(ctx context.Context, cmd policyapp.UpdatePolicyCommand) (policyapp.Result, error)

	// DeprecatePolicy retires a policy from new course assignments.
	DeprecatePolicy(ctx context.Context, cmd policyapp.DeprecatePolicyCommand) (policyapp.Result, error)

	// ReactivatePolicy makes a deprecated policy assignable again.
	ReactivatePolicy(ctx context.Context, cmd policyapp.ReactivatePolicyCommand) (policyapp.Result, error)

	// GetPolicy gets a policy by ID.
	GetPolicy(ctx context.Context, query policyapp.GetPolicyQuery) (policyapp.Result, error)

	// ListPolicyUsage lists every policy with its assigned course count.
	ListPolicyUsage(ctx context.Context, query policyapp.ListPolicyUsageQuery) (policyapp.UsageResult, error)
}

// PolicyHandler handles refund policy HTTP requests.
type PolicyHandler struct {
	policyService PolicyService
}

// NewPolicyHandler creates a new PolicyHandler.
func NewPolicyHandler(policyService PolicyService) *PolicyHandler {
	return &PolicyHandler{
		policyService: policyService,
	}
}

// RegisterRoutes registers policy routes with the router.
func (h *PolicyHandler) RegisterRoutes(r *httpserver.Router) {
	r.API().POST("/policies", h.Create)
	r.API().GET("/policies/usage", h.ListUsage)
	r.API().GET("/policies/:id", h.Get)
	r.API().PUT("/policies/:id", h.Update)
	r.API().POST("/policies/:id/deprecate", h.Deprecate)
	r.API().POST("/policies/:id/reactivate", h.Reactivate)
}

// Create handles POST /api/v1/policies.
// Creates a new refund policy.
func (h *PolicyHandler) Create(c echo.Context) error {
	var req CreatePolicyRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if valErr := validateCreatePolicyRequest(&req); valErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	}

	cmd := policyapp.CreatePolicyCommand{
		Name:             req.Name,
		PolicyType:       req.PolicyType,
		RefundPeriodDays: req.RefundPeriodDays,
		Conditions:       req.Conditions,
	}

	result, err := h.policyService.CreatePolicy(c.Request().Context(), cmd)
	if err != nil {
		return handlePolicyError(c, err)
	}

	return httpserver.RespondCreated(c, ToPolicyResponse(result.Policy))
}

// Update handles PUT /api/v1/policies/:id.
// Changes the terms of an active policy. Refund checks always read the
// current terms, so the new window applies to past purchases as well.
func (h *PolicyHandler) Update(c echo.Context) error {
	policyID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_POLICY_ID", "invalid policy ID format")
	}

	var req UpdatePolicyRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.Name == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrNameRequired.Error())
	}

	cmd := policyapp.UpdatePolicyCommand{
		PolicyID:         policyID,
		Name:             req.Name,
		RefundPeriodDays: req.RefundPeriodDays,
		Conditions:       req.Conditions,
	}

	result, err := h.policyService.UpdatePolicy(c.Request().Context(), cmd)
	if err != nil {
		return handlePolicyError(c, err)
	}

	return httpserver.RespondOK(c, ToPolicyResponse(result.Policy))
}

// Deprecate handles POST /api/v1/policies/:id/deprecate.
// Retires the policy from new course assignments; courses already using
// it keep their refund terms.
func (h *PolicyHandler) Deprecate(c echo.Context) error {
	policyID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_POLICY_ID", "invalid policy ID format")
	}

	cmd := policyapp.DeprecatePolicyCommand{
		PolicyID: policyID,
	}

	result, err := h.policyService.DeprecatePolicy(c.Request().Context(), cmd)
	if err != nil {
		return handlePolicyError(c, err)
	}

	return httpserver.RespondOK(c, ToPolicyResponse(result.Policy))
}

// Reactivate handles POST /api/v1/policies/:id/reactivate.
// Makes a deprecated policy assignable again.
func (h *PolicyHandler) Reactivate(c echo.Context) error {
	policyID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_POLICY_ID", "invalid policy ID format")
	}

	cmd := policyapp.ReactivatePolicyCommand{
		PolicyID: policyID,
	}

	result, err := h.policyService.ReactivatePolicy(c.Request().Context(), cmd)
	if err != nil {
		return handlePolicyError(c, err)
	}

	return httpserver.RespondOK(c, ToPolicyResponse(result.Policy))
}

// Get handles GET /api/v1/policies/:id.
// Gets a policy by ID.
func (h *PolicyHandler) Get(c echo.Context) error {
	policyID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_POLICY_ID", "invalid policy ID format")
	}

	query := policyapp.GetPolicyQuery{
		PolicyID: policyID,
	}

	result, err := h.policyService.GetPolicy(c.Request().Context(), query)
	if err != nil {
		return handlePolicyError(c, err)
	}

	return httpserver.RespondOK(c, ToPolicyResponse(result.Policy))
}

// ListUsage handles GET /api/v1/policies/usage.
// Lists every policy with the number of courses assigned to it.
func (h *PolicyHandler) ListUsage(c echo.Context) error {
	result, err := h.policyService.ListPolicyUsage(c.Request().Context(), policyapp.ListPolicyUsageQuery{})
	if err != nil {
		return handlePolicyError(c, err)
	}

	resp := PolicyUsageResponse{
		Policies: result.Policies,
		Total:    result.TotalCount,
	}

	return httpserver.RespondOK(c, resp)
}

// Helper functions

func validateCreatePolicyRequest(req *CreatePolicyRequest) error {
	if req.Name == "" {
		return ErrNameRequired
	}
	if req.PolicyType == "" {
		return ErrPolicyTypeRequired
	}
	if req.Conditions == "" {
		return ErrConditionsRequired
	}
	return nil
}

func handlePolicyError(c echo.Context, err error) error {
	var valErr *appcore.ValidationError
	var nfErr *appcore.NotFoundError

	switch {
	case errors.As(err, &valErr):
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	case errors.Is(err, policyapp.ErrNameTaken):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "NAME_EXISTS", "a refund policy with this name already exists")
	case errors.As(err, &nfErr):
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "NOT_FOUND", nfErr.Error())
	case errors.Is(err, appcore.ErrConcurrencyConflict):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "CONCURRENCY_CONFLICT", "policy was modified concurrently")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToPolicyResponse converts a policy aggregate to PolicyResponse.
func ToPolicyResponse(a *policy.Aggregate) PolicyResponse {
	return PolicyResponse{
		ID:               a.ID().String(),
		Name:             a.Name().String(),
		PolicyType:       a.PolicyType().String(),
		RefundPeriodDays: a.Period().Days(),
		Conditions:       a.Conditions().String(),
		Status:           a.Status().String(),
		Version:          a.Version(),
	}
}

// MockPolicyService is a mock implementation of PolicyService for testing.
type MockPolicyService struct {
	policies map[uuid.UUID]*policy.Aggregate
	byName   map[string]*policy.Aggregate
}

// NewMockPolicyService creates a new mock policy service.
func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{
		policies: make(map[uuid.UUID]*policy.Aggregate),
		byName:   make(map[string]*policy.Aggregate),
	}
}

// AddPolicy adds a policy to the mock service.
func (m *MockPolicyService) AddPolicy(a *policy.Aggregate) {
	m.policies[a.ID()] = a
	m.byName[a.Name().String()] = a
}

// CreatePolicy creates a policy in the mock service.
func (m *MockPolicyService) CreatePolicy(
	_ context.Context,
	cmd policyapp.CreatePolicyCommand,
) (policyapp.Result, error) {
	if _, exists := m.byName[cmd.Name]; exists {
		return policyapp.Result{}, policyapp.ErrNameTaken
	}

	name, err := policy.NewName(cmd.Name)
	if err != nil {
		return policyapp.Result{}, err
	}
	policyType, err := policy.ParseType(cmd.PolicyType)
	if err != nil {
		return policyapp.Result{}, err
	}
	period, err := policy.NewRefundPeriod(cmd.RefundPeriodDays)
	if err != nil {
		return policyapp.Result{}, err
	}
	conditions, err := policy.NewConditions(cmd.Conditions)
	if err != nil {
		return policyapp.Result{}, err
	}

	a := policy.NewAggregate(uuid.NewUUID())
	if err = a.Create(name, policyType, period, conditions); err != nil {
		return policyapp.Result{}, err
	}
	m.AddPolicy(a)

	return policyapp.Result{Policy: a}, nil
}

// UpdatePolicy updates a policy in the mock service.
func (m *MockPolicyService) UpdatePolicy(
	_ context.Context,
	cmd policyapp.UpdatePolicyCommand,
) (policyapp.Result, error) {
	a, ok := m.policies[cmd.PolicyID]
	if !ok {
		return policyapp.Result{}, appcore.NewNotFoundError("refund policy", cmd.PolicyID.String())
	}

	if existing, taken := m.byName[cmd.Name]; taken && existing.ID() != a.ID() {
		return policyapp.Result{}, policyapp.ErrNameTaken
	}

	name, err := policy.NewName(cmd.Name)
	if err != nil {
		return policyapp.Result{}, err
	}
	period, err := policy.NewRefundPeriod(cmd.RefundPeriodDays)
	if err != nil {
		return policyapp.Result{}, err
	}
	conditions, err := policy.NewConditions(cmd.Conditions)
	if err != nil {
		return policyapp.Result{}, err
	}

	delete(m.byName, a.Name().String())
	if err = a.Update(name, period, conditions); err != nil {
		m.byName[a.Name().String()] = a
		return policyapp.Result{}, err
	}
	m.byName[a.Name().String()] = a

	return policyapp.Result{Policy: a}, nil
}

// DeprecatePolicy deprecates a policy in the mock service.
func (m *MockPolicyService) DeprecatePolicy(
	_ context.Context,
	cmd policyapp.DeprecatePolicyCommand,
) (policyapp.Result, error) {
	a, ok := m.policies[cmd.PolicyID]
	if !ok {
		return policyapp.Result{}, appcore.NewNotFoundError("refund policy", cmd.PolicyID.String())
	}

	if err := a.Deprecate(); err != nil {
		return policyapp.Result{}, err
	}

	return policyapp.Result{Policy: a}, nil
}

// ReactivatePolicy reactivates a policy in the mock service.
func (m *MockPolicyService) ReactivatePolicy(
	_ context.Context,
	cmd policyapp.ReactivatePolicyCommand,
) (policyapp.Result, error) {
	a, ok := m.policies[cmd.PolicyID]
	if !ok {
		return policyapp.Result{}, appcore.NewNotFoundError("refund policy", cmd.PolicyID.String())
	}

	if err := a.Reactivate(); err != nil {
		return policyapp.Result{}, err
	}

	return policyapp.Result{Policy: a}, nil
}

// GetPolicy gets a policy from the mock service.
func (m *MockPolicyService) GetPolicy(
	_ context.Context,
	query policyapp.GetPolicyQuery,
) (policyapp.Result, error) {
	a, ok := m.policies[query.PolicyID]
	if !ok {
		return policyapp.Result{}, appcore.NewNotFoundError("refund policy", query.PolicyID.String())
	}

	return policyapp.Result{Policy: a}, nil
}

// ListPolicyUsage lists policies from the mock service, ordered by name.
// The mock does not track courses, so every course count is zero.
func (m *MockPolicyService) ListPolicyUsage(
	_ context.Context,
	_ policyapp.ListPolicyUsageQuery,
) (policyapp.UsageResult, error) {
	views := make([]projection.PolicyUsageView, 0, len(m.policies))
	for _, a := range m.policies {
		views = append(views, projection.PolicyUsageView{
			PolicyID:         a.ID().String(),
			Name:             a.Name().String(),
			PolicyType:       a.PolicyType().String(),
			RefundPeriodDays: a.Period().Days(),
			Status:           a.Status().String(),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Name != views[j].Name {
			return views[i].Name < views[j].Name
		}
		return views[i].PolicyID < views[j].PolicyID
	})

	return policyapp.UsageResult{
		Policies:   views,
		TotalCount: len(views),
	}, nil
}
