package httphandler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coursery/coursery/internal/application/appcore"
	courseapp "github.com/coursery/coursery/internal/application/course"
	"github.com/coursery/coursery/internal/domain/course"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/httpserver"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Course handler errors.
var (
	ErrTitleRequired      = errors.New("title is required")
	ErrDescRequired       = errors.New("description is required")
	ErrPriceRequired      = errors.New("amount and currency are required")
	ErrAccessTypeRequired = errors.New("access type is required")
)

// CreateCourseRequest represents the request to publish a course.
type CreateCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	AccessType  string `json:"access_type"`
	PolicyID    string `json:"policy_id"`
}

// UpdateCourseRequest represents the request to retitle a course.
type UpdateCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ChangeCoursePolicyRequest represents the request to assign a different
// refund policy to a course.
type ChangeCoursePolicyRequest struct {
	PolicyID string `json:"policy_id"`
}

// CourseResponse represents a course in API responses.
type CourseResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       money.Money `json:"price"`
	AccessType  string      `json:"access_type"`
	Status      string      `json:"status"`
	PolicyID    string      `json:"policy_id"`
	CreatedAt   string      `json:"created_at"`
	Version     int         `json:"version"`
}

// CatalogResponse represents the course catalog in API responses.
type CatalogResponse struct {
	Courses []projection.CourseView `json:"courses"`
	Total   int                     `json:"total"`
}

// CourseService defines the interface for course operations.
// Declared on the consumer side per project guidelines.
type CourseService interface {
	// CreateCourse publishes a new course to the catalog.
	CreateCourse(ctx context.Context, cmd courseapp.CreateCourseCommand) (courseapp.Result, error)

	// UpdateCourse changes a course's title and description.
	UpdateCourse(ctx context.Context, cmd courseapp.UpdateCourseCommand) (courseapp.Result, error)

	// ChangePolicy assigns a different refund policy to a course.
	ChangePolicy(ctx context.Context, cmd courseapp.ChangePolicyCommand) (courseapp.Result, error)

	// DeprecateCourse withdraws a course from sale.
	DeprecateCourse(ctx context.Context, cmd courseapp.DeprecateCourseCommand) (courseapp.Result, error)

	// GetCourse gets a catalog row by course ID.
	GetCourse(ctx context.Context, query courseapp.GetCourseQuery) (courseapp.ViewResult, error)

	// ListCatalog lists the course catalog.
	ListCatalog(ctx context.Context, query courseapp.ListCatalogQuery) (courseapp.CatalogResult, error)
}

// CourseHandler handles course-related HTTP requests.
type CourseHandler struct {
	courseService CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
	}
}

// RegisterRoutes registers course routes with the router.
func (h *CourseHandler) RegisterRoutes(r *httpserver.Router) {
	r.API().POST("/courses", h.Create)
	r.API().GET("/courses/:id", h.Get)
	r.API().PUT("/courses/:id", h.Update)
	r.API().PUT("/courses/:id/policy", h.ChangePolicy)
	r.API().POST("/courses/:id/deprecate", h.Deprecate)
	r.API().GET("/catalog", h.ListCatalog)
}

// Create handles POST /api/v1/courses.
// Publishes a new course to the catalog.
func (h *CourseHandler) Create(c echo.Context) error {
	var req CreateCourseRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if valErr := validateCreateCourseRequest(&req); valErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	}

	policyID, parseErr := uuid.ParseUUID(req.PolicyID)
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_POLICY_ID", "invalid policy ID format")
	}

	cmd := courseapp.CreateCourseCommand{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		AccessType:  req.AccessType,
		PolicyID:    policyID,
	}

	result, err := h.courseService.CreateCourse(c.Request().Context(), cmd)
	if err != nil {
		return handleCourseError(c, err)
	}

	return httpserver.RespondCreated(c, ToCourseResponse(result.Course))
}

// Update handles PUT /api/v1/courses/:id.
// Changes the course's title and description.
func (h *CourseHandler) Update(c echo.Context) error {
	courseID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_COURSE_ID", "invalid course ID format")
	}

	var req UpdateCourseRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.Title == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrTitleRequired.Error())
	}

	cmd := courseapp.UpdateCourseCommand{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
	}

	result, err := h.courseService.UpdateCourse(c.Request().Context(), cmd)
	if err != nil {
		return handleCourseError(c, err)
	}

	return httpserver.RespondOK(c, ToCourseResponse(result.Course))
}

// ChangePolicy handles PUT /api/v1/courses/:id/policy.
// Assigns a different refund policy to the course.
func (h *CourseHandler) ChangePolicy(c echo.Context) error {
	courseID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_COURSE_ID", "invalid course ID format")
	}

	var req ChangeCoursePolicyRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	policyID, parseErr := uuid.ParseUUID(req.PolicyID)
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_POLICY_ID", "invalid policy ID format")
	}

	cmd := courseapp.ChangePolicyCommand{
		CourseID:    courseID,
		NewPolicyID: policyID,
	}

	result, err := h.courseService.ChangePolicy(c.Request().Context(), cmd)
	if err != nil {
		return handleCourseError(c, err)
	}

	return httpserver.RespondOK(c, ToCourseResponse(result.Course))
}

// Deprecate handles POST /api/v1/courses/:id/deprecate.
// Withdraws the course from sale. Existing access is not affected.
func (h *CourseHandler) Deprecate(c echo.Context) error {
	courseID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_COURSE_ID", "invalid course ID format")
	}

	cmd := courseapp.DeprecateCourseCommand{
		CourseID: courseID,
	}

	result, err := h.courseService.DeprecateCourse(c.Request().Context(), cmd)
	if err != nil {
		return handleCourseError(c, err)
	}

	return httpserver.RespondOK(c, ToCourseResponse(result.Course))
}

// Get handles GET /api/v1/courses/:id.
// Gets the catalog row of a course.
func (h *CourseHandler) Get(c echo.Context) error {
	courseID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_COURSE_ID", "invalid course ID format")
	}

	query := courseapp.GetCourseQuery{
		CourseID: courseID,
	}

	result, err := h.courseService.GetCourse(c.Request().Context(), query)
	if err != nil {
		return handleCourseError(c, err)
	}

	return httpserver.RespondOK(c, result.Course)
}

// ListCatalog handles GET /api/v1/catalog.
// Lists the course catalog; pass active=true to restrict the listing to
// courses open for purchase.
func (h *CourseHandler) ListCatalog(c echo.Context) error {
	query := courseapp.ListCatalogQuery{
		ActiveOnly: c.QueryParam("active") == "true",
	}

	result, err := h.courseService.ListCatalog(c.Request().Context(), query)
	if err != nil {
		return handleCourseError(c, err)
	}

	resp := CatalogResponse{
		Courses: result.Courses,
		Total:   result.TotalCount,
	}

	return httpserver.RespondOK(c, resp)
}

// Helper functions

func validateCreateCourseRequest(req *CreateCourseRequest) error {
	if req.Title == "" {
		return ErrTitleRequired
	}
	if req.Description == "" {
		return ErrDescRequired
	}
	if req.Amount == "" || req.Currency == "" {
		return ErrPriceRequired
	}
	if req.AccessType == "" {
		return ErrAccessTypeRequired
	}
	return nil
}

func handleCourseError(c echo.Context, err error) error {
	var valErr *appcore.ValidationError
	var nfErr *appcore.NotFoundError

	switch {
	case errors.As(err, &valErr):
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	case errors.Is(err, courseapp.ErrTitleTaken):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "TITLE_EXISTS", "a course with this title already exists")
	case errors.Is(err, courseapp.ErrPolicyNotAssignable):
		return httpserver.RespondErrorWithCode(
			c, http.StatusUnprocessableEntity, "POLICY_NOT_ASSIGNABLE",
			"refund policy cannot be assigned to courses")
	case errors.As(err, &nfErr):
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "NOT_FOUND", nfErr.Error())
	case errors.Is(err, appcore.ErrConcurrencyConflict):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "CONCURRENCY_CONFLICT", "course was modified concurrently")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToCourseResponse converts a course aggregate to CourseResponse.
func ToCourseResponse(a *course.Aggregate) CourseResponse {
	return CourseResponse{
		ID:          a.ID().String(),
		Title:       a.Title().String(),
		Description: a.Description().String(),
		Price:       a.Price(),
		AccessType:  a.AccessType().String(),
		Status:      a.Status().String(),
		PolicyID:    a.PolicyID().String(),
		CreatedAt:   a.CreatedAt().Format(time.RFC3339),
		Version:     a.Version(),
	}
}

// MockCourseService is a mock implementation of CourseService for testing.
type MockCourseService struct {
	courses map[uuid.UUID]*course.Aggregate
	byTitle map[string]*course.Aggregate
}

// NewMockCourseService creates a new mock course service.
func NewMockCourseService() *MockCourseService {
	return &MockCourseService{
		courses: make(map[uuid.UUID]*course.Aggregate),
		byTitle: make(map[string]*course.Aggregate),
	}
}

// AddCourse adds a course to the mock service.
func (m *MockCourseService) AddCourse(a *course.Aggregate) {
	m.courses[a.ID()] = a
	m.byTitle[a.Title().String()] = a
}

// CreateCourse creates a course in the mock service.
func (m *MockCourseService) CreateCourse(
	_ context.Context,
	cmd courseapp.CreateCourseCommand,
) (courseapp.Result, error) {
	if _, exists := m.byTitle[cmd.Title]; exists {
		return courseapp.Result{}, courseapp.ErrTitleTaken
	}

	title, err := course.NewTitle(cmd.Title)
	if err != nil {
		return courseapp.Result{}, err
	}
	description, err := course.NewDescription(cmd.Description)
	if err != nil {
		return courseapp.Result{}, err
	}
	price, err := money.NewFromString(cmd.Amount, cmd.Currency)
	if err != nil {
		return courseapp.Result{}, err
	}
	accessType, err := course.ParseAccessType(cmd.AccessType)
	if err != nil {
		return courseapp.Result{}, err
	}

	a := course.NewAggregate(uuid.NewUUID())
	if err = a.Create(title, description, price, accessType, cmd.PolicyID); err != nil {
		return courseapp.Result{}, err
	}
	m.AddCourse(a)

	return courseapp.Result{Course: a}, nil
}

// UpdateCourse updates a course in the mock service.
func (m *MockCourseService) UpdateCourse(
	_ context.Context,
	cmd courseapp.UpdateCourseCommand,
) (courseapp.Result, error) {
	a, ok := m.courses[cmd.CourseID]
	if !ok {
		return courseapp.Result{}, appcore.NewNotFoundError("course", cmd.CourseID.String())
	}

	title, err := course.NewTitle(cmd.Title)
	if err != nil {
		return courseapp.Result{}, err
	}
	description, err := course.NewDescription(cmd.Description)
	if err != nil {
		return courseapp.Result{}, err
	}
	if err = a.Update(title, description); err != nil {
		return courseapp.Result{}, err
	}

	return courseapp.Result{Course: a}, nil
}

// ChangePolicy changes a course's refund policy in the mock service.
func (m *MockCourseService) ChangePolicy(
	_ context.Context,
	cmd courseapp.ChangePolicyCommand,
) (courseapp.Result, error) {
	a, ok := m.courses[cmd.CourseID]
	if !ok {
		return courseapp.Result{}, appcore.NewNotFoundError("course", cmd.CourseID.String())
	}

	if err := a.ChangePolicy(cmd.NewPolicyID); err != nil {
		return courseapp.Result{}, err
	}

	return courseapp.Result{Course: a}, nil
}

// DeprecateCourse deprecates a course in the mock service.
func (m *MockCourseService) DeprecateCourse(
	_ context.Context,
	cmd courseapp.DeprecateCourseCommand,
) (courseapp.Result, error) {
	a, ok := m.courses[cmd.CourseID]
	if !ok {
		return courseapp.Result{}, appcore.NewNotFoundError("course", cmd.CourseID.String())
	}

	if err := a.Deprecate(); err != nil {
		return courseapp.Result{}, err
	}

	return courseapp.Result{Course: a}, nil
}

// GetCourse gets a catalog row from the mock service.
func (m *MockCourseService) GetCourse(
	_ context.Context,
	query courseapp.GetCourseQuery,
) (courseapp.ViewResult, error) {
	a, ok := m.courses[query.CourseID]
	if !ok {
		return courseapp.ViewResult{}, appcore.NewNotFoundError("course", query.CourseID.String())
	}

	return courseapp.ViewResult{Course: mockCourseView(a)}, nil
}

// ListCatalog lists the catalog from the mock service, ordered by title.
func (m *MockCourseService) ListCatalog(
	_ context.Context,
	query courseapp.ListCatalogQuery,
) (courseapp.CatalogResult, error) {
	views := make([]projection.CourseView, 0, len(m.courses))
	for _, a := range m.courses {
		if query.ActiveOnly && a.Status() != course.StatusActive {
			continue
		}
		views = append(views, mockCourseView(a))
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Title != views[j].Title {
			return views[i].Title < views[j].Title
		}
		return views[i].CourseID < views[j].CourseID
	})

	return courseapp.CatalogResult{
		Courses:    views,
		TotalCount: len(views),
	}, nil
}

func mockCourseView(a *course.Aggregate) projection.CourseView {
	return projection.CourseView{
		CourseID:    a.ID().String(),
		Title:       a.Title().String(),
		Description: a.Description().String(),
		Price:       a.Price(),
		AccessType:  a.AccessType().String(),
		Status:      a.Status().String(),
		PolicyID:    a.PolicyID().String(),
	}
}
