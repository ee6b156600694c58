package httphandler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/httpserver"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// RevenueReader serves revenue read models built from the event stream.
// The interface is declared on the consumer side; the revenue summary
// projection satisfies it.
type RevenueReader interface {
	Summary() []projection.CurrencyRevenue
	CourseRevenue(courseID string) []projection.CourseRevenue
}

// RevenueSummaryResponse represents per-currency revenue in API responses.
type RevenueSummaryResponse struct {
	Currencies []projection.CurrencyRevenue `json:"currencies"`
}

// CourseRevenueResponse represents one course's net revenue in API responses.
type CourseRevenueResponse struct {
	CourseID string                     `json:"course_id"`
	Revenue  []projection.CourseRevenue `json:"revenue"`
}

// ReportingHandler handles revenue reporting HTTP requests.
type ReportingHandler struct {
	revenue RevenueReader
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(revenue RevenueReader) *ReportingHandler {
	return &ReportingHandler{
		revenue: revenue,
	}
}

// RegisterRoutes registers reporting routes with the router.
func (h *ReportingHandler) RegisterRoutes(r *httpserver.Router) {
	r.API().GET("/reports/revenue", h.RevenueSummary)
	r.API().GET("/courses/:id/revenue", h.CourseRevenue)
}

// RevenueSummary handles GET /api/v1/reports/revenue.
// Reports gross, refunded and net revenue per currency.
func (h *ReportingHandler) RevenueSummary(c echo.Context) error {
	resp := RevenueSummaryResponse{
		Currencies: h.revenue.Summary(),
	}

	return httpserver.RespondOK(c, resp)
}

// CourseRevenue handles GET /api/v1/courses/:id/revenue.
// Reports the net revenue attributed to one course, per currency. Order
// totals are split evenly across the order's courses.
func (h *ReportingHandler) CourseRevenue(c echo.Context) error {
	courseID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_COURSE_ID", "invalid course ID format")
	}

	resp := CourseRevenueResponse{
		CourseID: courseID.String(),
		Revenue:  h.revenue.CourseRevenue(courseID.String()),
	}

	return httpserver.RespondOK(c, resp)
}
