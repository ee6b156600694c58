package httphandler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coursery/coursery/internal/application/appcore"
	orderapp "github.com/coursery/coursery/internal/application/order"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/order"
	"github.com/coursery/coursery/internal/domain/uuid"
	"github.com/coursery/coursery/internal/infrastructure/httpserver"
	"github.com/coursery/coursery/internal/infrastructure/projection"
)

// Pagination defaults for order listings.
const (
	defaultOrderListLimit = 20
	maxOrderListLimit     = 100
)

// Order handler errors.
var (
	ErrUserIDRequired    = errors.New("user_id is required")
	ErrCourseIDsRequired = errors.New("course_ids must contain at least one course")
	ErrPaymentIDRequired = errors.New("payment_id is required")
	ErrReasonRequired    = errors.New("reason is required")
)

// PlaceOrderRequest represents the request to place an order.
type PlaceOrderRequest struct {
	UserID    string   `json:"user_id"`
	CourseIDs []string `json:"course_ids"`
	Amount    string   `json:"amount"`
	Currency  string   `json:"currency"`
}

// PayOrderRequest represents the request to record a successful payment.
type PayOrderRequest struct {
	PaymentID string `json:"payment_id"`
}

// FailPaymentRequest represents the request to record a failed payment.
type FailPaymentRequest struct {
	Reason string `json:"reason"`
}

// RefundOrderRequest represents the request to refund a paid order.
type RefundOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelOrderRequest represents the request to cancel an unpaid order.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	CourseIDs []string    `json:"course_ids"`
	Total     money.Money `json:"total"`
	Status    string      `json:"status"`
	PaymentID string      `json:"payment_id,omitempty"`
	PlacedAt  string      `json:"placed_at"`
	PaidAt    *string     `json:"paid_at,omitempty"`
	Version   int         `json:"version"`
}

// OrderListResponse represents a page of a user's orders in API responses.
type OrderListResponse struct {
	Orders  []projection.OrderView `json:"orders"`
	Total   int                    `json:"total"`
	HasMore bool                   `json:"has_more"`
}

// OrderService defines the interface for order operations.
// Declared on the consumer side per project guidelines.
type OrderService interface {
	// PlaceOrder places a new order for one or more courses.
	PlaceOrder(ctx context.Context, cmd orderapp.PlaceOrderCommand) (orderapp.Result, error)

	// PayOrder records a successful payment and grants course access.
	PayOrder(ctx context.Context, cmd orderapp.PayOrderCommand) (orderapp.Result, error)

	// FailPayment records a failed payment attempt.
	FailPayment(ctx context.Context, cmd orderapp.FailPaymentCommand) (orderapp.Result, error)

	// RequestRefund refunds a paid order when the refund policies allow it.
	RequestRefund(ctx context.Context, cmd orderapp.RequestRefundCommand) (orderapp.Result, error)

	// CancelOrder cancels an order that has not been paid yet.
	CancelOrder(ctx context.Context, cmd orderapp.CancelOrderCommand) (orderapp.Result, error)

	// GetOrder gets an order read model by ID.
	GetOrder(ctx context.Context, query orderapp.GetOrderQuery) (orderapp.ViewResult, error)

	// ListUserOrders lists a page of a user's orders, newest first.
	ListUserOrders(ctx context.Context, query orderapp.ListUserOrdersQuery) (orderapp.ListResult, error)
}

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orderService OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers order routes with the router.
func (h *OrderHandler) RegisterRoutes(r *httpserver.Router) {
	r.API().POST("/orders", h.Place)
	r.API().GET("/orders/:id", h.Get)
	r.API().POST("/orders/:id/pay", h.Pay)
	r.API().POST("/orders/:id/fail", h.FailPayment)
	r.API().POST("/orders/:id/refund", h.RequestRefund)
	r.API().POST("/orders/:id/cancel", h.Cancel)
	r.API().GET("/users/:id/orders", h.ListUserOrders)
}

// Place handles POST /api/v1/orders.
// Places a new order for one or more courses.
func (h *OrderHandler) Place(c echo.Context) error {
	var req PlaceOrderRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if valErr := validatePlaceOrderRequest(&req); valErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	}

	userID, parseErr := uuid.ParseUUID(req.UserID)
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	courseIDs := make([]uuid.UUID, 0, len(req.CourseIDs))
	for _, raw := range req.CourseIDs {
		courseID, idErr := uuid.ParseUUID(raw)
		if idErr != nil {
			return httpserver.RespondErrorWithCode(
				c, http.StatusBadRequest, "INVALID_COURSE_ID", "invalid course ID format")
		}
		courseIDs = append(courseIDs, courseID)
	}

	cmd := orderapp.PlaceOrderCommand{
		UserID:    userID,
		CourseIDs: courseIDs,
		Amount:    req.Amount,
		Currency:  req.Currency,
	}

	result, err := h.orderService.PlaceOrder(c.Request().Context(), cmd)
	if err != nil {
		return handleOrderError(c, err)
	}

	return httpserver.RespondCreated(c, ToOrderResponse(result.Order))
}

// Pay handles POST /api/v1/orders/:id/pay.
// Records a successful payment; access to the ordered courses is granted
// as part of the same operation.
func (h *OrderHandler) Pay(c echo.Context) error {
	orderID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ORDER_ID", "invalid order ID format")
	}

	var req PayOrderRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.PaymentID == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrPaymentIDRequired.Error())
	}

	cmd := orderapp.PayOrderCommand{
		OrderID:   orderID,
		PaymentID: req.PaymentID,
	}

	result, err := h.orderService.PayOrder(c.Request().Context(), cmd)
	if err != nil {
		return handleOrderError(c, err)
	}

	return httpserver.RespondOK(c, ToOrderResponse(result.Order))
}

// FailPayment handles POST /api/v1/orders/:id/fail.
// Records a failed payment attempt; the order stays open for retry.
func (h *OrderHandler) FailPayment(c echo.Context) error {
	orderID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ORDER_ID", "invalid order ID format")
	}

	var req FailPaymentRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.Reason == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrReasonRequired.Error())
	}

	cmd := orderapp.FailPaymentCommand{
		OrderID: orderID,
		Reason:  req.Reason,
	}

	result, err := h.orderService.FailPayment(c.Request().Context(), cmd)
	if err != nil {
		return handleOrderError(c, err)
	}

	return httpserver.RespondOK(c, ToOrderResponse(result.Order))
}

// RequestRefund handles POST /api/v1/orders/:id/refund.
// Refunds a paid order when every course's refund policy allows it, and
// revokes the access granted by the order.
func (h *OrderHandler) RequestRefund(c echo.Context) error {
	orderID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ORDER_ID", "invalid order ID format")
	}

	var req RefundOrderRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	if req.Reason == "" {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", ErrReasonRequired.Error())
	}

	cmd := orderapp.RequestRefundCommand{
		OrderID: orderID,
		Reason:  req.Reason,
	}

	result, err := h.orderService.RequestRefund(c.Request().Context(), cmd)
	if err != nil {
		return handleOrderError(c, err)
	}

	return httpserver.RespondOK(c, ToOrderResponse(result.Order))
}

// Cancel handles POST /api/v1/orders/:id/cancel.
// Cancels an order that has not been paid yet.
func (h *OrderHandler) Cancel(c echo.Context) error {
	orderID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ORDER_ID", "invalid order ID format")
	}

	var req CancelOrderRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	}

	cmd := orderapp.CancelOrderCommand{
		OrderID: orderID,
		Reason:  req.Reason,
	}

	result, err := h.orderService.CancelOrder(c.Request().Context(), cmd)
	if err != nil {
		return handleOrderError(c, err)
	}

	return httpserver.RespondOK(c, ToOrderResponse(result.Order))
}

// Get handles GET /api/v1/orders/:id.
// Gets an order read model with its full status timeline.
func (h *OrderHandler) Get(c echo.Context) error {
	orderID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_ORDER_ID", "invalid order ID format")
	}

	query := orderapp.GetOrderQuery{
		OrderID: orderID,
	}

	result, err := h.orderService.GetOrder(c.Request().Context(), query)
	if err != nil {
		return handleOrderError(c, err)
	}

	return httpserver.RespondOK(c, result.Order)
}

// ListUserOrders handles GET /api/v1/users/:id/orders.
// Lists a page of the user's orders, newest first.
func (h *OrderHandler) ListUserOrders(c echo.Context) error {
	userID, parseErr := uuid.ParseUUID(c.Param("id"))
	if parseErr != nil {
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "INVALID_USER_ID", "invalid user ID format")
	}

	limit, offset := parseListPagination(c, defaultOrderListLimit, maxOrderListLimit)

	query := orderapp.ListUserOrdersQuery{
		UserID: userID,
		Offset: offset,
		Limit:  limit,
	}

	result, err := h.orderService.ListUserOrders(c.Request().Context(), query)
	if err != nil {
		return handleOrderError(c, err)
	}

	resp := OrderListResponse{
		Orders:  result.Orders,
		Total:   result.TotalCount,
		HasMore: result.Offset+len(result.Orders) < result.TotalCount,
	}

	return httpserver.RespondOK(c, resp)
}

// Helper functions

func validatePlaceOrderRequest(req *PlaceOrderRequest) error {
	if req.UserID == "" {
		return ErrUserIDRequired
	}
	if len(req.CourseIDs) == 0 {
		return ErrCourseIDsRequired
	}
	if req.Amount == "" || req.Currency == "" {
		return ErrPriceRequired
	}
	return nil
}

func handleOrderError(c echo.Context, err error) error {
	var valErr *appcore.ValidationError
	var nfErr *appcore.NotFoundError

	switch {
	case errors.As(err, &valErr):
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "VALIDATION_ERROR", valErr.Error())
	case errors.Is(err, orderapp.ErrNoCourses):
		return httpserver.RespondErrorWithCode(
			c, http.StatusBadRequest, "NO_COURSES", "order must contain at least one course")
	case errors.Is(err, orderapp.ErrDuplicatePendingOrder):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "DUPLICATE_PENDING_ORDER",
			"a pending order for this course already exists")
	case errors.Is(err, orderapp.ErrCourseNotAvailable):
		return httpserver.RespondErrorWithCode(
			c, http.StatusUnprocessableEntity, "COURSE_NOT_AVAILABLE",
			"course is not available for purchase")
	case errors.As(err, &nfErr):
		return httpserver.RespondErrorWithCode(c, http.StatusNotFound, "NOT_FOUND", nfErr.Error())
	case errors.Is(err, appcore.ErrConcurrencyConflict):
		return httpserver.RespondErrorWithCode(
			c, http.StatusConflict, "CONCURRENCY_CONFLICT", "order was modified concurrently")
	default:
		return httpserver.RespondError(c, err)
	}
}

// ToOrderResponse converts an order aggregate to OrderResponse.
func ToOrderResponse(a *order.Aggregate) OrderResponse {
	courseIDs := make([]string, 0, len(a.CourseIDs()))
	for _, id := range a.CourseIDs() {
		courseIDs = append(courseIDs, id.String())
	}

	var paidAt *string
	if a.PaidAt() != nil {
		formatted := a.PaidAt().Format(time.RFC3339)
		paidAt = &formatted
	}

	return OrderResponse{
		ID:        a.ID().String(),
		UserID:    a.UserID().String(),
		CourseIDs: courseIDs,
		Total:     a.TotalAmount(),
		Status:    a.Status().String(),
		PaymentID: a.PaymentID(),
		PlacedAt:  a.PlacedAt().Format(time.RFC3339),
		PaidAt:    paidAt,
		Version:   a.Version(),
	}
}

// MockOrderService is a mock implementation of OrderService for testing.
type MockOrderService struct {
	orders map[uuid.UUID]*order.Aggregate
}

// NewMockOrderService creates a new mock order service.
func NewMockOrderService() *MockOrderService {
	return &MockOrderService{
		orders: make(map[uuid.UUID]*order.Aggregate),
	}
}

// AddOrder adds an order to the mock service.
func (m *MockOrderService) AddOrder(a *order.Aggregate) {
	m.orders[a.ID()] = a
}

// PlaceOrder places an order in the mock service.
func (m *MockOrderService) PlaceOrder(
	_ context.Context,
	cmd orderapp.PlaceOrderCommand,
) (orderapp.Result, error) {
	for _, existing := range m.orders {
		if existing.UserID() != cmd.UserID || existing.Status() != order.StatusPending {
			continue
		}
		for _, existingCourse := range existing.CourseIDs() {
			for _, courseID := range cmd.CourseIDs {
				if existingCourse == courseID {
					return orderapp.Result{}, orderapp.ErrDuplicatePendingOrder
				}
			}
		}
	}

	total, err := money.NewFromString(cmd.Amount, cmd.Currency)
	if err != nil {
		return orderapp.Result{}, err
	}

	a := order.NewAggregate(uuid.NewUUID())
	if err = a.Place(cmd.UserID, cmd.CourseIDs, total); err != nil {
		return orderapp.Result{}, err
	}
	m.AddOrder(a)

	return orderapp.Result{Order: a}, nil
}

// PayOrder records a payment in the mock service.
func (m *MockOrderService) PayOrder(
	_ context.Context,
	cmd orderapp.PayOrderCommand,
) (orderapp.Result, error) {
	a, ok := m.orders[cmd.OrderID]
	if !ok {
		return orderapp.Result{}, appcore.NewNotFoundError("order", cmd.OrderID.String())
	}

	if err := a.MarkPaid(cmd.PaymentID); err != nil {
		return orderapp.Result{}, err
	}

	return orderapp.Result{Order: a}, nil
}

// FailPayment records a failed payment in the mock service.
func (m *MockOrderService) FailPayment(
	_ context.Context,
	cmd orderapp.FailPaymentCommand,
) (orderapp.Result, error) {
	a, ok := m.orders[cmd.OrderID]
	if !ok {
		return orderapp.Result{}, appcore.NewNotFoundError("order", cmd.OrderID.String())
	}

	if err := a.MarkPaymentFailed(cmd.Reason); err != nil {
		return orderapp.Result{}, err
	}

	return orderapp.Result{Order: a}, nil
}

// RequestRefund refunds an order in the mock service.
func (m *MockOrderService) RequestRefund(
	_ context.Context,
	cmd orderapp.RequestRefundCommand,
) (orderapp.Result, error) {
	a, ok := m.orders[cmd.OrderID]
	if !ok {
		return orderapp.Result{}, appcore.NewNotFoundError("order", cmd.OrderID.String())
	}

	if err := a.RequestRefund(cmd.Reason); err != nil {
		return orderapp.Result{}, err
	}
	if err := a.MarkRefunded(); err != nil {
		return orderapp.Result{}, err
	}

	return orderapp.Result{Order: a}, nil
}

// CancelOrder cancels an order in the mock service.
func (m *MockOrderService) CancelOrder(
	_ context.Context,
	cmd orderapp.CancelOrderCommand,
) (orderapp.Result, error) {
	a, ok := m.orders[cmd.OrderID]
	if !ok {
		return orderapp.Result{}, appcore.NewNotFoundError("order", cmd.OrderID.String())
	}

	if err := a.Cancel(cmd.Reason); err != nil {
		return orderapp.Result{}, err
	}

	return orderapp.Result{Order: a}, nil
}

// GetOrder gets an order read model from the mock service.
func (m *MockOrderService) GetOrder(
	_ context.Context,
	query orderapp.GetOrderQuery,
) (orderapp.ViewResult, error) {
	a, ok := m.orders[query.OrderID]
	if !ok {
		return orderapp.ViewResult{}, appcore.NewNotFoundError("order", query.OrderID.String())
	}

	return orderapp.ViewResult{Order: mockOrderView(a)}, nil
}

// ListUserOrders lists a user's orders from the mock service, newest first.
func (m *MockOrderService) ListUserOrders(
	_ context.Context,
	query orderapp.ListUserOrdersQuery,
) (orderapp.ListResult, error) {
	views := make([]projection.OrderView, 0)
	for _, a := range m.orders {
		if a.UserID() == query.UserID {
			views = append(views, mockOrderView(a))
		}
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].PlacedAt.After(views[j].PlacedAt)
	})

	total := len(views)
	start := min(query.Offset, total)
	end := min(start+query.Limit, total)

	return orderapp.ListResult{
		Orders:     views[start:end],
		TotalCount: total,
		Offset:     query.Offset,
		Limit:      query.Limit,
	}, nil
}

func mockOrderView(a *order.Aggregate) projection.OrderView {
	courseIDs := make([]string, 0, len(a.CourseIDs()))
	for _, id := range a.CourseIDs() {
		courseIDs = append(courseIDs, id.String())
	}

	return projection.OrderView{
		OrderID:   a.ID().String(),
		UserID:    a.UserID().String(),
		CourseIDs: courseIDs,
		Total:     a.TotalAmount(),
		Status:    a.Status().String(),
		PlacedAt:  a.PlacedAt(),
		Timeline: []projection.StatusChange{
			{Status: a.Status().String(), At: a.PlacedAt()},
		},
	}
}
