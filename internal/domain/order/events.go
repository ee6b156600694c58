package order

import (
	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/money"
	"github.com/coursery/coursery/internal/domain/uuid"
)

// AggregateType identifies order events in envelopes and projections.
const AggregateType = "Order"

// Event types
const (
	EventTypeOrderPlaced          = "order.placed"
	EventTypeOrderPaid            = "order.paid"
	EventTypeOrderRefundRequested = "order.refund_requested"
	EventTypeOrderRefunded        = "order.refunded"
	EventTypeOrderCancelled       = "order.cancelled"
	EventTypeOrderPaymentFailed   = "order.payment_failed"
)

// Placed is emitted when a new order is placed.
type Placed struct {
	event.BaseEvent

	UserID      uuid.UUID
	CourseIDs   []uuid.UUID
	TotalAmount money.Money
}

// NewOrderPlaced creates an OrderPlaced event.
func NewOrderPlaced(
	orderID, userID uuid.UUID,
	courseIDs []uuid.UUID,
	totalAmount money.Money,
	version int,
	metadata event.Metadata,
) *Placed {
	return &Placed{
		BaseEvent:   event.NewBaseEvent(EventTypeOrderPlaced, orderID.String(), AggregateType, version, metadata),
		UserID:      userID,
		CourseIDs:   courseIDs,
		TotalAmount: totalAmount,
	}
}

// Paid is emitted when an order's payment is confirmed.
type Paid struct {
	event.BaseEvent

	UserID    uuid.UUID
	CourseIDs []uuid.UUID
	PaymentID string
	Amount    money.Money
}

// NewOrderPaid creates an OrderPaid event.
func NewOrderPaid(
	orderID, userID uuid.UUID,
	courseIDs []uuid.UUID,
	paymentID string,
	amount money.Money,
	version int,
	metadata event.Metadata,
) *Paid {
	return &Paid{
		BaseEvent: event.NewBaseEvent(EventTypeOrderPaid, orderID.String(), AggregateType, version, metadata),
		UserID:    userID,
		CourseIDs: courseIDs,
		PaymentID: paymentID,
		Amount:    amount,
	}
}

// RefundRequested is emitted when a refund is requested for a paid order.
type RefundRequested struct {
	event.BaseEvent

	UserID    uuid.UUID
	CourseIDs []uuid.UUID
	Reason    string
}

// NewOrderRefundRequested creates an OrderRefundRequested event.
func NewOrderRefundRequested(
	orderID, userID uuid.UUID,
	courseIDs []uuid.UUID,
	reason string,
	version int,
	metadata event.Metadata,
) *RefundRequested {
	return &RefundRequested{
		BaseEvent: event.NewBaseEvent(EventTypeOrderRefundRequested, orderID.String(), AggregateType, version, metadata),
		UserID:    userID,
		CourseIDs: courseIDs,
		Reason:    reason,
	}
}

// Refunded is emitted when a requested refund completes.
type Refunded struct {
	event.BaseEvent

	UserID    uuid.UUID
	CourseIDs []uuid.UUID
	Reason    string
	Amount    money.Money
}

// NewOrderRefunded creates an OrderRefunded event.
func NewOrderRefunded(
	orderID, userID uuid.UUID,
	courseIDs []uuid.UUID,
	reason string,
	amount money.Money,
	version int,
	metadata event.Metadata,
) *Refunded {
	return &Refunded{
		BaseEvent: event.NewBaseEvent(EventTypeOrderRefunded, orderID.String(), AggregateType, version, metadata),
		UserID:    userID,
		CourseIDs: courseIDs,
		Reason:    reason,
		Amount:    amount,
	}
}

// Cancelled is emitted when a pending order is cancelled.
type Cancelled struct {
	event.BaseEvent

	UserID uuid.UUID
	Reason string
}

// NewOrderCancelled creates an OrderCancelled event.
func NewOrderCancelled(orderID, userID uuid.UUID, reason string, version int, metadata event.Metadata) *Cancelled {
	return &Cancelled{
		BaseEvent: event.NewBaseEvent(EventTypeOrderCancelled, orderID.String(), AggregateType, version, metadata),
		UserID:    userID,
		Reason:    reason,
	}
}

// PaymentFailed is emitted when a payment attempt fails.
type PaymentFailed struct {
	event.BaseEvent

	UserID        uuid.UUID
	FailureReason string
}

// NewOrderPaymentFailed creates an OrderPaymentFailed event.
func NewOrderPaymentFailed(
	orderID, userID uuid.UUID,
	failureReason string,
	version int,
	metadata event.Metadata,
) *PaymentFailed {
	return &PaymentFailed{
		BaseEvent:     event.NewBaseEvent(EventTypeOrderPaymentFailed, orderID.String(), AggregateType, version, metadata),
		UserID:        userID,
		FailureReason: failureReason,
	}
}
