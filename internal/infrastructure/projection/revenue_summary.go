package projection

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/coursery/coursery/internal/domain/event"
	"github.com/coursery/coursery/internal/domain/order"
)

// CurrencyRevenue summarizes revenue in one currency.
type CurrencyRevenue struct {
	Currency       string          `json:"currency"`
	Gross          decimal.Decimal `json:"gross"`
	Refunded       decimal.Decimal `json:"refunded"`
	Net            decimal.Decimal `json:"net"`
	PaidOrders     int             `json:"paid_orders"`
	RefundedOrders int             `json:"refunded_orders"`
}

// CourseRevenue is the net revenue attributed to one course in one currency.
type CourseRevenue struct {
	CourseID string          `json:"course_id"`
	Currency string          `json:"currency"`
	Net      decimal.Decimal `json:"net"`
}

type currencyTotals struct {
	gross          decimal.Decimal
	refunded       decimal.Decimal
	paidOrders     int
	refundedOrders int
}

// RevenueSummaryProjection tracks gross, refunded and net revenue from
// paid and refunded orders, bucketed by currency, plus per-course net
// revenue. Order totals are split evenly across the order's courses.
type RevenueSummaryProjection struct {
	mu       sync.RWMutex
	totals   map[string]*currencyTotals
	byCourse map[string]map[string]decimal.Decimal
	applied  appliedSet
}

var _ Projection = (*RevenueSummaryProjection)(nil)

// NewRevenueSummaryProjection creates an empty revenue projection.
func NewRevenueSummaryProjection() *RevenueSummaryProjection {
	return &RevenueSummaryProjection{
		totals:   make(map[string]*currencyTotals),
		byCourse: make(map[string]map[string]decimal.Decimal),
		applied:  newAppliedSet(),
	}
}

// Name identifies the projection.
func (p *RevenueSummaryProjection) Name() string { return "revenue_summary" }

// EventTypes returns the event types this projection consumes.
func (p *RevenueSummaryProjection) EventTypes() []string {
	return []string{
		order.EventTypeOrderPaid,
		order.EventTypeOrderRefunded,
	}
}

// Apply folds a single payment or refund into the totals.
func (p *RevenueSummaryProjection) Apply(_ context.Context, evt event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.applied.mark(evt) {
		return nil
	}

	switch e := evt.(type) {
	case *order.Paid:
		totals := p.currency(e.Amount.Currency())
		totals.gross = totals.gross.Add(e.Amount.Amount())
		totals.paidOrders++
		p.attribute(uuidStrings(e.CourseIDs), e.Amount.Currency(), e.Amount.Amount())
	case *order.Refunded:
		totals := p.currency(e.Amount.Currency())
		totals.refunded = totals.refunded.Add(e.Amount.Amount())
		totals.refundedOrders++
		p.attribute(uuidStrings(e.CourseIDs), e.Amount.Currency(), e.Amount.Amount().Neg())
	default:
		return fmt.Errorf("revenue summary: unexpected event type %q", evt.EventType())
	}

	return nil
}

func (p *RevenueSummaryProjection) currency(code string) *currencyTotals {
	totals, ok := p.totals[code]
	if !ok {
		totals = &currencyTotals{}
		p.totals[code] = totals
	}
	return totals
}

// attribute splits an amount evenly across courses and adds each share to
// the per-course net revenue.
func (p *RevenueSummaryProjection) attribute(courseIDs []string, currency string, amount decimal.Decimal) {
	if len(courseIDs) == 0 {
		return
	}

	share := amount.Div(decimal.NewFromInt(int64(len(courseIDs))))
	for _, courseID := range courseIDs {
		currencies, ok := p.byCourse[courseID]
		if !ok {
			currencies = make(map[string]decimal.Decimal)
			p.byCourse[courseID] = currencies
		}
		currencies[currency] = currencies[currency].Add(share)
	}
}

// Reset returns the projection to its empty state.
func (p *RevenueSummaryProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totals = make(map[string]*currencyTotals)
	p.byCourse = make(map[string]map[string]decimal.Decimal)
	p.applied.reset()
}

// Summary returns per-currency revenue rows, ordered by currency code.
func (p *RevenueSummaryProjection) Summary() []CurrencyRevenue {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]CurrencyRevenue, 0, len(p.totals))
	for code, totals := range p.totals {
		out = append(out, CurrencyRevenue{
			Currency:       code,
			Gross:          totals.gross,
			Refunded:       totals.refunded,
			Net:            totals.gross.Sub(totals.refunded),
			PaidOrders:     totals.paidOrders,
			RefundedOrders: totals.refundedOrders,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Currency < out[j].Currency
	})

	return out
}

// CourseRevenue returns the net revenue rows for one course.
func (p *RevenueSummaryProjection) CourseRevenue(courseID string) []CourseRevenue {
	p.mu.RLock()
	defer p.mu.RUnlock()

	currencies := p.byCourse[courseID]
	out := make([]CourseRevenue, 0, len(currencies))
	for code, net := range currencies {
		out = append(out, CourseRevenue{CourseID: courseID, Currency: code, Net: net})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Currency < out[j].Currency
	})

	return out
}
