package order

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/product"
	"github.com/xenking/order-entry/internal/pricing"
)

// Session stages the customer selection and lines of an order until it is
// committed. Totals are recomputed after every mutation for display; the
// amounts stored on commit are computed again from the final state.
//
// A Session is not safe for concurrent use.
type Session struct {
	orderID   int64
	createdAt time.Time
	customer  *customer.Customer
	lines     []Line
	totals    pricing.Totals
}

// NewSession returns an empty session for a new order.
func NewSession() *Session {
	s := &Session{}
	s.Recompute()
	return s
}

func restoreSession(h *Header, lines []Line, c *customer.Customer) *Session {
	s := &Session{
		orderID:   h.ID,
		createdAt: h.CreatedAt,
		customer:  c,
		lines:     lines,
	}
	s.Recompute()
	return s
}

// OrderID returns the identifier of the order, or zero before the first
// commit.
func (s *Session) OrderID() int64 {
	return s.orderID
}

// CreatedAt returns the creation time of a committed order.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Customer returns the selected customer.
func (s *Session) Customer() (customer.Customer, bool) {
	if s.customer == nil {
		return customer.Customer{}, false
	}
	return *s.customer, true
}

// Tier returns the tier used for pricing. Without a selected customer the
// standard tier applies.
func (s *Session) Tier() customer.Tier {
	if s.customer == nil {
		return customer.TierStandard
	}
	return customer.ParseTier(string(s.customer.Tier))
}

// SelectCustomer sets the customer whose tier prices the order.
func (s *Session) SelectCustomer(c customer.Customer) {
	s.customer = &c
	s.Recompute()
}

// AddLine stages a line for p. The unit price is taken from the product
// unless priceOverride is set. The line identifier is the number of staged
// lines plus one; identifiers are reallocated on commit.
func (s *Session) AddLine(p product.Product, quantity int, priceOverride *decimal.Decimal) (Line, error) {
	if quantity < 1 {
		return Line{}, invalid(fmt.Sprintf("quantity must be a positive integer, got %d", quantity))
	}

	price := p.Price
	if priceOverride != nil {
		price = *priceOverride
	}

	l := Line{
		ID:          int64(len(s.lines) + 1),
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   price,
	}
	s.lines = append(s.lines, l)
	s.Recompute()
	return l, nil
}

// RemoveLine removes the first staged line with the given identifier. It
// returns ErrLineNotFound and leaves the session unchanged if none matches.
func (s *Session) RemoveLine(lineID int64) error {
	i := slices.IndexFunc(s.lines, func(l Line) bool { return l.ID == lineID })
	if i < 0 {
		return ErrLineNotFound
	}
	s.lines = slices.Delete(s.lines, i, i+1)
	s.Recompute()
	return nil
}

// RemoveLineAt removes the staged line at index, the position of the line
// in Lines. Unlike RemoveLine it reaches any line when identifiers repeat.
func (s *Session) RemoveLineAt(index int) error {
	if index < 0 || index >= len(s.lines) {
		return ErrLineNotFound
	}
	s.lines = slices.Delete(s.lines, index, index+1)
	s.Recompute()
	return nil
}

// Lines returns a copy of the staged lines.
func (s *Session) Lines() []Line {
	return slices.Clone(s.lines)
}

// Recompute prices the staged lines with the current tier and returns the
// totals. It has no effect other than refreshing Totals.
func (s *Session) Recompute() pricing.Totals {
	s.totals = pricing.Price(s.Tier(), s.items())
	return s.totals
}

// Totals returns the totals of the last recompute.
func (s *Session) Totals() pricing.Totals {
	return s.totals
}

// Validate checks every commit rule and reports all violations together in
// a *ValidationError.
func (s *Session) Validate() error {
	var problems []string

	if s.customer == nil || s.customer.ID <= 0 {
		problems = append(problems, "a customer must be selected")
	}
	if len(s.lines) == 0 {
		problems = append(problems, "order must have at least one line item")
	}
	for i, l := range s.lines {
		if l.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if l.UnitPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("line %d: unit price must be zero or greater", i+1))
		}
	}

	// Only trips when rounding inflates the rate of a tiny subtotal.
	tier := s.Tier()
	if err := pricing.CheckCeiling(tier, pricing.Price(tier, s.items())); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return invalid(problems...)
	}
	return nil
}

func (s *Session) items() []pricing.Item {
	items := make([]pricing.Item, len(s.lines))
	for i, l := range s.lines {
		items[i] = l.item()
	}
	return items
}

// snapshot builds the order to persist from the staged state. The caller
// must have validated the session.
func (s *Session) snapshot(now time.Time) *Order {
	createdAt := s.createdAt
	if s.orderID == 0 {
		createdAt = now
	}
	return &Order{
		Header: Header{
			ID:           s.orderID,
			CustomerID:   s.customer.ID,
			CustomerName: s.customer.Name,
			CreatedAt:    createdAt,
			Totals:       s.Recompute(),
		},
		Lines: s.Lines(),
	}
}

// committed adopts the identifiers assigned by the store.
func (s *Session) committed(o *Order) {
	s.orderID = o.ID
	s.createdAt = o.CreatedAt
	s.lines = slices.Clone(o.Lines)
	s.Recompute()
}
