package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/internal/pricing"
)

// DateLayout is the fixed text format of the stored order date.
const DateLayout = "2006-01-02 15:04:05"

// Line is a single product entry of an order. Product name and unit price
// are captured when the line is added and never re-resolved against the
// catalog.
type Line struct {
	ID          int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Total returns UnitPrice × Quantity. It is not rounded.
func (l Line) Total() decimal.Decimal {
	return l.item().Total()
}

func (l Line) item() pricing.Item {
	return pricing.Item{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
}

// Header is an order without its lines. Totals hold the amounts computed
// at the last commit.
type Header struct {
	ID           int64
	CustomerID   int64
	CustomerName string
	CreatedAt    time.Time
	Totals       pricing.Totals
}

// Order owns its lines exclusively.
type Order struct {
	Header
	Lines []Line
}

// Repository defines persistence operations for orders.
type Repository interface {
	// List returns every order header ordered by identifier.
	List(ctx context.Context) ([]Header, error)
	// Get returns the header of an order or ErrNotFound.
	Get(ctx context.Context, id int64) (*Header, error)
	// Lines returns the lines of an order.
	Lines(ctx context.Context, orderID int64) ([]Line, error)
	// Save atomically writes the header and replaces the full line set.
	// A zero ID allocates the next order identifier; every line receives a
	// freshly allocated identifier. The assigned identifiers are written
	// back into o.
	Save(ctx context.Context, o *Order) error
	// Delete removes an order together with its lines.
	Delete(ctx context.Context, id int64) error
}
