package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/product"
)

// Service loads editing sessions, resolves customers and products for them,
// and commits them through the order Repository.
type Service struct {
	customers customer.Repository
	products  product.Repository
	orders    Repository
	now       func() time.Time
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithTracerProvider traces commits with the given provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer("github.com/xenking/order-entry/internal/domain/order")
	}
}

// WithClock overrides the clock used to stamp new orders.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	customers customer.Repository,
	products product.Repository,
	orders Repository,
	opts ...Option,
) *Service {
	s := &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		now:       time.Now,
		tracer:    noop.NewTracerProvider().Tracer(""),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load starts an editing session. A zero id starts a new order; otherwise
// the stored header and lines are staged and the customer is resolved by
// id. A customer that no longer exists leaves the selection empty.
func (s *Service) Load(ctx context.Context, id int64) (*Session, error) {
	if id == 0 {
		return NewSession(), nil
	}

	h, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, storageError("get order", err)
	}

	lines, err := s.orders.Lines(ctx, id)
	if err != nil {
		return nil, storageError("get order lines", err)
	}

	c, err := s.customers.GetByID(ctx, h.CustomerID)
	switch {
	case errors.Is(err, customer.ErrNotFound):
		c = nil
	case err != nil:
		return nil, storageError("get customer", err)
	}

	return restoreSession(h, lines, c), nil
}

// SelectCustomer resolves the customer and selects it on the session.
func (s *Service) SelectCustomer(ctx context.Context, sess *Session, customerID int64) error {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return fmt.Errorf("customer %d: %w", customerID, customer.ErrNotFound)
		}
		return storageError("get customer", err)
	}
	sess.SelectCustomer(*c)
	return nil
}

// AddLine resolves the product and stages a line for it. The quantity is
// checked before the catalog is consulted.
func (s *Service) AddLine(
	ctx context.Context,
	sess *Session,
	productID int64,
	quantity int,
	priceOverride *decimal.Decimal,
) (Line, error) {
	if quantity < 1 {
		return Line{}, invalid(fmt.Sprintf("quantity must be a positive integer, got %d", quantity))
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return Line{}, fmt.Errorf("product %d: %w", productID, product.ErrNotFound)
		}
		return Line{}, storageError("get product", err)
	}
	return sess.AddLine(*p, quantity, priceOverride)
}

// Commit validates the session, recomputes its totals and persists it. The
// customer is resolved again so the stored name and the tier reflect the
// customer at save time. On success the session adopts the assigned order
// and line identifiers.
func (s *Service) Commit(ctx context.Context, sess *Session) (_ int64, rerr error) {
	ctx, span := s.tracer.Start(ctx, "order.Commit",
		trace.WithAttributes(
			attribute.Int64("order.id", sess.OrderID()),
			attribute.Int("order.lines", len(sess.lines)),
		),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	var problems []string
	if c, ok := sess.Customer(); ok {
		fresh, err := s.customers.GetByID(ctx, c.ID)
		switch {
		case errors.Is(err, customer.ErrNotFound):
			problems = append(problems, fmt.Sprintf("customer %d not found", c.ID))
		case err != nil:
			return 0, storageError("get customer", err)
		default:
			sess.SelectCustomer(*fresh)
		}
	}

	if err := sess.Validate(); err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return 0, err
		}
		problems = append(problems, ve.Problems...)
	}
	if len(problems) > 0 {
		return 0, invalid(problems...)
	}

	o := sess.snapshot(s.now())
	if err := s.orders.Save(ctx, o); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("order %d: %w", o.ID, ErrNotFound)
		}
		return 0, storageError("save order", err)
	}

	sess.committed(o)
	span.SetAttributes(attribute.Int64("order.committed_id", o.ID))
	return o.ID, nil
}

// Get returns a stored order with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	h, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return nil, storageError("get order", err)
	}
	lines, err := s.orders.Lines(ctx, id)
	if err != nil {
		return nil, storageError("get order lines", err)
	}
	return &Order{Header: *h, Lines: lines}, nil
}

// List returns all order headers.
func (s *Service) List(ctx context.Context) ([]Header, error) {
	headers, err := s.orders.List(ctx)
	if err != nil {
		return nil, storageError("list orders", err)
	}
	return headers, nil
}

// Delete removes an order and its lines.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("order %d: %w", id, ErrNotFound)
		}
		return storageError("delete order", err)
	}
	return nil
}
