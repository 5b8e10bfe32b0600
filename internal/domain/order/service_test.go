package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/product"
)

// --- Mock implementations ---

type mockCustomerRepo struct {
	byID   map[int64]*customer.Customer
	getErr error
}

func (m *mockCustomerRepo) List(_ context.Context) ([]customer.Customer, error) {
	return nil, nil
}

func (m *mockCustomerRepo) Search(_ context.Context, _ string) ([]customer.Customer, error) {
	return nil, nil
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCustomerRepo) Create(_ context.Context, _ *customer.Customer) error { return nil }
func (m *mockCustomerRepo) Update(_ context.Context, _ *customer.Customer) error { return nil }
func (m *mockCustomerRepo) Delete(_ context.Context, _ int64) error           { return nil }

type mockProductRepo struct {
	byID   map[int64]*product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

// mockOrderRepo keeps orders in memory and allocates identifiers the way
// the database store does.
type mockOrderRepo struct {
	headers map[int64]Header
	lines   map[int64][]Line
	saves   int
	saveErr error
}

func newOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{headers: map[int64]Header{}, lines: map[int64][]Line{}}
}

func (m *mockOrderRepo) List(_ context.Context) ([]Header, error) {
	out := make([]Header, 0, len(m.headers))
	for _, h := range m.headers {
		out = append(out, h)
	}
	return out, nil
}

func (m *mockOrderRepo) Get(_ context.Context, id int64) (*Header, error) {
	h, ok := m.headers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &h, nil
}

func (m *mockOrderRepo) Lines(_ context.Context, orderID int64) ([]Line, error) {
	return append([]Line(nil), m.lines[orderID]...), nil
}

func (m *mockOrderRepo) Save(_ context.Context, o *Order) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if o.ID == 0 {
		for id := range m.headers {
			o.ID = max(o.ID, id)
		}
		o.ID++
	} else if _, ok := m.headers[o.ID]; !ok {
		return ErrNotFound
	}
	var next int64
	for _, ls := range m.lines {
		for _, l := range ls {
			next = max(next, l.ID)
		}
	}
	delete(m.lines, o.ID)
	for i := range o.Lines {
		next++
		o.Lines[i].ID = next
	}
	m.headers[o.ID] = o.Header
	m.lines[o.ID] = append([]Line(nil), o.Lines...)
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.headers[id]; !ok {
		return ErrNotFound
	}
	delete(m.headers, id)
	delete(m.lines, id)
	return nil
}

// --- Helpers ---

var testNow = time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

func newCustomerRepo(cs ...customer.Customer) *mockCustomerRepo {
	byID := make(map[int64]*customer.Customer, len(cs))
	for i := range cs {
		byID[cs[i].ID] = &cs[i]
	}
	return &mockCustomerRepo{byID: byID}
}

func newProductRepo(ps ...product.Product) *mockProductRepo {
	byID := make(map[int64]*product.Product, len(ps))
	for i := range ps {
		byID[ps[i].ID] = &ps[i]
	}
	return &mockProductRepo{byID: byID}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	customers *mockCustomerRepo
	products  *mockProductRepo
	orders    *mockOrderRepo
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		customers: newCustomerRepo(
			customer.Customer{ID: 1, Name: "Alice Martin", Tier: customer.TierStandard},
			customer.Customer{ID: 2, Name: "Bob Tremblay", Tier: customer.TierVIP},
		),
		products: newProductRepo(
			product.Product{ID: 10, Name: "Monitor", Price: d("100.00")},
			product.Product{ID: 11, Name: "Cable", Price: d("9.99")},
		),
		orders: newOrderRepo(),
	}
	f.svc = NewService(f.customers, f.products, f.orders, WithClock(func() time.Time { return testNow }))
	return f
}

// --- Tests ---

func TestService_LoadNew(t *testing.T) {
	f := newFixture()

	sess, err := f.svc.Load(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, sess.OrderID())
	assert.Empty(t, sess.Lines())
	_, ok := sess.Customer()
	assert.False(t, ok)
}

func TestService_LoadNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Load(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_CommitNewOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	sess, err := f.svc.Load(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, f.svc.SelectCustomer(ctx, sess, 1))
	_, err = f.svc.AddLine(ctx, sess, 10, 6, nil)
	require.NoError(t, err)

	id, err := f.svc.Commit(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, id, sess.OrderID())

	h := f.orders.headers[id]
	assert.Equal(t, "Alice Martin", h.CustomerName)
	assert.True(t, testNow.Equal(h.CreatedAt))
	assert.True(t, d("600.00").Equal(h.Totals.Subtotal), "subtotal %s", h.Totals.Subtotal)
	assert.True(t, d("30.00").Equal(h.Totals.Discount), "discount %s", h.Totals.Discount)
	assert.True(t, d("85.36").Equal(h.Totals.Tax), "tax %s", h.Totals.Tax)
	assert.True(t, d("655.36").Equal(h.Totals.Total), "total %s", h.Totals.Total)
}

func TestService_CommitRecomputesForTier(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	sess := NewSession()
	require.NoError(t, f.svc.SelectCustomer(ctx, sess, 1))
	_, err := f.svc.AddLine(ctx, sess, 10, 6, nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.SelectCustomer(ctx, sess, 2))

	id, err := f.svc.Commit(ctx, sess)
	require.NoError(t, err)

	h := f.orders.headers[id]
	assert.True(t, d("120.00").Equal(h.Totals.Discount), "discount %s", h.Totals.Discount)
	assert.True(t, d("48.00").Equal(h.Totals.Tax), "tax %s", h.Totals.Tax)
	assert.True(t, d("528.00").Equal(h.Totals.Total), "total %s", h.Totals.Total)
}

func TestService_CommitReportsAllProblems(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Commit(context.Background(), NewSession())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Problems, "a customer must be selected")
	assert.Contains(t, ve.Problems, "order must have at least one line item")
	assert.Zero(t, f.orders.saves)
}

func TestService_CommitCustomerVanished(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	sess := NewSession()
	require.NoError(t, f.svc.SelectCustomer(ctx, sess, 1))
	_, err := f.svc.AddLine(ctx, sess, 11, 1, nil)
	require.NoError(t, err)
	delete(f.customers.byID, 1)

	_, err = f.svc.Commit(ctx, sess)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"customer 1 not found"}, ve.Problems)
	assert.Zero(t, f.orders.saves)
}

func TestService_CommitRefreshesCustomerName(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	sess := NewSession()
	require.NoError(t, f.svc.SelectCustomer(ctx, sess, 1))
	_, err := f.svc.AddLine(ctx, sess, 11, 1, nil)
	require.NoError(t, err)
	f.customers.byID[1].Name = "Alice Roy"

	id, err := f.svc.Commit(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "Alice Roy", f.orders.headers[id].CustomerName)
}

func TestService_EditKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	sess := NewSession()
	require.NoError(t, f.svc.SelectCustomer(ctx, sess, 1))
	_, err := f.svc.AddLine(ctx, sess, 10, 1, nil)
	require.NoError(t, err)
	id, err := f.svc.Commit(ctx, sess)
	require.NoError(t, err)

	edit, err := f.svc.Load(ctx, id)
	require.NoError(t, err)
	c, ok := edit.Customer()
	require.True(t, ok)
	assert.Equal(t, int64(1), c.ID)
	require.Len(t, edit.Lines(), 1)

	_, err = f.svc.AddLine(ctx, edit, 11, 2, nil)
	require.NoError(t, err)
	editID, err := f.svc.Commit(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, id, editID)
	assert.True(t, testNow.Equal(f.orders.headers[id].CreatedAt))

	// Lines are replaced and take fresh identifiers.
	lines := f.orders.lines[id]
	require.Len(t, lines, 2)
	assert.Equal(t, int64(2), lines[0].ID)
	assert.Equal(t, int64(3), lines[1].ID)
	assert.Len(t, f.orders.headers, 1)
}

func TestService_LoadWithDeletedCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.orders.headers[5] = Header{ID: 5, CustomerID: 99, CustomerName: "Gone"}
	f.orders.lines[5] = []Line{{ID: 1, ProductID: 10, ProductName: "Monitor", Quantity: 1, UnitPrice: d("100.00")}}

	sess, err := f.svc.Load(ctx, 5)
	require.NoError(t, err)
	_, ok := sess.Customer()
	assert.False(t, ok)
	assert.Len(t, sess.Lines(), 1)
}

func TestService_CommitVanishedOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.orders.headers[5] = Header{ID: 5, CustomerID: 1, CustomerName: "Alice Martin"}

	sess, err := f.svc.Load(ctx, 5)
	require.NoError(t, err)
	_, err = f.svc.AddLine(ctx, sess, 11, 1, nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, 5))

	_, err = f.svc.Commit(ctx, sess)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_AddLine(t *testing.T) {
	ctx := context.Background()

	t.Run("PriceOverride", func(t *testing.T) {
		f := newFixture()
		sess := NewSession()
		price := d("75.50")

		l, err := f.svc.AddLine(ctx, sess, 10, 2, &price)
		require.NoError(t, err)
		assert.True(t, price.Equal(l.UnitPrice))
		assert.Equal(t, "Monitor", l.ProductName)
	})
	t.Run("UnknownProduct", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.AddLine(ctx, NewSession(), 404, 1, nil)
		require.ErrorIs(t, err, product.ErrNotFound)
	})
	t.Run("QuantityCheckedFirst", func(t *testing.T) {
		f := newFixture()
		f.products.getErr = errors.New("unreachable")

		_, err := f.svc.AddLine(ctx, NewSession(), 10, 0, nil)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, []string{"quantity must be a positive integer, got 0"}, ve.Problems)
	})
}

func TestService_StorageErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.orders.saveErr = errors.New("connection reset")

	sess := NewSession()
	require.NoError(t, f.svc.SelectCustomer(ctx, sess, 1))
	_, err := f.svc.AddLine(ctx, sess, 11, 1, nil)
	require.NoError(t, err)

	_, err = f.svc.Commit(ctx, sess)

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "save order", se.Op)
	assert.Zero(t, sess.OrderID())

	f.customers.getErr = errors.New("connection reset")
	err = f.svc.SelectCustomer(ctx, sess, 2)
	require.ErrorAs(t, err, &se)
}

func TestService_Delete(t *testing.T) {
	f := newFixture()

	err := f.svc.Delete(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotFound)
}
