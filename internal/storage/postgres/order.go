package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-entry/internal/domain/order"
)

const (
	orderTable = "orders"
	lineTable  = "order_line"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func selectHeaders() sq.SelectBuilder {
	return psql.
		Select("order_id", "cust_id", "cust_name", "order_date", "subtotal", "discount", "tax", "total").
		From(orderTable)
}

// List returns all order headers ordered by ID.
func (r *OrderRepository) List(ctx context.Context) ([]order.Header, error) {
	rows, err := queryRows(ctx, r.pool, selectHeaders().OrderBy("order_id"))
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanHeader)
}

// Get returns the header of a single order.
func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Header, error) {
	rows, err := queryRows(ctx, r.pool, selectHeaders().Where(sq.Eq{"order_id": id}))
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	h, err := pgx.CollectExactlyOneRow(rows, scanHeader)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	return &h, nil
}

// Lines returns the lines of an order ordered by line ID.
func (r *OrderRepository) Lines(ctx context.Context, orderID int64) ([]order.Line, error) {
	rows, err := queryRows(ctx, r.pool, psql.
		Select("line_id", "prod_id", "prod_name", "quantity", "unit_price").
		From(lineTable).
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("line_id"),
	)
	if err != nil {
		return nil, fmt.Errorf("getting lines of order %d: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanLine)
}

// Save persists o in one transaction. A new order (zero ID) gets the next
// order identifier and o.CreatedAt as its date. An existing order has its
// customer and totals updated in place. In both cases the stored lines are
// replaced by o.Lines, which receive identifiers following the largest line
// identifier present before the replacement. The assigned identifiers are
// written back to o only after the transaction commits.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	var (
		orderID = o.ID
		lineIDs = make([]int64, len(o.Lines))
	)

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if orderID == 0 {
			id, err := nextID(ctx, tx, orderTable, "order_id")
			if err != nil {
				return err
			}
			orderID = id
			if err := insertHeader(ctx, tx, orderID, o); err != nil {
				return err
			}
		} else if err := updateHeader(ctx, tx, orderID, o); err != nil {
			return err
		}

		next, err := nextID(ctx, tx, lineTable, "line_id")
		if err != nil {
			return err
		}
		if _, err := exec(ctx, tx, psql.Delete(lineTable).Where(sq.Eq{"order_id": orderID})); err != nil {
			return fmt.Errorf("deleting lines of order %d: %w", orderID, err)
		}
		if len(o.Lines) == 0 {
			return nil
		}

		ins := psql.Insert(lineTable).
			Columns("line_id", "order_id", "prod_id", "prod_name", "quantity", "unit_price")
		for i, l := range o.Lines {
			lineIDs[i] = next + int64(i)
			ins = ins.Values(lineIDs[i], orderID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice)
		}
		if _, err := exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("inserting lines of order %d: %w", orderID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	o.ID = orderID
	for i := range o.Lines {
		o.Lines[i].ID = lineIDs[i]
	}
	return nil
}

func insertHeader(ctx context.Context, q querier, id int64, o *order.Order) error {
	_, err := exec(ctx, q, psql.
		Insert(orderTable).
		Columns("order_id", "cust_id", "cust_name", "order_date", "subtotal", "discount", "tax", "total").
		Values(
			id, o.CustomerID, o.CustomerName, o.CreatedAt.Format(order.DateLayout),
			o.Totals.Subtotal, o.Totals.Discount, o.Totals.Tax, o.Totals.Total,
		),
	)
	if err != nil {
		return fmt.Errorf("inserting order %d: %w", id, err)
	}
	return nil
}

func updateHeader(ctx context.Context, q querier, id int64, o *order.Order) error {
	tag, err := exec(ctx, q, psql.
		Update(orderTable).
		SetMap(map[string]any{
			"cust_id":   o.CustomerID,
			"cust_name": o.CustomerName,
			"subtotal":  o.Totals.Subtotal,
			"discount":  o.Totals.Discount,
			"tax":       o.Totals.Tax,
			"total":     o.Totals.Total,
		}).
		Where(sq.Eq{"order_id": id}),
	)
	if err != nil {
		return fmt.Errorf("updating order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes an order and its lines in one transaction.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := exec(ctx, tx, psql.Delete(lineTable).Where(sq.Eq{"order_id": id})); err != nil {
			return fmt.Errorf("deleting lines of order %d: %w", id, err)
		}
		tag, err := exec(ctx, tx, psql.Delete(orderTable).Where(sq.Eq{"order_id": id}))
		if err != nil {
			return fmt.Errorf("deleting order %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		return nil
	})
}

func scanHeader(row pgx.CollectableRow) (order.Header, error) {
	var (
		h    order.Header
		date string
	)
	err := row.Scan(
		&h.ID, &h.CustomerID, &h.CustomerName, &date,
		&h.Totals.Subtotal, &h.Totals.Discount, &h.Totals.Tax, &h.Totals.Total,
	)
	if err != nil {
		return h, err
	}
	h.CreatedAt, err = time.ParseInLocation(order.DateLayout, date, time.Local)
	if err != nil {
		return h, fmt.Errorf("parsing date of order %d: %w", h.ID, err)
	}
	return h, nil
}

func scanLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(&l.ID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice)
	return l, err
}
