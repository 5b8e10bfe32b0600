package postgres

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-entry/internal/domain/customer"
)

const customerTable = "customer"

var customerColumns = []string{"cust_id", "cust_name", "email", "phone", "address", "customer_type"}

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// List returns all customers ordered by ID.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := queryRows(ctx, r.pool, psql.Select(customerColumns...).From(customerTable).OrderBy("cust_id"))
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns customers whose name contains query, ignoring case.
func (r *CustomerRepository) Search(ctx context.Context, query string) ([]customer.Customer, error) {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(query)) + "%"
	rows, err := queryRows(ctx, r.pool, psql.
		Select(customerColumns...).
		From(customerTable).
		Where(sq.ILike{"cust_name": pattern}).
		OrderBy("cust_id"),
	)
	if err != nil {
		return nil, fmt.Errorf("searching customers %q: %w", query, err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	rows, err := queryRows(ctx, r.pool, psql.
		Select(customerColumns...).
		From(customerTable).
		Where(sq.Eq{"cust_id": id}),
	)
	if err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return &c, nil
}

// Create inserts c with the next free identifier and stores it in c.ID.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		id, err := nextID(ctx, tx, customerTable, "cust_id")
		if err != nil {
			return err
		}
		_, err = exec(ctx, tx, psql.
			Insert(customerTable).
			Columns(customerColumns...).
			Values(id, c.Name, c.Email, c.Phone, c.Address, string(c.Tier)),
		)
		if err != nil {
			return fmt.Errorf("creating customer: %w", err)
		}
		c.ID = id
		return nil
	})
}

// Update overwrites the stored fields of c. Orders keep the customer name
// they were saved with.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	tag, err := exec(ctx, r.pool, psql.
		Update(customerTable).
		SetMap(map[string]any{
			"cust_name":     c.Name,
			"email":         c.Email,
			"phone":         c.Phone,
			"address":       c.Address,
			"customer_type": string(c.Tier),
		}).
		Where(sq.Eq{"cust_id": c.ID}),
	)
	if err != nil {
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// Delete removes the customer. Orders referencing it are left untouched.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := exec(ctx, r.pool, psql.Delete(customerTable).Where(sq.Eq{"cust_id": id}))
	if err != nil {
		return fmt.Errorf("deleting customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var (
		c    customer.Customer
		tier string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &tier)
	c.Tier = customer.ParseTier(tier)
	return c, err
}
