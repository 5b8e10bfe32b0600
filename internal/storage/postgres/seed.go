package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type seedOrder struct {
	id, customerID                  int64
	customerName, date              string
	subtotal, discount, tax, total string
	lines                           []seedLine
}

type seedLine struct {
	id, productID int64
	productName   string
	quantity      int
	price         string
}

var seedCustomers = [][]any{
	{1, "John Doe", "john.doe@email.com", "555-0101", "123 Main St", "STANDARD"},
	{2, "Jane Smith", "jane.smith@email.com", "555-0102", "456 Oak Ave", "PREMIUM"},
	{3, "Bob Johnson", "bob.j@email.com", "555-0103", "789 Pine Rd", "STANDARD"},
	{4, "Alice Williams", "alice.w@email.com", "555-0104", "321 Elm St", "VIP"},
	{5, "Charlie Brown", "charlie.b@email.com", "555-0105", "654 Maple Dr", "PREMIUM"},
}

var seedProducts = []struct {
	id    int64
	name  string
	price string
}{
	{1, "Laptop", "1299.99"},
	{2, "Smartphone", "899.99"},
	{3, "Tablet", "599.99"},
	{4, "Monitor", "349.99"},
	{5, "Keyboard", "149.99"},
	{6, "Mouse", "29.99"},
	{7, "Headphones", "199.99"},
	{8, "Webcam", "89.99"},
	{9, "USB Hub", "39.99"},
	{10, "Desk Lamp", "49.99"},
}

// Demo orders keep the amounts they were entered with.
var seedOrders = []seedOrder{
	{
		id: 1, customerID: 1, customerName: "John Doe", date: "2024-01-15 10:30:00",
		subtotal: "1929.97", discount: "96.50", tax: "274.99", total: "2108.46",
		lines: []seedLine{
			{1, 1, "Laptop", 1, "1299.99"},
			{2, 3, "Tablet", 1, "599.99"},
			{3, 6, "Mouse", 1, "29.99"},
		},
	},
	{
		id: 2, customerID: 2, customerName: "Jane Smith", date: "2024-01-16 14:15:00",
		subtotal: "549.98", discount: "27.50", tax: "78.38", total: "600.86",
		lines: []seedLine{
			{4, 4, "Monitor", 1, "349.99"},
			{5, 7, "Headphones", 1, "199.99"},
		},
	},
}

// Seed loads the demo customers, products and orders into an empty
// database. It reports false without writing anything when customers
// already exist.
func Seed(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	seeded := false
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var count int64
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM customer").Scan(&count); err != nil {
			return fmt.Errorf("counting customers: %w", err)
		}
		if count > 0 {
			return nil
		}

		customers := psql.Insert(customerTable).Columns(customerColumns...)
		for _, c := range seedCustomers {
			customers = customers.Values(c...)
		}
		if _, err := exec(ctx, tx, customers); err != nil {
			return fmt.Errorf("seeding customers: %w", err)
		}

		products := psql.Insert("product").Columns("prod_id", "prod_name", "unit_price")
		for _, p := range seedProducts {
			products = products.Values(p.id, p.name, decimal.RequireFromString(p.price))
		}
		if _, err := exec(ctx, tx, products); err != nil {
			return fmt.Errorf("seeding products: %w", err)
		}

		for _, o := range seedOrders {
			_, err := exec(ctx, tx, psql.
				Insert(orderTable).
				Columns("order_id", "cust_id", "cust_name", "order_date", "subtotal", "discount", "tax", "total").
				Values(
					o.id, o.customerID, o.customerName, o.date,
					decimal.RequireFromString(o.subtotal), decimal.RequireFromString(o.discount),
					decimal.RequireFromString(o.tax), decimal.RequireFromString(o.total),
				),
			)
			if err != nil {
				return fmt.Errorf("seeding order %d: %w", o.id, err)
			}

			lines := psql.Insert(lineTable).
				Columns("line_id", "order_id", "prod_id", "prod_name", "quantity", "unit_price")
			for _, l := range o.lines {
				lines = lines.Values(l.id, o.id, l.productID, l.productName, l.quantity, decimal.RequireFromString(l.price))
			}
			if _, err := exec(ctx, tx, lines); err != nil {
				return fmt.Errorf("seeding lines of order %d: %w", o.id, err)
			}
		}

		seeded = true
		return nil
	})
	return seeded, err
}
