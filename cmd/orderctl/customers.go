package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/product"
	"github.com/xenking/order-entry/internal/report"
)

func printCustomers(w io.Writer, customers []customer.Customer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tADDRESS\tTIER")
	for _, c := range customers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone, c.Address, c.Tier)
	}
	return tw.Flush()
}

func printProducts(w io.Writer, products []product.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\t")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", p.ID, p.Name, report.Money(p.Price))
	}
	return tw.Flush()
}

func argID(c *cli.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.Errorf("expected numeric id argument, got %q", c.Args().First())
	}
	return id, nil
}

var customerFlags = []cli.Flag{
	&cli.StringFlag{Name: "name"},
	&cli.StringFlag{Name: "email"},
	&cli.StringFlag{Name: "phone"},
	&cli.StringFlag{Name: "address"},
	&cli.StringFlag{Name: "tier", Usage: "STANDARD, PREMIUM or VIP"},
}

// applyCustomerFlags copies the flags that were set onto c.
func applyCustomerFlags(ctx *cli.Context, c *customer.Customer) {
	if ctx.IsSet("name") {
		c.Name = ctx.String("name")
	}
	if ctx.IsSet("email") {
		c.Email = ctx.String("email")
	}
	if ctx.IsSet("phone") {
		c.Phone = ctx.String("phone")
	}
	if ctx.IsSet("address") {
		c.Address = ctx.String("address")
	}
	if ctx.IsSet("tier") {
		c.Tier = customer.Tier(ctx.String("tier"))
	}
	c.Normalize()
}

func customersCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "customers",
		Usage: "list and maintain customers",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all customers",
				Action: func(c *cli.Context) error {
					customers, err := e.customers.List(c.Context)
					if err != nil {
						return err
					}
					return printCustomers(c.App.Writer, customers)
				},
			},
			{
				Name:      "search",
				Usage:     "find customers by name",
				ArgsUsage: "QUERY",
				Action: func(c *cli.Context) error {
					customers, err := e.customers.Search(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printCustomers(c.App.Writer, customers)
				},
			},
			{
				Name:  "add",
				Usage: "create a customer",
				Flags: customerFlags,
				Action: func(c *cli.Context) error {
					cust := customer.Customer{Tier: customer.TierStandard}
					applyCustomerFlags(c, &cust)
					if err := cust.Validate(); err != nil {
						return err
					}
					if err := e.customers.Create(c.Context, &cust); err != nil {
						return err
					}
					e.lg.Info("Customer created", zap.Int64("id", cust.ID), zap.String("name", cust.Name))
					return nil
				},
			},
			{
				Name:      "edit",
				Usage:     "update a customer",
				ArgsUsage: "ID",
				Flags:     customerFlags,
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return err
					}
					cust, err := e.customers.GetByID(c.Context, id)
					if err != nil {
						return err
					}
					applyCustomerFlags(c, cust)
					if err := cust.Validate(); err != nil {
						return err
					}
					if err := e.customers.Update(c.Context, cust); err != nil {
						return err
					}
					e.lg.Info("Customer updated", zap.Int64("id", cust.ID))
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a customer; existing orders keep the stored name",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return err
					}
					if err := e.customers.Delete(c.Context, id); err != nil {
						return err
					}
					e.lg.Info("Customer deleted", zap.Int64("id", id))
					return nil
				},
			},
		},
	}
}

func productsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "browse the product catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all products",
				Action: func(c *cli.Context) error {
					products, err := e.products.List(c.Context)
					if err != nil {
						return err
					}
					return printProducts(c.App.Writer, products)
				},
			},
		},
	}
}
