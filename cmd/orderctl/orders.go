package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/pricing"
	"github.com/xenking/order-entry/internal/report"
)

// lineSpec is a parsed PRODUCT:QTY[@PRICE] argument.
type lineSpec struct {
	ProductID int64
	Quantity  int
	Price     *decimal.Decimal
}

func parseLineSpec(s string) (lineSpec, error) {
	var spec lineSpec

	rest, price, hasPrice := strings.Cut(strings.TrimSpace(s), "@")
	prod, qty, ok := strings.Cut(rest, ":")
	if !ok {
		return spec, errors.Errorf("line %q: want PRODUCT:QTY[@PRICE]", s)
	}

	var err error
	if spec.ProductID, err = strconv.ParseInt(prod, 10, 64); err != nil {
		return spec, errors.Errorf("line %q: invalid product id", s)
	}
	if spec.Quantity, err = strconv.Atoi(qty); err != nil {
		return spec, errors.Errorf("line %q: invalid quantity", s)
	}
	if hasPrice {
		p, err := decimal.NewFromString(price)
		if err != nil {
			return spec, errors.Errorf("line %q: invalid price", s)
		}
		spec.Price = &p
	}
	return spec, nil
}

func printTotals(tw io.Writer, t pricing.Totals) {
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\n", report.Money(t.Subtotal))
	fmt.Fprintf(tw, "\t\t\tDiscount\t%s\n", report.Money(t.Discount))
	fmt.Fprintf(tw, "\t\t\tTax\t%s\n", report.Money(t.Tax))
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\n", report.Money(t.Total))
}

func printLines(w io.Writer, lines []order.Line, totals pricing.Totals) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tPRODUCT\tQTY\tUNIT PRICE\tTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			l.ID, l.ProductName, l.Quantity, report.Money(l.UnitPrice), report.Money(l.Total()))
	}
	printTotals(tw, totals)
	return tw.Flush()
}

func printHeaders(w io.Writer, headers []order.Header) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCUSTOMER\tDATE\tSUBTOTAL\tDISCOUNT\tTAX\tTOTAL")
	for _, h := range headers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			h.ID, h.CustomerName, h.CreatedAt.Format(report.DateLayout),
			report.Money(h.Totals.Subtotal), report.Money(h.Totals.Discount),
			report.Money(h.Totals.Tax), report.Money(h.Totals.Total))
	}
	return tw.Flush()
}

var editFlags = []cli.Flag{
	&cli.Int64Flag{Name: "customer", Usage: "customer id"},
	&cli.StringSliceFlag{Name: "add", Usage: "stage a line, PRODUCT:QTY[@PRICE] (repeatable)"},
	&cli.Int64SliceFlag{Name: "remove", Usage: "remove a staged line by id (repeatable)"},
	&cli.IntSliceFlag{Name: "remove-at", Usage: "remove a staged line by its 0-based position, applied before --remove (repeatable)"},
	&cli.BoolFlag{Name: "dry-run", Usage: "print the priced order without saving"},
}

// edit drives an editing session for orderID (zero for a new order) with
// the changes given on the command line and commits it.
func (e *env) edit(c *cli.Context, orderID int64) error {
	ctx := c.Context

	sess, err := e.orders.Load(ctx, orderID)
	if err != nil {
		return err
	}
	if c.IsSet("customer") {
		if err := e.orders.SelectCustomer(ctx, sess, c.Int64("customer")); err != nil {
			return err
		}
	}
	// Highest positions first so earlier removals do not shift later ones.
	positions := slices.Clone(c.IntSlice("remove-at"))
	slices.Sort(positions)
	for _, i := range slices.Backward(slices.Compact(positions)) {
		if err := sess.RemoveLineAt(i); err != nil {
			return errors.Wrapf(err, "remove line at %d", i)
		}
	}
	for _, id := range c.Int64Slice("remove") {
		if err := sess.RemoveLine(id); err != nil {
			return errors.Wrapf(err, "remove line %d", id)
		}
	}
	for _, raw := range c.StringSlice("add") {
		spec, err := parseLineSpec(raw)
		if err != nil {
			return err
		}
		if _, err := e.orders.AddLine(ctx, sess, spec.ProductID, spec.Quantity, spec.Price); err != nil {
			return err
		}
	}

	if c.Bool("dry-run") {
		return printLines(c.App.Writer, sess.Lines(), sess.Recompute())
	}

	id, err := e.orders.Commit(ctx, sess)
	if err != nil {
		return err
	}
	e.lg.Info("Order saved",
		zap.Int64("id", id),
		zap.String("total", sess.Totals().Total.StringFixed(2)),
	)
	return printLines(c.App.Writer, sess.Lines(), sess.Totals())
}

func ordersCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "list, inspect and edit orders",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all orders",
				Action: func(c *cli.Context) error {
					headers, err := e.orders.List(c.Context)
					if err != nil {
						return err
					}
					return printHeaders(c.App.Writer, headers)
				},
			},
			{
				Name:      "show",
				Usage:     "show an order with its lines",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return err
					}
					o, err := e.orders.Get(c.Context, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Order %d for %s (customer %d) on %s\n\n",
						o.ID, o.CustomerName, o.CustomerID, o.CreatedAt.Format(report.DateLayout))
					return printLines(c.App.Writer, o.Lines, o.Totals)
				},
			},
			{
				Name:      "delete",
				Usage:     "delete an order and its lines",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return err
					}
					if err := e.orders.Delete(c.Context, id); err != nil {
						return err
					}
					e.lg.Info("Order deleted", zap.Int64("id", id))
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create an order",
				Flags: editFlags,
				Action: func(c *cli.Context) error {
					return e.edit(c, 0)
				},
			},
			{
				Name:      "edit",
				Usage:     "change an existing order; all of its lines are rewritten",
				ArgsUsage: "ID",
				Flags:     editFlags,
				Action: func(c *cli.Context) error {
					id, err := argID(c)
					if err != nil {
						return err
					}
					return e.edit(c, id)
				},
			},
		},
	}
}
