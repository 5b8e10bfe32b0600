// Package report renders the order summary report.
package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/internal/domain/order"
)

// DateLayout is the order date format used in the report.
const DateLayout = "01/02/2006 15:04"

// Summary aggregates the stored amounts of a set of orders.
type Summary struct {
	Orders    int
	Revenue   decimal.Decimal
	Discounts decimal.Decimal
	Tax       decimal.Decimal
}

// Summarize adds up the stored totals of headers. Amounts are not
// recomputed.
func Summarize(headers []order.Header) Summary {
	s := Summary{
		Revenue:   decimal.Zero,
		Discounts: decimal.Zero,
		Tax:       decimal.Zero,
	}
	for _, h := range headers {
		s.Orders++
		s.Revenue = s.Revenue.Add(h.Totals.Total)
		s.Discounts = s.Discounts.Add(h.Totals.Discount)
		s.Tax = s.Tax.Add(h.Totals.Tax)
	}
	return s
}

// WriteCSV writes one row per order followed by the summary rows.
func WriteCSV(w io.Writer, headers []order.Header) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{"Order ID", "Customer", "Date", "Subtotal", "Discount", "Tax", "Total"}}
	for _, h := range headers {
		date := ""
		if !h.CreatedAt.IsZero() {
			date = h.CreatedAt.Format(DateLayout)
		}
		rows = append(rows, []string{
			strconv.FormatInt(h.ID, 10),
			h.CustomerName,
			date,
			Money(h.Totals.Subtotal),
			Money(h.Totals.Discount),
			Money(h.Totals.Tax),
			Money(h.Totals.Total),
		})
	}

	s := Summarize(headers)
	rows = append(rows,
		[]string{},
		[]string{"Total Orders", strconv.Itoa(s.Orders)},
		[]string{"Total Revenue", Money(s.Revenue)},
		[]string{"Total Discounts", Money(s.Discounts)},
		[]string{"Total Tax Collected", Money(s.Tax)},
	)

	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}

// Money formats d as a dollar amount with two decimals and thousands
// separators, e.g. "$1,929.97".
func Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}
