package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/pricing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seededHeaders() []order.Header {
	return []order.Header{
		{
			ID: 1, CustomerID: 1, CustomerName: "John Doe",
			CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Totals: pricing.Totals{
				Subtotal: d("1929.97"), Discount: d("96.50"), Tax: d("274.99"), Total: d("2108.46"),
			},
		},
		{
			ID: 2, CustomerID: 2, CustomerName: "Jane Smith",
			CreatedAt: time.Date(2024, 1, 16, 14, 15, 0, 0, time.UTC),
			Totals: pricing.Totals{
				Subtotal: d("549.98"), Discount: d("27.50"), Tax: d("78.38"), Total: d("600.86"),
			},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(seededHeaders())

	assert.Equal(t, 2, s.Orders)
	assert.True(t, d("2709.32").Equal(s.Revenue), "revenue %s", s.Revenue)
	assert.True(t, d("124.00").Equal(s.Discounts), "discounts %s", s.Discounts)
	assert.True(t, d("353.37").Equal(s.Tax), "tax %s", s.Tax)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.Orders)
	assert.True(t, s.Revenue.IsZero())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, seededHeaders()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Order ID,Customer,Date,Subtotal,Discount,Tax,Total", lines[0])
	assert.Equal(t, `1,John Doe,01/15/2024 10:30,"$1,929.97",$96.50,$274.99,"$2,108.46"`, lines[1])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "Total Orders,2", lines[4])
	assert.Equal(t, `Total Revenue,"$2,709.32"`, lines[5])
	assert.Equal(t, "Total Tax Collected,$353.37", lines[7])
}

func TestMoney(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5.5", "$5.50"},
		{"999.99", "$999.99"},
		{"1000", "$1,000.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-42.1", "-$42.10"},
	} {
		assert.Equal(t, tt.want, Money(d(tt.in)), tt.in)
	}
}
