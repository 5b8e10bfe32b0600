package handler

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/domain/product"
	"github.com/xenking/order-entry/internal/pricing"
	"github.com/xenking/order-entry/internal/report"
)

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return errors.Wrap(errBadRequest, err.Error())
}

func money(e *jx.Encoder, name string, d decimal.Decimal) {
	e.FieldStart(name)
	e.Str(d.StringFixed(2))
}

func encodeCustomer(e *jx.Encoder, c customer.Customer) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("email", func(e *jx.Encoder) { e.Str(c.Email) })
		e.Field("phone", func(e *jx.Encoder) { e.Str(c.Phone) })
		e.Field("address", func(e *jx.Encoder) { e.Str(c.Address) })
		e.Field("tier", func(e *jx.Encoder) { e.Str(string(c.Tier)) })
	})
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		money(e, "price", p.Price)
	})
}

func encodeTotals(e *jx.Encoder, t pricing.Totals) {
	money(e, "subtotal", t.Subtotal)
	money(e, "discount", t.Discount)
	money(e, "tax", t.Tax)
	money(e, "total", t.Total)
}

func encodeLines(e *jx.Encoder, lines []order.Line) {
	e.Arr(func(e *jx.Encoder) {
		for _, l := range lines {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Int64(l.ID) })
				e.Field("productId", func(e *jx.Encoder) { e.Int64(l.ProductID) })
				e.Field("productName", func(e *jx.Encoder) { e.Str(l.ProductName) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
				e.Field("unitPrice", func(e *jx.Encoder) { e.Str(l.UnitPrice.String()) })
				money(e, "total", l.Total())
			})
		}
	})
}

func encodeHeaderFields(e *jx.Encoder, h order.Header) {
	e.Field("id", func(e *jx.Encoder) { e.Int64(h.ID) })
	e.Field("customerId", func(e *jx.Encoder) { e.Int64(h.CustomerID) })
	e.Field("customerName", func(e *jx.Encoder) { e.Str(h.CustomerName) })
	e.Field("createdAt", func(e *jx.Encoder) { e.Str(h.CreatedAt.Format(order.DateLayout)) })
	encodeTotals(e, h.Totals)
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		encodeHeaderFields(e, o.Header)
		e.FieldStart("lines")
		encodeLines(e, o.Lines)
	})
}

func encodeHeaders(e *jx.Encoder, headers []order.Header) {
	e.Arr(func(e *jx.Encoder) {
		for _, h := range headers {
			e.Obj(func(e *jx.Encoder) { encodeHeaderFields(e, h) })
		}
	})
}

func encodeSession(e *jx.Encoder, id string, s *order.Session) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(id) })
		e.Field("orderId", func(e *jx.Encoder) { e.Int64(s.OrderID()) })
		e.FieldStart("customer")
		if c, ok := s.Customer(); ok {
			encodeCustomer(e, c)
		} else {
			e.Null()
		}
		e.Field("tier", func(e *jx.Encoder) { e.Str(string(s.Tier())) })
		e.FieldStart("lines")
		encodeLines(e, s.Lines())
		encodeTotals(e, s.Totals())
	})
}

func encodeSummary(e *jx.Encoder, s report.Summary) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("orders", func(e *jx.Encoder) { e.Int(s.Orders) })
		money(e, "revenue", s.Revenue)
		money(e, "discounts", s.Discounts)
		money(e, "tax", s.Tax)
	})
}

func encodeError(e *jx.Encoder, code int, msg string, problems []string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(code) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		if len(problems) > 0 {
			e.Field("errors", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, p := range problems {
						e.Str(p)
					}
				})
			})
		}
	})
}

// decodeObject reads a JSON object from r and calls field for each key. An
// empty body is treated as an empty object.
func decodeObject(r io.Reader, field func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return badRequest(err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := jx.DecodeBytes(data).Obj(field); err != nil {
		return badRequest(err)
	}
	return nil
}

// decodeDecimal accepts a JSON string or number.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(n.String())
	default:
		return decimal.Decimal{}, errors.New("expected decimal string or number")
	}
}

func decodeCustomer(r io.Reader) (customer.Customer, error) {
	var c customer.Customer
	err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			c.Name, err = d.Str()
		case "email":
			c.Email, err = d.Str()
		case "phone":
			c.Phone, err = d.Str()
		case "address":
			c.Address, err = d.Str()
		case "tier":
			var tier string
			tier, err = d.Str()
			c.Tier = customer.Tier(tier)
		default:
			err = d.Skip()
		}
		return err
	})
	if c.Tier == "" {
		c.Tier = customer.TierStandard
	}
	return c, err
}

type addLineRequest struct {
	ProductID int64
	Quantity  int
	UnitPrice *decimal.Decimal
}

func decodeAddLine(r io.Reader) (addLineRequest, error) {
	var req addLineRequest
	err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			req.ProductID, err = d.Int64()
		case "quantity":
			req.Quantity, err = d.Int()
		case "unitPrice":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var price decimal.Decimal
			price, err = decodeDecimal(d)
			req.UnitPrice = &price
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

// decodeID reads a single integer field from a request body.
func decodeID(r io.Reader, name string) (int64, error) {
	var id int64
	err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != name {
			return d.Skip()
		}
		var err error
		id, err = d.Int64()
		return err
	})
	return id, err
}
