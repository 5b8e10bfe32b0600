// Package handler exposes customers, products, orders and order editing
// sessions over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/customer"
	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/domain/product"
)

// Handler serves the JSON API.
type Handler struct {
	customers customer.Repository
	products  product.Repository
	orders    *order.Service
	sessions  *Sessions

	commits    metric.Int64Counter
	rejections metric.Int64Counter
}

// Option configures a Handler.
type Option func(*config)

type config struct {
	meterProvider metric.MeterProvider
	sessionTTL    time.Duration
}

// WithMeterProvider records commit metrics with the given provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithSessionTTL sets how long an editing session may stay idle before it
// is discarded.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.sessionTTL = ttl
	}
}

// New constructs a Handler with the required domain dependencies.
func New(
	customers customer.Repository,
	products product.Repository,
	orders *order.Service,
	opts ...Option,
) (*Handler, error) {
	cfg := config{
		meterProvider: noop.NewMeterProvider(),
		sessionTTL:    DefaultSessionTTL,
	}
	for _, o := range opts {
		o(&cfg)
	}

	meter := cfg.meterProvider.Meter("github.com/xenking/order-entry/internal/handler")
	commits, err := meter.Int64Counter("orderentry.order.commits",
		metric.WithDescription("Orders committed from editing sessions"))
	if err != nil {
		return nil, errors.Wrap(err, "create commits counter")
	}
	rejections, err := meter.Int64Counter("orderentry.order.rejections",
		metric.WithDescription("Commits rejected by validation"))
	if err != nil {
		return nil, errors.Wrap(err, "create rejections counter")
	}

	return &Handler{
		customers:  customers,
		products:   products,
		orders:     orders,
		sessions:   NewSessions(cfg.sessionTTL, time.Now),
		commits:    commits,
		rejections: rejections,
	}, nil
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/customers", h.listCustomers)
	mux.HandleFunc("POST /api/customers", h.createCustomer)
	mux.HandleFunc("GET /api/customers/{id}", h.getCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", h.updateCustomer)
	mux.HandleFunc("DELETE /api/customers/{id}", h.deleteCustomer)

	mux.HandleFunc("GET /api/products", h.listProducts)

	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", h.deleteOrder)
	mux.HandleFunc("GET /api/reports/summary", h.reportSummary)
	mux.HandleFunc("GET /api/reports/orders.csv", h.reportCSV)

	mux.HandleFunc("POST /api/sessions", h.openSession)
	mux.HandleFunc("GET /api/sessions/{sid}", h.getSession)
	mux.HandleFunc("DELETE /api/sessions/{sid}", h.closeSession)
	mux.HandleFunc("PUT /api/sessions/{sid}/customer", h.selectCustomer)
	mux.HandleFunc("POST /api/sessions/{sid}/lines", h.addLine)
	mux.HandleFunc("DELETE /api/sessions/{sid}/lines/{lineId}", h.removeLine)
	mux.HandleFunc("DELETE /api/sessions/{sid}/positions/{index}", h.removeLineAt)
	mux.HandleFunc("POST /api/sessions/{sid}/commit", h.commit)
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string, problems []string) {
	writeJSON(w, status, func(e *jx.Encoder) { encodeError(e, status, msg, problems) })
}

// fail maps err to a status code and writes the error response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *order.ValidationError
		se *order.StorageError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, "validation failed", ve.Problems)
	case errors.Is(err, customer.ErrNameRequired):
		writeError(w, http.StatusUnprocessableEntity, "validation failed", []string{err.Error()})
	case errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrLineNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, errSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &se):
		zctx.From(r.Context()).Warn("Storage failure", zap.String("op", se.Op), zap.Error(se.Err))
		writeError(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, badRequest(errors.Errorf("invalid %s %q", name, r.PathValue(name)))
	}
	return id, nil
}
