package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/order-entry/internal/report"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	headers, err := h.orders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeHeaders(e, headers) })
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeOrder(e, o) })
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reportSummary(w http.ResponseWriter, r *http.Request) {
	headers, err := h.orders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSummary(e, report.Summarize(headers)) })
}

func (h *Handler) reportCSV(w http.ResponseWriter, r *http.Request) {
	headers, err := h.orders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="order-summary.csv"`)
	if err := report.WriteCSV(w, headers); err != nil {
		h.fail(w, r, err)
	}
}
