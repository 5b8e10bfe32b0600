package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/order-entry/internal/domain/order"
)

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	orderID, err := decodeID(r.Body, "orderId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.orders.Load(r.Context(), orderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	id := h.sessions.Open(s).String()
	zctx.From(r.Context()).Debug("Session opened",
		zap.String("session_id", id),
		zap.Int64("order_id", orderID),
	)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeSession(e, id, s) })
}

// withSession runs fn on the session named in the path and responds with
// the resulting session state.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(s *order.Session) error) {
	sid := r.PathValue("sid")
	var out func(e *jx.Encoder)
	err := h.sessions.Do(sid, func(s *order.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		// Encode while the session is locked.
		var e jx.Encoder
		encodeSession(&e, sid, s)
		b := e.Bytes()
		out = func(e *jx.Encoder) { e.Raw(b) }
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(*order.Session) error { return nil })
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.PathValue("sid")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) selectCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := decodeID(r.Body, "customerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.withSession(w, r, func(s *order.Session) error {
		return h.orders.SelectCustomer(r.Context(), s, customerID)
	})
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAddLine(r.Body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.withSession(w, r, func(s *order.Session) error {
		_, err := h.orders.AddLine(r.Context(), s, req.ProductID, req.Quantity, req.UnitPrice)
		return err
	})
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := pathID(r, "lineId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.withSession(w, r, func(s *order.Session) error {
		return s.RemoveLine(lineID)
	})
}

// removeLineAt removes a line by its position in the session's line list.
func (h *Handler) removeLineAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.fail(w, r, badRequest(errors.Errorf("invalid index %q", r.PathValue("index"))))
		return
	}
	h.withSession(w, r, func(s *order.Session) error {
		return s.RemoveLineAt(index)
	})
}

func (h *Handler) commit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := r.PathValue("sid")

	var orderID int64
	err := h.sessions.Do(sid, func(s *order.Session) error {
		id, err := h.orders.Commit(ctx, s)
		orderID = id
		return err
	})
	if err != nil {
		var ve *order.ValidationError
		if errors.As(err, &ve) {
			h.rejections.Add(ctx, 1)
		}
		h.fail(w, r, err)
		return
	}

	h.commits.Add(ctx, 1)
	zctx.From(ctx).Info("Order committed",
		zap.String("session_id", sid),
		zap.Int64("order_id", orderID),
	)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("orderId", func(e *jx.Encoder) { e.Int64(orderID) })
		})
	})
}
