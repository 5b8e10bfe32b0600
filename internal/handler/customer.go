package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/order-entry/internal/domain/customer"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	var (
		customers []customer.Customer
		err       error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		customers, err = h.customers.Search(r.Context(), q)
	} else {
		customers, err = h.customers.List(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range customers {
				encodeCustomer(e, c)
			}
		})
	})
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomer(e, *c) })
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCustomer(r.Body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.customers.Create(r.Context(), &c); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCustomer(e, c) })
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := decodeCustomer(r.Body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c.ID = id
	c.Normalize()
	if err := c.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.customers.Update(r.Context(), &c); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomer(e, c) })
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
