package rest

import (
	"net/http"

	"velora-api/internal/order"
	"velora-api/internal/utils"
)

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	_, p := principal(r)

	var in order.CreateOrderInput
	if !h.decode(w, r, &in) {
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), p, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order.ToResponse(o))
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	_, p := principal(r)

	orders, err := h.orders.ListMyOrders(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.ToResponseList(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	_, p := principal(r)

	id, ok := h.pathID(w, r, order.ErrNotFound)
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(r.Context(), p, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.ToResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	_, p := principal(r)

	orders, err := h.orders.ListAllOrders(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.ToResponseList(orders))
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	_, p := principal(r)

	id, ok := h.pathID(w, r, order.ErrNotFound)
	if !ok {
		return
	}

	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}

	o, err := h.orders.SetOrderStatus(r.Context(), p, id, order.Status(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.ToResponse(o))
}

func (h *Handler) setPaymentStatus(w http.ResponseWriter, r *http.Request) {
	_, p := principal(r)

	id, ok := h.pathID(w, r, order.ErrNotFound)
	if !ok {
		return
	}

	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}

	o, err := h.orders.SetPaymentStatus(r.Context(), p, id, order.PaymentStatus(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order.ToResponse(o))
}
