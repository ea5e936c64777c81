package rest

import (
	"net/http"

	"velora-api/internal/product"
	"velora-api/internal/utils"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := product.Filter{
		Category:    q.Get("category"),
		Gender:      q.Get("gender"),
		Search:      q.Get("search"),
		Featured:    q.Get("featured") == "true",
		NewArrivals: q.Get("newArrivals") == "true",
	}

	products, err := h.products.ListProducts(r.Context(), filter, product.ParseSort(q.Get("sort")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if products == nil {
		products = []*product.Product{}
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, product.ErrNotFound)
	if !ok {
		return
	}

	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in product.Input
	if !h.decode(w, r, &in) {
		return
	}

	p, err := h.products.CreateProduct(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, product.ErrNotFound)
	if !ok {
		return
	}

	var in product.Input
	if !h.decode(w, r, &in) {
		return
	}

	p, err := h.products.UpdateProduct(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, product.ErrNotFound)
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product removed"})
}
