package rest

import (
	"net/http"
	"strconv"

	"velora-api/internal/review"
	"velora-api/internal/utils"
)

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	reviews, err := h.reviews.ListRecentReviews(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, review.ToResponseList(reviews))
}

// createReview is public. A signed-in caller who leaves "user" out of the
// payload is recorded as the author.
func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	var in review.CreateInput
	if !h.decode(w, r, &in) {
		return
	}

	if in.User == nil {
		if caller, _ := principal(r); caller != nil {
			id := caller.ID
			in.User = &id
		}
	}

	rv, err := h.reviews.CreateReview(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, review.ToResponse(rv))
}
