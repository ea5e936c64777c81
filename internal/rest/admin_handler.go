package rest

import (
	"net/http"

	"velora-api/internal/admin"
	"velora-api/internal/user"
	"velora-api/internal/utils"
)

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetDashboardStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, admin.ToStatsResponse(stats))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user.ToPublicList(users))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, user.ErrNotFound)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "User removed"})
}
