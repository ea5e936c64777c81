package rest

import (
	"net/http"

	"velora-api/internal/user"
	"velora-api/internal/utils"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, user.ToAuthResponse(res))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in user.LoginInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.users.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user.ToAuthResponse(res))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	caller, _ := principal(r)

	u, err := h.users.Me(r.Context(), caller.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user.ToPublic(u))
}

// updateProfile always answers with a fresh token.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := principal(r)

	var patch user.ProfilePatch
	if !h.decode(w, r, &patch) {
		return
	}

	res, err := h.users.UpdateProfile(r.Context(), caller.ID, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user.ToAuthResponse(res))
}
