package rest

import (
	"net/http"
	"time"

	"velora-api/internal/auth"
	"velora-api/internal/user"
	"velora-api/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const apiVersion = "1.0.0"

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) metricsSnapshot(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.metrics.Snapshot())
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Velora Wear API",
		"version": apiVersion,
		"endpoints": map[string]map[string]string{
			"auth": {
				"register": "POST /api/auth/register",
				"login":    "POST /api/auth/login",
				"me":       "GET /api/auth/me",
				"profile":  "PUT /api/auth/profile",
			},
			"products": {
				"list":   "GET /api/products",
				"get":    "GET /api/products/:id",
				"create": "POST /api/products (Admin)",
				"update": "PUT /api/products/:id (Admin)",
				"delete": "DELETE /api/products/:id (Admin)",
			},
			"orders": {
				"create":        "POST /api/orders",
				"myOrders":      "GET /api/orders/myorders",
				"get":           "GET /api/orders/:id",
				"list":          "GET /api/orders (Admin)",
				"updateStatus":  "PUT /api/orders/:id/status (Admin)",
				"updatePayment": "PUT /api/orders/:id/payment (Admin)",
			},
			"reviews": {
				"list":   "GET /api/reviews",
				"create": "POST /api/reviews",
			},
			"admin": {
				"stats":      "GET /api/admin/stats (Admin)",
				"users":      "GET /api/admin/users (Admin)",
				"deleteUser": "DELETE /api/admin/users/:id (Admin)",
			},
		},
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusNotFound, notFoundResponse{
		Code:        "404",
		Message:     "Not Found",
		Description: "The requested resource is not available.",
	})
}

// principal must only be called behind middleware.RequireAuth.
func principal(r *http.Request) (*user.User, auth.Principal) {
	u, _ := user.FromContext(r.Context())
	if u == nil {
		return nil, auth.Principal{}
	}
	return u, u.Principal()
}

// pathID parses the {id} route parameter. A malformed id can never match a
// stored record, so it is reported as notFound.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, notFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		h.writeError(w, r, errMalformedBody)
		return false
	}
	return true
}
