// Package rest is the JSON/HTTP surface of the storefront.
package rest

import (
	"net/http"

	"velora-api/internal/admin"
	"velora-api/internal/auth"
	"velora-api/internal/logger"
	"velora-api/internal/metrics"
	"velora-api/internal/middleware"
	"velora-api/internal/order"
	"velora-api/internal/product"
	"velora-api/internal/review"
	"velora-api/internal/user"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	users    user.Service
	products product.Service
	orders   order.Service
	reviews  review.Service
	admin    admin.Service

	metrics    *metrics.Registry
	production bool
}

type Deps struct {
	Users    user.Service
	Products product.Service
	Orders   order.Service
	Reviews  review.Service
	Admin    admin.Service

	Metrics     *metrics.Registry
	Limiter     *middleware.RateLimiter
	CORSOrigins []string
	Production  bool
}

func NewHandler(d Deps) *Handler {
	reg := d.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Handler{
		users:      d.Users,
		products:   d.Products,
		orders:     d.Orders,
		reviews:    d.Reviews,
		admin:      d.Admin,
		metrics:    reg,
		production: d.Production,
	}
}

// NewRouter wires every route behind the shared interceptor chain:
// request id, CORS, token resolution, logging, metrics, rate limiting.
func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(middleware.Authenticate(h.users, h.metrics))
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(h.metrics))
	if d.Limiter != nil {
		r.Use(d.Limiter.Handler)
	}

	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.notFound)

	r.Get("/health", h.health)
	r.Get("/metrics", h.metricsSnapshot)
	r.Get("/api", h.index)

	requireAdmin := middleware.RequireRole(auth.RoleAdmin, h.metrics)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", h.me)
			r.Put("/profile", h.updateProfile)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth, requireAdmin)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/", h.createOrder)
		r.Get("/myorders", h.myOrders)
		r.Get("/{id}", h.getOrder)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", h.listOrders)
			r.Put("/{id}/status", h.setOrderStatus)
			r.Put("/{id}/payment", h.setPaymentStatus)
		})
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Get("/", h.listReviews)
		r.Post("/", h.createReview)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth, requireAdmin)
		r.Get("/stats", h.stats)
		r.Get("/users", h.listUsers)
		r.Delete("/users/{id}", h.deleteUser)
	})

	return r
}
