// Package httpx is the JSON presentation surface for the three role
// dashboards (owner, buyer, user portal). It translates requests into
// core calls and error kinds into HTTP statuses; no business rules live
// here.
package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/inventory"
	"github.com/nberthet/depotvente/internal/ledger"
	"github.com/nberthet/depotvente/internal/middleware"
	"github.com/nberthet/depotvente/internal/models"
	"github.com/nberthet/depotvente/internal/report"
	"github.com/nberthet/depotvente/internal/users"
)

// Server bundles the core components behind the HTTP surface.
type Server struct {
	Inventory *inventory.Manager
	Users     *users.Service
	Ledger    *ledger.Engine
	Reports   *report.Generator
	Auth      *auth.Authenticator
	Tokens    *auth.TokenManager
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/auth/login", s.loginUser)
	r.Post("/auth/owner", s.loginOwner)

	// Buyer-facing storefront.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(s.Tokens))
		r.Get("/items", s.listAvailable)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(s.Tokens, models.RoleBuyer, models.RoleAssignedUser, models.RoleOwner))
		r.Post("/purchases", s.purchase)
		r.Get("/receipts/{id}", s.getReceipt)
	})

	// User portal.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(s.Tokens, models.RoleBuyer, models.RoleAssignedUser))
		r.Get("/me/report", s.myReport)
		r.Get("/me/items", s.myItems)
	})

	// Owner dashboard.
	r.Route("/owner", func(r chi.Router) {
		r.Use(middleware.RequireRole(s.Tokens, models.RoleOwner))
		r.Get("/items", s.ownerListItems)
		r.Post("/items", s.createItem)
		r.Patch("/items/{id}", s.updateItem)
		r.Post("/items/{id}/withdraw", s.withdrawItem)
		r.Delete("/items/{id}", s.deleteItem)
		r.Get("/users", s.listUsers)
		r.Post("/users", s.createUser)
		r.Get("/users/suggest", s.suggestUsers)
		r.Get("/report", s.ownerReport)
		r.Get("/reports/users/{id}", s.userReport)
	})

	return r
}
