package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/language-camp/internal/config"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl Limiter, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(RateLimitMiddleware(rl, cfg.RateLimitPerMin))

	r.Get("/", h.Root)
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/classes", byQuery("email",
		h.Authenticate(h.RequireRole(domain.ActionListOwnClasses)(http.HandlerFunc(h.ListOwnClasses))),
		http.HandlerFunc(h.ListApprovedClasses)))
	r.Get("/all-classes", h.ListAllClasses)
	r.Get("/popularClasses", h.PopularClasses)
	r.Get("/instructors", h.ListInstructors)
	r.Get("/popularInstructors", h.PopularInstructors)
	r.Post("/jwt", h.IssueToken)

	r.Group(func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Post("/classes", h.CreateClass)

		r.Get("/users", h.GetUser)
		r.Put("/users", h.PutUser)
		r.Patch("/users", h.PatchUser)

		r.Get("/selectedCarts", h.ListCart)
		r.Post("/selectedCarts", h.AddToCart)
		r.Get("/selectedCarts/{id}", h.GetCartItem)
		r.Delete("/selectedCarts/{id}", h.RemoveFromCart)

		r.Post("/create-payment-intent", h.CreatePaymentIntent)
		r.Post("/payments", h.RecordPayment)
		r.Get("/payments", h.ListPayments)
		r.Get("/enrolledClasses", h.EnrolledClasses)

		r.With(h.RequireRole(domain.ActionModerateClasses)).Get("/admin-classes", h.ListAdminClasses)
		r.With(h.RequireRole(domain.ActionModerateClasses)).Patch("/admin-classes/{id}", h.ModerateClass)
		r.With(h.RequireRole(domain.ActionListUsers)).Get("/all-users", h.ListUsers)
	})

	return r
}
