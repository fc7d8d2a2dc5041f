package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	httpauth "github.com/MrJamesThe3rd/pocketbook/internal/http/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/export"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/metrics"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/report"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/rules"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	Issuer         *auth.Issuer
	Metrics        *metrics.Metrics
}

func New(
	opts Options,
	authV1 *httpauth.Handler,
	categoriesV1 *category.Handler,
	transactionsV1 *transaction.Handler,
	importV1 *importer.Handler,
	rulesV1 *rules.Handler,
	reportsV1 *report.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(opts.Metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(opts.Timeout))

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)

			r.Group(func(r chi.Router) {
				r.Use(httpauth.Middleware(opts.Issuer))
				authV1.ProtectedRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(httpauth.Middleware(opts.Issuer))

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				categoriesV1.Routes(r)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				transactionsV1.Routes(r)
			})

			r.Route("/import", importV1.Routes)
			r.Route("/rules", rulesV1.Routes)

			r.Route("/reports", func(r chi.Router) {
				r.Route("/statement", exportV1.Routes)
				reportsV1.Routes(r)
			})

			r.Route("/dashboard", reportsV1.DashboardRoutes)
		})
	})

	return router
}
