package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/fundflow/internal/http/auth"
	"github.com/MrJamesThe3rd/fundflow/internal/http/export"
	"github.com/MrJamesThe3rd/fundflow/internal/http/importcsv"
	"github.com/MrJamesThe3rd/fundflow/internal/http/record"
)

func New(
	authn *auth.Middleware,
	allowedOrigins []string,
	recordsV1 *record.Handler,
	importV1 *importcsv.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Actor", "X-Role"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authn.Authenticate)

		r.Route("/records", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			recordsV1.Routes(r)
		})

		r.Get("/summary", recordsV1.Summary)

		r.Route("/import", func(r chi.Router) {
			r.Use(auth.Require(auth.RoleAdmin))
			importV1.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(auth.Require(auth.RoleApprover, auth.RoleAdmin))
			exportV1.Routes(r)
		})
	})

	return router
}
