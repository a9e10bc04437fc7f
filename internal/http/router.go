package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/spendboard/internal/http/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/http/importjson"
)

func New(
	allowedOrigins []string,
	dashboardV1 *dashboard.Handler,
	importV1 *importjson.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		dashboardV1.Routes(r)

		if importV1 != nil {
			r.Route("/import", importV1.Routes)
		}
	})

	return router
}
