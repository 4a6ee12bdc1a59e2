package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/emicollect/internal/http/backup"
	"github.com/MrJamesThe3rd/emicollect/internal/http/customer"
	"github.com/MrJamesThe3rd/emicollect/internal/http/dashboard"
	"github.com/MrJamesThe3rd/emicollect/internal/http/events"
	"github.com/MrJamesThe3rd/emicollect/internal/http/loan"
)

func New(
	customersV1 *customer.Handler,
	loansV1 *loan.Handler,
	backupV1 *backup.Handler,
	dashboardV1 *dashboard.Handler,
	eventsV1 *events.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			customersV1.Routes(r)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			loansV1.Routes(r)
		})

		r.Route("/backup", backupV1.Routes)

		r.Route("/dashboard", dashboardV1.Routes)

		r.Route("/events", eventsV1.Routes)
	})

	return router
}
