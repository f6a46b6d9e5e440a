package routes

import (
	"travelbook/airports/internal/api"
	"travelbook/airports/internal/common"
	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, jobsHandler *api.JobsHandler, signer *common.AdminTokenSigner, limiter *middleware.IPRateLimiter) {

	r.Route("/api/v1", func(v1 chi.Router) {
		if limiter != nil {
			v1.Use(limiter.Middleware)
		}

		// Public lookups
		v1.Route("/airports", func(airports chi.Router) {
			airports.Get("/", handlers.SearchAirports())
			airports.Get("/bangladesh", handlers.BangladeshAirports())
			airports.Get("/region/{region}", handlers.RegionAirports())
			airports.Get("/popular", handlers.PopularAirports())
			airports.Get("/local", handlers.LocalAirports())
			airports.Get("/country/{countryCode}", handlers.CountryAirports())
			airports.Get("/{code}", handlers.GetAirport())
		})

		v1.Get("/flights/search", handlers.SearchFlights())
		v1.Get("/hotels/search", handlers.SearchHotels())

		// Admin group (bearer token)
		v1.Route("/admin/airports", func(admin chi.Router) {
			admin.Use(middleware.AdminAuthMiddleware(signer))

			admin.Group(func(operator chi.Router) {
				operator.Use(middleware.RequireRole(constants.Role.CanSync))
				operator.Post("/sync/region/{region}", handlers.SyncRegion())
				operator.Post("/sync/country/{countryCode}", handlers.SyncCountry())
				operator.Post("/refresh/{code}", handlers.RefreshAirport())
				operator.Post("/refresh-stale", handlers.RefreshStale())
				operator.Get("/stats", handlers.AirportStats())

				if jobsHandler != nil {
					operator.Post("/jobs/sync", jobsHandler.TriggerAirportSync())
					operator.Get("/jobs/status", jobsHandler.GetJobStatus())
				}
			})

			admin.Group(func(owner chi.Router) {
				owner.Use(middleware.RequireRole(constants.Role.CanDeactivate))
				owner.Post("/{code}/deactivate", handlers.DeactivateAirport())
			})
		})
	})
}
