package api

import (
	"net/http"

	_ "metalrates/docs"
	"metalrates/internal/rate/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	swagger "github.com/swaggo/http-swagger"
)

// Guards wraps admin and throttled routes. A nil guard lets requests through.
type Guards struct {
	Admin   func(http.Handler) http.Handler
	Limiter func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

func NewRouter(rateHandler *handler.Handler, guards Guards) *chi.Mux {
	if guards.Admin == nil {
		guards.Admin = passthrough
	}
	if guards.Limiter == nil {
		guards.Limiter = passthrough
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	// Swagger UI
	router.Get("/swagger/*", swagger.WrapHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/rates/live", rateHandler.GetLiveRates)
		r.Get("/rates/stream", rateHandler.StreamRates)
		r.Get("/settings/booking", rateHandler.GetBookingSettings)
		r.Post("/pricing/breakdown", rateHandler.GetBreakdown)
		r.Get("/bookings/{id}", rateHandler.GetBooking)
		r.With(guards.Limiter).Post("/bookings", rateHandler.FreezeRate)

		r.Route("/admin", func(r chi.Router) {
			r.Use(guards.Limiter, guards.Admin)
			r.Put("/margins/{metal}", rateHandler.SetMargin)
			r.Put("/settings", rateHandler.SaveSettings)
			r.Post("/pricing/breakdown", rateHandler.GetAdminBreakdown)
			r.Post("/bookings/{id}/fulfill", rateHandler.FulfillBooking)
		})
	})
	return router
}
