package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/connectient/internal/auth"
	"github.com/wolfman30/connectient/internal/booking"
	"github.com/wolfman30/connectient/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/connectient/internal/http/middleware"
	"github.com/wolfman30/connectient/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Booking            *booking.Handler
	AdminSession       *handlers.AdminSessionHandler
	AdminAppointments  *handlers.AdminAppointmentsHandler
	Sessions           *auth.SessionIssuer
	Health             http.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// BookingLimiter throttles booking submissions per client. Nil disables it.
	BookingLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		health := cfg.Health
		if health == nil {
			health = handlers.NewHealthHandler(nil, cfg.Logger)
		}
		public.Method(http.MethodGet, "/health", health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.Booking != nil {
			public.Get("/", cfg.Booking.Home)
			public.Route("/{practiceCode}/book", func(book chi.Router) {
				book.Get("/", cfg.Booking.Show)
				book.With(httpmiddleware.RateLimit(cfg.BookingLimiter)).Post("/", cfg.Booking.Submit)
				book.Post("/validate", cfg.Booking.Validate)
			})
		}
	})

	// Admin portal API (session cookie or Bearer token, except login)
	if cfg.AdminSession != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.With(httpmiddleware.RateLimit(cfg.BookingLimiter)).Post("/login", cfg.AdminSession.Login)

			admin.Group(func(protected chi.Router) {
				protected.Use(httpmiddleware.AdminSession(cfg.Sessions))
				protected.Post("/logout", cfg.AdminSession.Logout)
				if cfg.AdminAppointments != nil {
					protected.Get("/practice", cfg.AdminAppointments.GetPractice)
					protected.Route("/appointments", func(appts chi.Router) {
						appts.Get("/", cfg.AdminAppointments.ListAppointments)
						appts.Route("/{id}", func(appt chi.Router) {
							appt.Get("/", cfg.AdminAppointments.GetAppointment)
							appt.Put("/schedule", cfg.AdminAppointments.ToggleSchedule)
							appt.Post("/schedule", cfg.AdminAppointments.Schedule)
							appt.Post("/cancel", cfg.AdminAppointments.Cancel)
						})
					})
				}
			})
		})
	}

	return r
}
