package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kpphospital/mch-appointments/internal/http/handlers"
	httpmiddleware "github.com/kpphospital/mch-appointments/internal/http/middleware"
	"github.com/kpphospital/mch-appointments/internal/notify"
	"github.com/kpphospital/mch-appointments/internal/storage"
	"github.com/kpphospital/mch-appointments/internal/web"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes
// unregistered.
type Config struct {
	Logger             *logging.Logger
	Appointments       *handlers.AppointmentsHandler
	Schedule           *handlers.ScheduleHandler
	Notify             *notify.Handler
	Storage            *storage.Handler
	Web                *web.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimiter guards the POST routes when set.
	RateLimiter httpmiddleware.Limiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.RateLimiter == nil {
			return h
		}
		return httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger)(h)
	}

	r.Get("/health", handlers.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.Appointments != nil {
			api.Method(http.MethodPost, "/appointments", limited(cfg.Appointments.Submit))
		}
		if cfg.Notify != nil {
			api.Method(http.MethodPost, "/notify", limited(cfg.Notify.Notify))
		}
		if cfg.Storage != nil {
			api.Method(http.MethodPost, "/save-to-sheet", limited(cfg.Storage.Save))
			api.Method(http.MethodPost, "/saveToSheet", limited(cfg.Storage.Save))
		}
		if cfg.Schedule != nil {
			api.Route("/schedule", func(s chi.Router) {
				s.Get("/window", cfg.Schedule.Window)
				s.Get("/slots", cfg.Schedule.Slots)
			})
		}
	})

	if cfg.Web != nil {
		r.Get("/", cfg.Web.Form)
		r.Route("/appointments", func(form chi.Router) {
			form.Get("/", cfg.Web.Form)
			form.Method(http.MethodPost, "/", limited(cfg.Web.Post))
			form.Get("/new", cfg.Web.New)
		})
		r.Get("/privacy", cfg.Web.Privacy)
		r.NotFound(cfg.Web.NotFound)
	}

	return r
}
