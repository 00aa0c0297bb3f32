// Package bootstrap assembles the booking service from configuration. Both
// the HTTP server and the Lambda entry point build through here.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kpphospital/mch-appointments/internal/api/router"
	"github.com/kpphospital/mch-appointments/internal/appointment"
	appconfig "github.com/kpphospital/mch-appointments/internal/config"
	"github.com/kpphospital/mch-appointments/internal/dispatch"
	"github.com/kpphospital/mch-appointments/internal/form"
	"github.com/kpphospital/mch-appointments/internal/http/handlers"
	"github.com/kpphospital/mch-appointments/internal/notify"
	"github.com/kpphospital/mch-appointments/internal/observability/metrics"
	"github.com/kpphospital/mch-appointments/internal/storage"
	"github.com/kpphospital/mch-appointments/internal/web"
	"github.com/kpphospital/mch-appointments/pkg/logging"
)

// Options carries the process-level pieces the caller owns.
type Options struct {
	// Registry receives the booking metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
	// LoadAWS resolves SDK config when EMAIL_PROVIDER=ses.
	LoadAWS AWSConfigLoader
	// Now overrides the clock.
	Now func() time.Time
}

// App is the assembled service.
type App struct {
	Handler    http.Handler
	Dispatcher *dispatch.Dispatcher
	closers    []func()
}

// Close releases background resources.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build wires every component and returns the HTTP handler.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	policy := appointment.NewPolicy(locationFor(cfg))
	m := metrics.NewSubmissionMetrics(registry)

	notifier := BuildNotifier(ctx, cfg, logger, opts.LoadAWS)
	store, err := BuildStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sheet := storage.NewForwarder(store, logger)
	dispatcher := dispatch.New(notifier, sheet, m, logger)

	webHandler, err := web.NewHandler(form.NewMachine(policy, now), dispatcher, web.DefaultClinic, now, logger)
	if err != nil {
		return nil, err
	}

	limiter, closeLimiter := BuildRateLimiter(ctx, cfg, logger)

	handler := router.New(&router.Config{
		Logger:             logger,
		Appointments:       handlers.NewAppointmentsHandler(policy, dispatcher, m, now, logger),
		Schedule:           handlers.NewScheduleHandler(policy, now),
		Notify:             notify.NewHandler(notifier, logger),
		Storage:            storage.NewHandler(sheet, logger),
		Web:                webHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	return &App{
		Handler:    handler,
		Dispatcher: dispatcher,
		closers:    []func(){closeLimiter},
	}, nil
}

func locationFor(cfg *appconfig.Config) *time.Location {
	return appointment.ClinicLocation(cfg.Timezone)
}
