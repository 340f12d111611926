package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfman30/connectient/cmd/mainconfig"
	"github.com/wolfman30/connectient/internal/api/router"
	"github.com/wolfman30/connectient/internal/app/bootstrap"
	"github.com/wolfman30/connectient/internal/appointments"
	"github.com/wolfman30/connectient/internal/auth"
	"github.com/wolfman30/connectient/internal/booking"
	appconfig "github.com/wolfman30/connectient/internal/config"
	"github.com/wolfman30/connectient/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/connectient/internal/http/middleware"
	"github.com/wolfman30/connectient/internal/notify"
	"github.com/wolfman30/connectient/internal/observability/metrics"
	"github.com/wolfman30/connectient/internal/observability/tracing"
	"github.com/wolfman30/connectient/internal/practices"
	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting connectient API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  "connectient-api",
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if pool == nil {
		logger.Warn("DATABASE_URL not set; using in-memory stores")
	} else {
		defer pool.Close()
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	metricsHandler, bookingMetrics := setupMetrics()

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		logger.Warn("unknown DEFAULT_TIMEZONE; using UTC", "timezone", cfg.DefaultTimezone, "error", err)
		loc = time.UTC
	}
	schema := validation.NewSchema(validation.WithRegion(cfg.DefaultPhoneRegion), validation.WithLocation(loc))

	practiceRepo, apptRepo := buildStores(pool, redisClient, cfg, logger)
	practiceSvc := practices.NewService(practiceRepo, bootstrap.BuildLogoResolver(cfg, awsCfg, logger), logger)
	apptSvc := appointments.NewService(apptRepo, practiceSvc, logger)

	emailSender, provider, reason := bootstrap.BuildEmailSender(cfg, awsCfg, logger)
	if reason != "" {
		logger.Warn("email provider unavailable; emails will be logged only", "requested", cfg.EmailProvider, "reason", reason)
	}
	logger.Info("email transport selected", "provider", provider)
	dispatcher := notify.NewDispatcher(emailSender, notify.DispatcherConfig{
		DefaultTo:        cfg.MailDefaultTo,
		SupportPhone:     cfg.SupportPhone,
		NotifyOnRequest:  cfg.NotifyOnRequest,
		NotifyOnSchedule: cfg.NotifyOnSchedule,
	}, bookingMetrics, logger)

	controller := booking.NewController(booking.ControllerConfig{
		Schema:       schema,
		Appointments: apptSvc,
		Notifier:     dispatcher,
		Guard:        booking.NewSubmissionGuard(redisClient, cfg.SubmissionGuardTTL, logger),
		Metrics:      bookingMetrics,
		Logger:       logger,
		SupportPhone: cfg.SupportPhone,
	})

	sessions := auth.NewSessionIssuer(cfg.AdminJWTSecret, cfg.AdminSessionTTL)
	if sessions == nil {
		logger.Warn("ADMIN_JWT_SECRET not set; admin portal disabled")
	}
	var authenticator auth.Authenticator
	if sqlDB := bootstrap.OpenSQLDB(pool); sqlDB != nil {
		defer sqlDB.Close()
		authenticator = auth.NewPasswordAuthenticator(auth.NewSQLUserStore(sqlDB), logger)
	}

	r := router.New(&router.Config{
		Logger:            logger,
		Booking:           booking.NewHandler(practiceSvc, controller, schema, cfg.PublicBaseURL, logger),
		AdminSession:      handlers.NewAdminSessionHandler(schema, authenticator, sessions, cfg.IsProduction(), bookingMetrics, logger),
		AdminAppointments: handlers.NewAdminAppointmentsHandler(apptSvc, dispatcher, bookingMetrics, logger),
		Sessions:          sessions,
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"postgres": bootstrap.PoolReadyCheck(pool),
			"redis":    bootstrap.RedisReadyCheck(redisClient),
		}, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		BookingLimiter:     httpmiddleware.NewRateLimiter(ctx, cfg.BookingRateLimit, cfg.BookingRateBurst),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(r, "connectient-api"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// setupMetrics registers the booking metrics and Go runtime collectors on a
// private registry.
func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}

// demoPractice makes /demo/book usable on a database-less local run.
var demoPractice = practices.Practice{
	ID:       "00000000-0000-0000-0000-000000000001",
	Code:     "demo",
	Name:     "Connectient Demo Practice",
	Email:    "demo@connectient.co",
	Timezone: "America/Port_of_Spain",
}

// buildStores picks Postgres repositories when a pool is available and
// in-memory ones otherwise. Practice reads are cached in Redis when enabled.
func buildStores(pool *pgxpool.Pool, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) (practices.Repository, appointments.Repository) {
	var practiceRepo practices.Repository
	var apptRepo appointments.Repository
	if pool != nil {
		practiceRepo = practices.NewPostgresRepository(pool)
		apptRepo = appointments.NewPostgresRepository(pool)
	} else {
		practiceRepo = practices.NewInMemoryRepository(demoPractice)
		apptRepo = appointments.NewInMemoryRepository()
	}
	return practices.NewCachedRepository(practiceRepo, redisClient, cfg.PracticeCacheTTL, logger), apptRepo
}
