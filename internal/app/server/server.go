package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"backoffice/internal/domain/asistencia"
	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/boletas"
	"backoffice/internal/domain/notifications"
	"backoffice/internal/domain/personal"
	"backoffice/internal/domain/planilla"
	"backoffice/internal/domain/proyectos"
	"backoffice/internal/platform/config"
	cryptoutil "backoffice/internal/platform/crypto"
	"backoffice/internal/platform/db"
	"backoffice/internal/platform/email"
	"backoffice/internal/platform/events"
	"backoffice/internal/platform/jobs"
	"backoffice/internal/platform/metrics"
	asistenciahandler "backoffice/internal/transport/http/handlers/asistencia"
	audithandler "backoffice/internal/transport/http/handlers/audit"
	authhandler "backoffice/internal/transport/http/handlers/auth"
	boletashandler "backoffice/internal/transport/http/handlers/boletas"
	notificationshandler "backoffice/internal/transport/http/handlers/notifications"
	personalhandler "backoffice/internal/transport/http/handlers/personal"
	planillahandler "backoffice/internal/transport/http/handlers/planilla"
	proyectoshandler "backoffice/internal/transport/http/handlers/proyectos"
	"backoffice/internal/transport/http/middleware"
)

const readinessTimeout = 2 * time.Second

// App owns the process-wide resources of the API server.
type App struct {
	Config  config.Config
	DB      *db.Pool
	Jobs    *jobs.Service
	Events  events.Publisher
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects to the database and NATS, optionally migrates and seeds, and
// builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}
	if !crypto.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set; salaries, bank accounts and payslips are stored in clear")
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	publisher, err := events.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix)
	if err != nil {
		pool.Close()
		return nil, err
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	worker := jobs.New(jobs.NewRunStore(pool), 0)

	app := &App{Config: cfg, DB: pool, Jobs: worker, Events: publisher, Metrics: collector}
	app.Router = app.routes(crypto)
	return app, nil
}

func (a *App) routes(crypto *cryptoutil.Service) http.Handler {
	cfg := a.Config
	authService := auth.NewService(auth.NewStore(a.DB), crypto, cfg.JWTSecret)
	auditService := audit.New(a.DB)
	notifier := notifications.New(notifications.NewStore(a.DB), email.New(cfg), cfg.EmailFrom)
	payslips := boletas.NewService(boletas.NewStore(a.DB, crypto), crypto, cfg.PayslipDir)
	planillaService := planilla.NewService(planilla.NewStore(a.DB, crypto, cfg.PayrollFunction), planilla.Deps{
		Metrics:  a.Metrics,
		Events:   a.Events,
		Jobs:     a.Jobs,
		Payslips: payslips,
		Notifier: notifier,
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authService))

	router.Get("/healthz", healthz)
	router.Get("/readyz", readyz(func(ctx context.Context) error {
		if err := a.DB.Ping(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		ok, err := db.FunctionExists(ctx, a.DB, cfg.PayrollFunction)
		if err != nil {
			return fmt.Errorf("payroll function lookup: %w", err)
		}
		if !ok {
			return fmt.Errorf("payroll function %s not installed", cfg.PayrollFunction)
		}
		return nil
	}))
	if a.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(authService).RegisterRoutes(r)
		personalhandler.NewHandler(personal.NewService(personal.NewStore(a.DB, crypto)), authService, auditService).RegisterRoutes(r)
		proyectoshandler.NewHandler(proyectos.NewService(proyectos.NewStore(a.DB)), authService, auditService).RegisterRoutes(r)
		asistenciahandler.NewHandler(asistencia.NewService(asistencia.NewStore(a.DB)), authService, auditService).RegisterRoutes(r)
		planillahandler.NewHandler(planillaService, authService, middleware.NewIdempotencyStore(a.DB)).RegisterRoutes(r)
		boletashandler.NewHandler(payslips, authService, auditService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authService).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier).RegisterRoutes(r)
	})
	return router
}

// Run serves HTTP and drains the job queue until ctx is cancelled, then
// shuts both down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Jobs.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("backoffice server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		slog.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			slog.Warn("nats close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func readyz(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "err", err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
