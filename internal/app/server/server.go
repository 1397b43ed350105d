package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"hireflow/internal/domain/audit"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/core"
	"hireflow/internal/domain/notifications"
	"hireflow/internal/domain/onboarding"
	"hireflow/internal/domain/payroll"
	"hireflow/internal/domain/recruitment"
	"hireflow/internal/domain/reports"
	"hireflow/internal/platform/config"
	cryptoutil "hireflow/internal/platform/crypto"
	"hireflow/internal/platform/db"
	"hireflow/internal/platform/email"
	"hireflow/internal/platform/jobs"
	"hireflow/internal/platform/metrics"
	"hireflow/internal/transport/http/api"
	audithandler "hireflow/internal/transport/http/handlers/audit"
	authhandler "hireflow/internal/transport/http/handlers/auth"
	corehandler "hireflow/internal/transport/http/handlers/core"
	notificationshandler "hireflow/internal/transport/http/handlers/notifications"
	payrollhandler "hireflow/internal/transport/http/handlers/payroll"
	recruitmenthandler "hireflow/internal/transport/http/handlers/recruitment"
	reportshandler "hireflow/internal/transport/http/handlers/reports"
	"hireflow/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector

	ownsPool bool
}

// New connects to the database, applies migrations and seed data as
// configured, and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	app, err := NewWithPool(cfg, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	app.ownsPool = true
	return app, nil
}

// NewWithPool wires the services and router over an existing pool. The
// caller keeps ownership of the pool.
func NewWithPool(cfg config.Config, pool *pgxpool.Pool) (*App, error) {
	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}
	policy, err := onboarding.ParseTieBreak(cfg.HolderPolicy)
	if err != nil {
		return nil, err
	}

	collector := metrics.New()
	coreStore := core.NewStore(pool, crypto)
	authService := auth.NewService(auth.NewStore(pool), coreStore, crypto)
	notifier := notifications.New(notifications.NewStore(pool), email.New(cfg))
	if cfg.EmailFrom != "" {
		notifier.DefaultFrom = cfg.EmailFrom
	}
	recruitmentService := recruitment.NewService(recruitment.NewStore(pool))
	payrollService := payroll.NewService(payroll.NewStore(pool))
	auditService := audit.New(pool)
	reportsService := reports.NewService(reports.NewStore(pool))
	idempotency := middleware.NewIdempotencyStore(pool)

	workflow := onboarding.New(onboarding.Deps{
		Contracts:     recruitmentService.Store(),
		Notifier:      notifier,
		Registrar:     authService,
		Holders:       onboarding.HolderResolver{Directory: authService, Policy: policy},
		PayrollConfig: payrollService,
		Payroll:       payrollService,
		Metrics:       collector,
		Runs:          jobs.NewTracker(pool),
	}, onboarding.Settings{
		WorkEmailDomain: cfg.WorkEmailDomain,
		InitialPassword: cfg.InitialPassword,
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authService))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(authService, coreStore, cfg.JWTSecret).RegisterRoutes(r)
		corehandler.NewHandler(coreStore, authService).RegisterRoutes(r)
		recruitmenthandler.NewHandler(recruitmentService, workflow, authService, auditService, idempotency).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService, authService, auditService, idempotency).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier, authService, auditService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, authService).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("hireflow listening", "addr", a.Config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := a.Config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		slog.Info("shutting down", "timeout", timeout.String())
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a.ownsPool && a.DB != nil {
		a.DB.Close()
	}
}
