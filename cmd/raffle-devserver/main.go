// Command raffle-devserver serves an in-memory raffle API for local runs.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/raffle/internal/adapters/http/api"
	"github.com/okian/raffle/internal/adapters/http/site"
	"github.com/okian/raffle/internal/adapters/http/swagger"
	"github.com/okian/raffle/internal/adapters/mq/queue"
	"github.com/okian/raffle/internal/adapters/mq/worker"
	"github.com/okian/raffle/internal/adapters/repository"
	"github.com/okian/raffle/internal/config"
	"github.com/okian/raffle/internal/domain/dedupe"
	"github.com/okian/raffle/internal/seed"
	"github.com/okian/raffle/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// apiPrefix is where the REST surface is mounted.
const apiPrefix = "/api"

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store := repository.NewMemoryStore()
	if err := seedAdmin(ctx, store, cfg); err != nil {
		os.Stderr.WriteString("failed to seed admin: " + err.Error() + "\n")
		return
	}
	if _, err := seed.Run(ctx, store, seed.Config{Count: cfg.SeedParticipants}); err != nil {
		loggerInstance.Warn(ctx, "participant seeding incomplete", logger.Error(err))
	}

	// Workers outlive the signal context so shutdown can drain the queue.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	notifier := api.NewLogNotifier(cfg.FrontendURL, logger.Named("notifier"))
	dispatcher, pool := newDispatcher(cfg, store, notifier)
	if pool != nil {
		pool.Start(workerCtx)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, store, notifier, dispatcher),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("api", apiPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if pool != nil {
		if err := pool.Shutdown(shutdownCtx); err != nil {
			loggerInstance.Error(ctx, "notification drain failed", logger.Error(err))
		}
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newDispatcher returns a queue drained by a worker pool, or an inline
// deliverer when notify_workers is zero.
func newDispatcher(cfg *config.Config, store repository.Store, notifier api.Notifier) (api.Dispatcher, *worker.Pool) {
	deliverer := api.NewDeliverer(store, notifier)
	if cfg.NotifyWorkers == 0 {
		return deliverer, nil
	}
	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.NotifyQueueSize))
	return q, worker.NewPool(cfg.NotifyWorkers, q, deliverer, worker.WithDeduper(dedupe.NewInMemoryDeduper()))
}

// newRouter mounts the REST API under /api next to the landing page and docs.
func newRouter(ctx context.Context, cfg *config.Config, store repository.Store, notifier api.Notifier, dispatcher api.Dispatcher) chi.Router {
	r := chi.NewRouter()
	site.Register(ctx, r, cfg.Site)
	swagger.Register(ctx, r)
	r.Mount(apiPrefix, api.NewServer(store,
		api.WithPageSize(cfg.PageSize),
		api.WithNotifier(notifier),
		api.WithDispatcher(dispatcher),
	))
	return r
}

// seedAdmin creates the configured administrator. Seeding is skipped without
// a password.
func seedAdmin(ctx context.Context, store repository.Store, cfg *config.Config) error {
	if cfg.AdminPassword == "" {
		logger.Get().Warn(ctx, "admin_password not set; no administrator can log in")
		return nil
	}
	admin, err := store.CreateAdmin(ctx, cfg.AdminEmail, cfg.AdminFullName, cfg.AdminPassword)
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "administrator ready", logger.String("email", admin.Email))
	return nil
}
