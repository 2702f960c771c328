package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hallgrim/dayplan/internal/config"
	dayplanhttp "github.com/hallgrim/dayplan/internal/http"
	"github.com/hallgrim/dayplan/internal/http/handler"
	"github.com/hallgrim/dayplan/internal/observability"
	sqlstorage "github.com/hallgrim/dayplan/internal/storage/sql"
	"github.com/hallgrim/dayplan/internal/storage/sql/repository"
)

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config loading fails, so print
		// straight to stderr.
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Root context for all normal operations, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	otelCfg := observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
	}

	lp, logger, err := observability.InitLogger(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := newShutdownContext(5 * time.Second)
		defer cancel()
		if err := lp.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown logger provider", "error", err)
		}
	}()
	slog.SetDefault(logger)

	tp, err := observability.InitTracerProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to init tracer provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := newShutdownContext(5 * time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown tracer provider", "error", err)
		}
	}()

	mp, err := observability.InitMeterProvider(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to init meter provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := newShutdownContext(5 * time.Second)
		defer cancel()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown meter provider", "error", err)
		}
	}()

	slog.InfoContext(ctx, "starting dayplan server")

	store, err := sqlstorage.NewStore(ctx, sqlstorage.DBConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	slog.InfoContext(ctx, "storage initialized",
		"driver", cfg.Database.Driver, "dsn", maskPassword(cfg.Database.DSN))

	server := handler.NewServer(store, handler.Config{
		GenerationHorizonDays: cfg.Tasks.GenerationHorizonDays,
	})

	purger, err := startPurgeJob(ctx, store, cfg.Tasks)
	if err != nil {
		return fmt.Errorf("failed to start purge job: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           http.MaxBytesHandler(dayplanhttp.NewRouter(server), cfg.HTTP.MaxBodyBytes),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	errResult := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")

		shutdownCtx, cancel := newShutdownContext(cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(shutdownCtx, "HTTP server shutdown timed out", "error", err)
		} else {
			slog.InfoContext(shutdownCtx, "HTTP server shutdown complete")
		}

		// Wait for an in-flight purge run before closing the store.
		<-purger.Stop().Done()

		return nil
	case err := <-errResult:
		purger.Stop()
		return err
	}
}

// startPurgeJob schedules the recurring job that permanently removes
// soft-deleted items past the retention window.
func startPurgeJob(ctx context.Context, store *repository.Store, cfg config.TaskConfig) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cfg.PurgeSchedule, func() {
		cutoff := time.Now().UTC().Add(-cfg.PurgeRetention)
		purged, err := store.PurgeSoftDeleted(ctx, cutoff)
		if err != nil {
			slog.ErrorContext(ctx, "purge job failed", "error", err)
			return
		}
		if purged > 0 {
			slog.InfoContext(ctx, "purged soft-deleted items", "count", purged, "cutoff", cutoff)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", cfg.PurgeSchedule, err)
	}
	c.Start()
	return c, nil
}

func newShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	// Fresh context since the main one is already cancelled at shutdown.
	return context.WithTimeout(context.Background(), timeout)
}

// maskPassword hides the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
