package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/developer0071/Tech-House-programing/internal/di"
	"github.com/developer0071/Tech-House-programing/internal/platform/config"
	"github.com/developer0071/Tech-House-programing/internal/platform/idempotency"
	"github.com/developer0071/Tech-House-programing/internal/platform/observability"
	"github.com/developer0071/Tech-House-programing/internal/repositories/memory"
	"github.com/developer0071/Tech-House-programing/internal/shell"
)

const (
	idempotencyCleanupInterval = 10 * time.Minute
	idempotencyCleanupBatch    = 100
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(observability.LoggerOptions{
		Level: cfg.Logging.Level,
		Path:  cfg.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("techhouse")
	ctx = observability.WithLogger(ctx, logger)

	container, err := di.NewContainer(ctx, cfg, memory.NewRegistry(), di.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("container close error", zap.Error(err))
		}
	}()

	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	var cleanupWG sync.WaitGroup
	cleanupWG.Add(1)
	go func() {
		defer cleanupWG.Done()
		runIdempotencyCleanup(cleanupCtx, container.Idempotency, logger.Named("idempotency"))
	}()
	defer func() {
		cleanupCancel()
		cleanupWG.Wait()
	}()

	sh, err := shell.New(shell.Deps{
		Accounts:      container.Services.Accounts,
		Catalog:       container.Services.Catalog,
		Checkout:      container.Services.Checkout,
		Audit:         container.Services.Audit,
		Store:         cfg.Store,
		AdminUsername: cfg.Accounts.AdminUsername,
		Logger:        logger.Named("shell"),
		In:            os.Stdin,
		Out:           os.Stdout,
	})
	if err != nil {
		logger.Fatal("failed to build shell", zap.Error(err))
	}

	logger.Info("session started", zap.String("sessionId", sh.Session().ID), zap.String("store", cfg.Store.Name))

	done := make(chan error, 1)
	go func() {
		done <- sh.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shell stopped with error", zap.Error(err))
		}
	case <-ctx.Done():
		fmt.Fprintln(os.Stdout)
		logger.Info("interrupted, shutting down")
	}
}

func runIdempotencyCleanup(ctx context.Context, store idempotency.Store, logger *zap.Logger) {
	ticker := time.NewTicker(idempotencyCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			removed, err := store.CleanupExpired(ctx, time.Now().UTC(), idempotencyCleanupBatch)
			if err != nil {
				logger.Error("idempotency cleanup error", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("idempotency cleanup removed records", zap.Int("count", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
