package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fortis/internal/alerts"
	"fortis/internal/archive"
	"fortis/internal/cache"
	"fortis/internal/cli"
	apphttp "fortis/internal/http"
	flog "fortis/internal/log"
	"fortis/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, flog.ComponentApp)

	be := cli.OpenBackend(context.Background(), logger, cfg)
	events := be.Publisher()

	policy := archive.Policy{AfterDays: cfg.ArchiveAfterDays}
	seen := alerts.NewSeenTracker(cfg.SeenSessionMax, cfg.SeenSessionTTL)
	budgets := services.NewBudgetService(be.Store, be.Store, events)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Budgets:      budgets,
		Alerts:       services.NewAlertService(budgets, be.Store, be.Store, seen),
		Deposits:     services.NewDepositService(be.Store, events),
		Transactions: services.NewTransactionService(be.Store, policy),
		Archive:      services.NewArchiveService(be.Store, policy),
		Reports:      services.NewReportService(be.Store, be.Store, events),
	}, apphttp.Options{
		Logger:             logger.WithComponent(flog.ComponentHTTP),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Caches:             []cache.Cleaner{seen.Cache()},
		TrustedProxies:     cfg.TrustedProxies,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting fortis server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events_enabled", events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
