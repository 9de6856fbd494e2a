package main

import (
	"context"
	"os"
	"time"

	"fortis/internal/cli"
	flog "fortis/internal/log"
	"fortis/internal/services"
	"fortis/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, flog.ComponentWorker)

	logger.Info("Starting ledger-worker")

	be := cli.OpenBackend(context.Background(), logger, cfg)
	events := be.Publisher()

	// Without a broker there is nowhere to publish reports; resets still run.
	var reports worker.ReportPublisher
	if events != nil {
		reports = services.NewReportService(be.Store, be.Store, events)
	} else {
		logger.Info("Weekly reports disabled - no AMQP_URL provided")
	}

	scheduler := worker.NewScheduler(
		be.Store,
		services.NewBudgetService(be.Store, be.Store, events),
		reports,
		worker.SchedulerConfig{
			ResetInterval:  cfg.ResetSweepInterval,
			ReportInterval: cfg.WeeklyReportInterval,
		})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Scheduler stop error", "error", err)
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	logger.Info("Scheduler started",
		"reset_interval", cfg.ResetSweepInterval,
		"report_interval", cfg.WeeklyReportInterval,
		"reports_enabled", reports != nil)

	cli.WaitForShutdown(ctx, done)
	logger.Info("ledger-worker stopped gracefully")
}
