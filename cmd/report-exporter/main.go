package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fortis/internal/amqp"
	"fortis/internal/cli"
	flog "fortis/internal/log"
	gsheet "fortis/internal/sheets/google"
	"fortis/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, flog.ComponentSheets)

	if err := cfg.ValidateExporter(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting report-exporter")

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		ReportSheet:     cfg.GoogleReportSheet,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqp.RouteWeeklyReport)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	exporter := worker.NewReportExporter(sheetsClient)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	})

	logger.Info("Consuming weekly reports", "queue", cfg.AMQPQueue, "spreadsheet_id", cfg.GoogleSpreadsheetID)
	if err := amqpClient.ConsumeWeeklyReports(ctx, exporter.HandleWeeklyReport); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		_ = amqpClient.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("report-exporter stopped gracefully")
}
