package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendscan/internal/amqp"
	"spendscan/internal/cache"
	"spendscan/internal/cli"
	"spendscan/internal/config"
	"spendscan/internal/log"
	"spendscan/internal/services"
	gsheet "spendscan/internal/sheets/google"
	"spendscan/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker, (*config.Config).ValidateWorker)
	logger.Info("Starting spendscan-worker")

	store, err := cli.OpenStore(logger, cfg)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	parseCache := cli.NewParseCache(cfg)
	// The worker only consumes, so the client is not used as publisher
	svc := services.NewExpenseService(store, nil, services.WithParseCache(parseCache))
	defer func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("Failed to close AMQP client", log.FieldError, err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close service", log.FieldError, err)
		}
	}()

	var reporter *services.ReportProcessor
	if cfg.SheetsEnabled() {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		reporter = services.NewReportProcessor(svc, sheetsClient, services.ReportProcessorConfig{
			Interval: cfg.ReportInterval,
			Timeout:  30 * time.Second,
		})
		logger.Info("Google Sheets reporting enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"interval", cfg.ReportInterval)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if reporter == nil {
			return
		}
		if err := reporter.Stop(ctx); err != nil {
			logger.Error("Failed to stop report processor", log.FieldError, err)
		}
	})

	scanWorker := worker.NewScanWorker(svc)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scanWorker.Run(gctx, amqpClient)
	})
	g.Go(func() error {
		return cache.NewJanitor(parseCache).Run(gctx, cfg.ParseCacheTTL)
	})
	if reporter != nil {
		if err := reporter.Start(gctx); err != nil {
			logger.Error("Failed to start report processor", log.FieldError, err)
			os.Exit(1)
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
	}
	if reporter != nil && ctx.Err() == nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_ = reporter.Stop(stopCtx)
		cancel()
	}

	processed, failed := scanWorker.Counts()
	logger.Info("Shutting down worker", "processed", processed, "failed", failed)
	if ctx.Err() != nil {
		cli.WaitForShutdown(ctx, done)
	}
	logger.Info("Worker shutdown complete")
}
