package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendscan/internal/amqp"
	"spendscan/internal/cache"
	"spendscan/internal/cli"
	"spendscan/internal/config"
	apphttp "spendscan/internal/http"
	"spendscan/internal/log"
	"spendscan/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp, (*config.Config).Validate)

	store, err := cli.OpenStore(logger, cfg)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err)
		os.Exit(1)
	}

	// Without AMQP scans are parsed inline by the server
	var publisher services.ScanPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, parsing scans inline", log.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP client initialized - scans are queued for spendscan-worker")
		}
	} else {
		logger.Info("AMQP disabled - scans are parsed inline")
	}

	parseCache := cli.NewParseCache(cfg)
	svc := services.NewExpenseService(store, publisher, services.WithParseCache(parseCache))
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close service", log.FieldError, err)
		}
	}()

	srvCfg := apphttp.DefaultServerConfig()
	srvCfg.Addr = cfg.Addr()
	srvCfg.RateLimitPerMinute = cfg.RateLimitPerMinute
	srvCfg.BlockSuspicious = cfg.BlockSuspicious
	srv := apphttp.NewServer(srvCfg, svc, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	janitor := cache.NewJanitor(parseCache)
	go func() { _ = janitor.Run(ctx, cfg.ParseCacheTTL) }()

	logger.Info("Starting spendscan server", "addr", srvCfg.Addr, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "addr", srvCfg.Addr)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
