package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/milosmac94/finance/config"
	"github.com/milosmac94/finance/data"
	"github.com/milosmac94/finance/data/cache"
	"github.com/milosmac94/finance/data/repository/postgres"
	"github.com/milosmac94/finance/data/session"
	"github.com/milosmac94/finance/internal/externalApi/quoteApi"
	"github.com/milosmac94/finance/internal/httpserver"
	"github.com/milosmac94/finance/internal/reportGenerator/xlsxGenerator"
	"github.com/milosmac94/finance/internal/scheduler"
	"github.com/milosmac94/finance/internal/service/financeService"
	"github.com/milosmac94/finance/internal/transport/httpapi"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	quoteApiClient := quoteApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	financeSrv := financeService.New(cfg, pgRepo, redisCache, quoteApiClient, redisSession, reportGenerator)

	sched := scheduler.New()
	sched.NewIntervalJob("warm quote cache", financeSrv.WarmQuoteCache, cfg.Jobs.WarmQuoteCacheInterval, true)
	sched.Start()
	defer sched.Stop()

	ctrl := httpapi.NewController(financeSrv)

	server := httpserver.New(cfg, ctrl, redisSession)
	server.Start()
	defer server.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
