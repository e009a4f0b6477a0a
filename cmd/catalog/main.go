package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"game_catalog/internal/api"
	"game_catalog/internal/config"
	"game_catalog/internal/igdb"
	"game_catalog/internal/publisher"
	"game_catalog/internal/service"
	"game_catalog/internal/storage/postgres"
	"game_catalog/internal/tracing"
	"game_catalog/internal/warmer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	sqlDB, err := otelsql.Open("postgres", cfg.Database.DSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	db := sqlx.NewDb(sqlDB, "postgres")
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// A nil Publisher disables events.
	var events service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	transport := igdb.NewTransport(logger, igdb.WithDialTimeout(cfg.IGDB.Timeout))

	tokens := igdb.NewTokenCache(igdb.TokenConfig{
		ClientID:     cfg.IGDB.ClientID,
		ClientSecret: cfg.IGDB.ClientSecret,
		Host:         cfg.IGDB.TokenHost,
		Path:         cfg.IGDB.TokenPath,
		Port:         cfg.IGDB.Port,
		ExpiryBuffer: cfg.IGDB.TokenExpiryBuffer,
		Timeout:      cfg.IGDB.Timeout,
	}, transport, logger)

	client := igdb.NewClient(igdb.Config{
		ClientID:       cfg.IGDB.ClientID,
		Host:           cfg.IGDB.APIHost,
		Path:           cfg.IGDB.APIPath,
		Port:           cfg.IGDB.Port,
		Timeout:        cfg.IGDB.Timeout,
		MaxAttempts:    cfg.IGDB.Retry.MaxAttempts,
		InitialBackoff: cfg.IGDB.Retry.InitialBackoff,
		MaxBackoff:     cfg.IGDB.Retry.MaxBackoff,
	}, transport, tokens, logger)

	games := service.NewGameService(
		postgres.NewGameStore(db),
		service.NewCoalescingCatalog(client, cfg.Cache),
		postgres.NewTransactionManager(db),
		events,
		logger,
		cfg.Service,
	)

	if cfg.Warmup.Enabled {
		w := warmer.New(games, cfg.Warmup.Interval, cfg.Warmup.Limit, logger)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("warmer error", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewServer(games, db, logger).Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting game catalog",
			"addr", cfg.HTTP.Addr,
			"events", cfg.RabbitMQ.Enabled,
			"warmup", cfg.Warmup.Enabled,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server", "error", err)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
