package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/accounts"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/api"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/cache"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/config"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/events/kafka"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/ledger"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/storage/memory"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/storage/postgres"
)

const tokenTTL = 24 * time.Hour

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	store, cleanup, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var engineOpts []ledger.Option
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers)
		defer publisher.Close()
		engineOpts = append(engineOpts, ledger.WithPublisher(publisher))
		slog.Info("kafka publisher enabled", "brokers", cfg.KafkaBrokers)
	}
	engine := ledger.NewEngine(store, engineOpts...)

	var views *cache.ViewCache[models.Account]
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		views = cache.NewViewCache[models.Account](client, 5*time.Minute)
		slog.Info("redis account cache enabled", "addr", cfg.RedisAddr)
	}
	queries := ledger.NewQueryService(store, views)

	accountService := accounts.NewService(store, []byte(cfg.JWTSecret), tokenTTL)

	router := api.NewRouter(
		api.NewTransferHandler(engine, queries),
		api.NewAccountHandler(accountService, queries),
		[]byte(cfg.JWTSecret),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// openStore picks Postgres when DATABASE_URL is set, otherwise the
// in-memory store for local development.
func openStore(cfg *config.Config) (interfaces.LedgerStore, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		return memory.NewStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := postgres.NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("connected to postgres")
	return store, func() { db.Close() }, nil
}
