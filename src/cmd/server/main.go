package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"github.com/ce-fello/synergy-crm/src/internal/api"
	"github.com/ce-fello/synergy-crm/src/internal/config"
	"github.com/ce-fello/synergy-crm/src/internal/kv"
	"github.com/ce-fello/synergy-crm/src/internal/metrics"
	"github.com/ce-fello/synergy-crm/src/internal/service"
	"github.com/ce-fello/synergy-crm/src/internal/store"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "wipe stored collections and reseed on start")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)
	sugar := logger.Sugar()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	backend, closeBackend, err := openBackend(cfg, sugar)
	if err != nil {
		sugar.Fatalf("failed to open %s backend: %v", cfg.Backend, err)
	}
	defer closeBackend()

	kvStore := kv.NewStore(backend, logger, m)
	repos := store.NewRepositories(kvStore, logger, m, store.Options{Latency: cfg.StoreLatency})
	svc := service.NewService(repos, logger)

	if *reset || cfg.ResetOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := svc.Reset(ctx); err != nil {
			sugar.Fatalf("reset failed: %v", err)
		}
		cancel()
		sugar.Info("stored collections reset")
	}

	h := api.NewHandler(svc, logger, cfg.DefaultRows)

	r := chi.NewRouter()
	r.Use(api.RequestIDMiddleware, api.LoggerMiddleware(logger), api.Recoverer(logger), m.Middleware)
	r.Handle("/metrics", m.Handler())
	api.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infof("listening on %s (backend=%s, latency=%s)", srv.Addr, cfg.Backend, cfg.StoreLatency)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Infof("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("server forced to shutdown: %v", err)
	}
	sugar.Info("server stopped")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func openBackend(cfg *config.Config, sugar *zap.SugaredLogger) (kv.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := connectDBWithRetry(cfg.DatabaseURL, 15, 2*time.Second, sugar)
		if err != nil {
			return nil, nil, err
		}
		if err := kv.Migrate(cfg.DatabaseURL, sugar); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations failed: %w", err)
		}
		sugar.Info("migrations applied")
		return kv.NewPostgresBackend(db, cfg.KeyPrefix, sugar.Desugar()), func() {
			if err := db.Close(); err != nil {
				sugar.Warnf("failed to close db: %v", err)
			}
		}, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return kv.NewRedisBackend(client, cfg.KeyPrefix, sugar.Desugar()), func() {
			if err := client.Close(); err != nil {
				sugar.Warnf("failed to close redis: %v", err)
			}
		}, nil

	default:
		sugar.Warn("using in-memory backend; data is lost on restart")
		return kv.NewMemoryBackend(), func() {}, nil
	}
}

func connectDBWithRetry(dsn string, attempts int, delay time.Duration, sugar *zap.SugaredLogger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < attempts; i++ {
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				return db, nil
			}
			_ = db.Close()
		}
		sugar.Warnf("db ping error: %v (attempt %d/%d)", err, i+1, attempts)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("db connect failed: %w", err)
}
