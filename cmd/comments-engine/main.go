package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/savina-m/comments-engine/internal/config"
	"github.com/savina-m/comments-engine/internal/queue"
	"github.com/savina-m/comments-engine/internal/service"
	"github.com/savina-m/comments-engine/internal/storage/postgres"
	enginehttp "github.com/savina-m/comments-engine/internal/transport/http"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting comments-engine", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := runMigrations(cfg.DB.DatabaseURL, cfg.Migrations.Path); err != nil {
		log.Error("migrations_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("migrations_applied", slog.String("dir", cfg.Migrations.Path))

	store, err := postgres.New(rootCtx, cfg.DB.DatabaseURL)
	if err != nil {
		log.Error("storage_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	log.Info("storage_initialized")

	redisOpt, err := asynq.ParseRedisURI(cfg.Redis.RedisURL)
	if err != nil {
		log.Error("redis_uri_invalid", slog.String("err", err.Error()))
		os.Exit(1)
	}

	queueClient := asynq.NewClient(redisOpt)
	defer func() {
		if cerr := queueClient.Close(); cerr != nil {
			log.Warn("queue_client_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	producer := queue.NewProducer(queueClient, cfg.Queue.MaxRetry)
	svc := service.New(store, producer, *cfg)

	// Воркер уведомлений живёт в том же процессе, что и HTTP API.
	worker := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Queue.Concurrency,
		Queues:      map[string]int{queue.QueueNotifications: 1},
	})

	workerErrCh := make(chan error, 1)
	go func() {
		if err := worker.Run(queue.NewConsumer(store, log)); err != nil {
			workerErrCh <- err
		}
		close(workerErrCh)
	}()
	log.Info("notification_worker_started", slog.Int("concurrency", cfg.Queue.Concurrency))

	apiHandler := enginehttp.NewRouter(svc, enginehttp.Options{
		Logger:    log,
		Timeout:   cfg.Timeouts.Service,
		JWTSecret: cfg.Auth.JWTSecret,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("engine_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	case err := <-workerErrCh:
		if err != nil {
			log.Error("worker_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	// Shutdown ждёт in-flight джобы; недоделанные вернутся в очередь.
	worker.Shutdown()
	log.Info("worker_stopped")

	log.Info("service_stopped")
}

// runMigrations применяет goose-миграции через database/sql поверх pgx stdlib.
func runMigrations(databaseURL, dir string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, dir)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
