// Orderline Retention — удаляет устаревшие записи заказов.
//
// Одиночный воркер: лидерство между репликами разыгрывается через
// advisory lock в Postgres, purge выполняет только лидер.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Orderline/internal/repo"
	"github.com/shaiso/Orderline/internal/retention"
	"github.com/shaiso/Orderline/internal/telemetry"
)

const retentionLockKey int64 = 773311

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting orderline-retention")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	bucket := os.Getenv("ORDERS_BUCKET")
	if bucket == "" {
		bucket = repo.DefaultBucket
	}
	recordRepo := repo.NewRecordRepo(pool, bucket)

	// Конфигурация purger'а из окружения
	retentionDur := retention.DefaultRetention
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			retentionDur = time.Duration(days) * 24 * time.Hour
		}
	}

	purger, err := retention.New(retention.Config{
		Records:   recordRepo,
		Retention: retentionDur,
		CronExpr:  os.Getenv("RETENTION_CRON"),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create purger", "error", err)
		os.Exit(1)
	}

	// retention loop: сначала берём advisory lock, потом запускаем purger
	go func() {
		var hasLock bool
		defer func() {
			if hasLock {
				_, _ = pool.Exec(context.Background(), "select pg_advisory_unlock($1)", retentionLockKey)
			}
		}()

		tk := time.NewTicker(5 * time.Second)
		defer tk.Stop()

		for !hasLock {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				if err := pool.QueryRow(ctx, "select pg_try_advisory_lock($1)", retentionLockKey).Scan(&hasLock); err != nil {
					logger.Warn("advisory lock attempt failed", "error", err)
				}
			}
		}

		logger.Info("acquired retention leadership")
		if err := purger.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("purger stopped with error", "error", err)
			cancel()
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("RETENTION_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("orderline-retention stopped")
}
