// Orderline Orchestrator — обрабатывает сабмиты заказов.
//
// Orchestrator:
//   - Получает новые сабмиты из RabbitMQ (fallback: polling БД)
//   - Проводит каждый заказ через workflow:
//     process-order → (inventory-check ∥ payment-processing) → merge → store-order
//   - Финализирует сабмиты (COMPLETED/FAILED)
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

	"github.com/shaiso/Orderline/internal/mq"
	"github.com/shaiso/Orderline/internal/orchestrator"
	"github.com/shaiso/Orderline/internal/repo"
	"github.com/shaiso/Orderline/internal/steps"
	"github.com/shaiso/Orderline/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting orderline-orchestrator")

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

	// Создаём репозитории
	bucket := os.Getenv("ORDERS_BUCKET")
	if bucket == "" {
		bucket = repo.DefaultBucket
	}
	submissionRepo := repo.NewSubmissionRepo(pool)
	recordRepo := repo.NewRecordRepo(pool, bucket)

	// Реестр шагов workflow
	registry := steps.DefaultRegistry(recordRepo, steps.SystemRand())

	// Step-level таймаут
	stepTimeout := steps.DefaultTimeout
	if v := os.Getenv("STEP_TIMEOUT_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			stepTimeout = time.Duration(sec) * time.Second
		}
	}

	// RabbitMQ
	var mqConn *mq.Connection
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		// Создаём топологию
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
	}

	// Создаём orchestrator
	orch := orchestrator.New(orchestrator.Config{
		SubmissionRepo: submissionRepo,
		Registry:       registry,
		StepTimeout:    stepTimeout,
		Conn:           mqConn,
		Logger:         logger,
	})

	// Запускаем orchestrator
	if err := orch.Start(ctx); err != nil {
		logger.Error("failed to start orchestrator", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8083"
	if v := os.Getenv("ORCH_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем orchestrator
	orch.Stop()
	logger.Info("orderline-orchestrator stopped")
}
