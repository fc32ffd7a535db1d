// Hive Worker — выполняет асинхронные задачи.
//
// Worker:
//   - Получает задачи из RabbitMQ (очереди bots, content, campaigns)
//   - Выполняет через реестр обработчиков
//   - Повторяет retryable-ошибки через TTL-очереди с задержкой
//   - Финализирует сущности при fatal-ошибках и исчерпании попыток
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Hive/internal/genai"
	"github.com/shaiso/Hive/internal/mq"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
	"github.com/shaiso/Hive/internal/telemetry"
	"github.com/shaiso/Hive/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting hive-worker")

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
	botRepo := repo.NewBotRepo(pool)
	campaignRepo := repo.NewCampaignRepo(pool)
	actionRepo := repo.NewActionRepo(pool)
	contentRepo := repo.NewContentRepo(pool)

	// RabbitMQ: worker без брокера бесполезен
	mqConn, err := mq.NewConnection(mq.URL(), logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	publisher := mq.NewPublisher(mqConn, logger)
	dispatcher := task.NewDispatcher(publisher, logger)

	// Реестр обработчиков: по одному на каждый вид задачи
	registry := worker.NewDefaultRegistry(worker.HandlerSet{
		Bots:       botRepo,
		Campaigns:  campaignRepo,
		Actions:    actionRepo,
		Contents:   contentRepo,
		Generator:  genai.NewMockGenerator(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	// Создаём worker
	w := worker.New(worker.Config{
		Registry:  registry,
		Publisher: publisher,
		Conn:      mqConn,
		Logger:    logger,
	})

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Start блокируется до отмены ctx
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker error", "error", err)
		os.Exit(1)
	}

	w.Stop()
	logger.Info("hive-worker stopped")
}
