package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Hive/internal/mq"
	"github.com/shaiso/Hive/internal/task"
	"github.com/shaiso/Hive/internal/telemetry"
)

const defaultPrefetch = 5

// RetryPublisher — переотправка сообщения с задержкой.
// Реализуется *mq.Publisher.
type RetryPublisher interface {
	PublishRetry(ctx context.Context, queue mq.Queue, msg *mq.Message, delay time.Duration) error
}

// Worker потребляет задачи из рабочих очередей и выполняет их
// через реестр обработчиков.
//
// Worker — stateless компонент: всё состояние сущностей живёт в БД,
// несколько экземпляров могут потреблять из одних и тех же очередей.
type Worker struct {
	registry  *Registry
	publisher RetryPublisher
	conn      *mq.Connection
	queues    []mq.Queue
	prefetch  int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Worker.
type Config struct {
	// Registry — реестр обработчиков. Обязателен и полон:
	// Start валидирует его против каталога задач.
	Registry *Registry

	// Publisher — публикация retry-сообщений.
	Publisher RetryPublisher

	// Conn — соединение с RabbitMQ.
	Conn *mq.Connection

	// Queues — очереди для потребления (default: все рабочие очереди).
	Queues []mq.Queue

	// Prefetch — количество сообщений на consumer (default: 5).
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	queues := cfg.Queues
	if len(queues) == 0 {
		queues = mq.WorkQueues
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		registry:  cfg.Registry,
		publisher: cfg.Publisher,
		conn:      cfg.Conn,
		queues:    queues,
		prefetch:  prefetch,
		logger:    logger,
	}
}

// Start валидирует реестр и запускает consumer на каждую очередь.
// Блокируется до отмены ctx.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.registry.Validate(); err != nil {
		return fmt.Errorf("validate registry: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker", "queues", w.queues, "prefetch", w.prefetch)

	for _, queue := range w.queues {
		consumer := mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
			Queue:    string(queue),
			Handler:  w.handle,
			Prefetch: w.prefetch,
		})

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("consumer error", "queue", queue, "error", err)
			}
		}()
	}

	w.logger.Info("worker started")
	<-ctx.Done()
	return ctx.Err()
}

// Stop останавливает Worker и ждёт завершения consumers.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// handle обрабатывает одно доставленное сообщение.
//
// Возвращает error только при инфраструктурном сбое (сообщение
// вернётся в очередь). Ошибки выполнения задачи разбираются здесь:
// benign подтверждается, fatal и исчерпание попыток завершаются
// вызовом Fail, retryable переотправляется с задержкой.
func (w *Worker) handle(ctx context.Context, d *mq.Delivery) error {
	msg := d.Message
	kind := task.Kind(msg.Kind)

	handler, err := w.registry.Get(kind)
	if err != nil {
		// Реестр валидирован при старте; сюда попадает только сообщение
		// от более новой версии системы. Повтор не поможет.
		w.logger.Error("unknown task kind, dropping", "kind", kind, "message_id", msg.ID)
		return nil
	}

	logger := telemetry.WithTaskID(w.logger, msg.ID).With("kind", kind, "attempt", msg.Attempt)

	start := time.Now()
	execErr := handler.Execute(ctx, msg.Args)
	telemetry.TaskDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	switch {
	case execErr == nil:
		telemetry.TaskExecutions.WithLabelValues(string(kind), "ok").Inc()
		logger.Debug("task completed")
		return nil

	case isBenign(execErr):
		telemetry.TaskExecutions.WithLabelValues(string(kind), "noop").Inc()
		logger.Debug("task already done elsewhere", "error", execErr)
		return nil

	case isFatal(execErr):
		logger.Error("task failed permanently", "error", execErr)
		w.fail(ctx, handler, kind, msg, execErr)
		return nil

	case msg.Attempt >= task.MaxRetries:
		logger.Error("task failed, retries exhausted", "error", execErr)
		w.fail(ctx, handler, kind, msg, fmt.Errorf("%w: %v", ErrRetryExhausted, execErr))
		return nil

	default:
		return w.retry(ctx, logger, kind, msg, execErr)
	}
}

// retry переотправляет сообщение в retry-очередь со следующим номером
// попытки. Ошибка публикации возвращается вызывающему: сообщение
// вернётся в рабочую очередь и попытка повторится.
func (w *Worker) retry(ctx context.Context, logger *slog.Logger, kind task.Kind, msg mq.Message, cause error) error {
	queue, err := kind.Queue()
	if err != nil {
		return err
	}

	retryMsg := msg
	retryMsg.Attempt++

	delay := kind.RetryCountdown()
	if err := w.publisher.PublishRetry(ctx, queue, &retryMsg, delay); err != nil {
		return fmt.Errorf("publish retry: %w", err)
	}

	telemetry.TaskExecutions.WithLabelValues(string(kind), "retry").Inc()
	logger.Warn("task failed, retry scheduled",
		"error", cause,
		"next_attempt", retryMsg.Attempt,
		"delay", delay,
	)
	return nil
}

// fail фиксирует провал задачи через Fail обработчика.
func (w *Worker) fail(ctx context.Context, handler Handler, kind task.Kind, msg mq.Message, cause error) {
	telemetry.TaskExecutions.WithLabelValues(string(kind), "failed").Inc()

	if err := handler.Fail(ctx, msg.Args, cause); err != nil {
		w.logger.Error("failed to record task failure",
			"kind", kind,
			"message_id", msg.ID,
			"error", err,
		)
	}
}
