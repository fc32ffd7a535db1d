package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Hive/internal/mq"
)

// Handle — результат отправки задачи: идентификатор сообщения,
// вид задачи и очередь, в которую она направлена.
type Handle struct {
	ID    string   `json:"id"`
	Kind  Kind     `json:"kind"`
	Queue mq.Queue `json:"queue"`
}

// Publisher — узкий интерфейс публикации, который реализует mq.Publisher.
type Publisher interface {
	PublishTask(ctx context.Context, queue mq.Queue, msg *mq.Message) error
}

// Dispatcher отправляет задачи в очереди брокера.
//
// Submit неблокирующий с точки зрения исполнения: он только публикует
// сообщение и возвращает Handle, никогда не ждёт выполнения задачи.
// Состояние сущностей диспетчер не трогает — в сообщении передаются
// только идентификаторы, воркер перечитывает всё из БД.
type Dispatcher struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewDispatcher создаёт новый Dispatcher.
func NewDispatcher(publisher Publisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
	}
}

// Submit ставит задачу в очередь.
//
// args — упорядоченный список JSON-совместимых значений; их семантику
// знает только обработчик задачи. Недоступность брокера возвращается
// синхронно как обёрнутый ErrDispatch.
func (d *Dispatcher) Submit(ctx context.Context, kind Kind, args ...any) (Handle, error) {
	if !kind.Valid() {
		return Handle{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	queue, err := kind.Queue()
	if err != nil {
		return Handle{}, err
	}

	msg := &mq.Message{
		ID:         uuid.New().String(),
		Kind:       string(kind),
		Args:       args,
		Attempt:    1,
		EnqueuedAt: time.Now().UTC(),
	}

	if err := d.publisher.PublishTask(ctx, queue, msg); err != nil {
		return Handle{}, fmt.Errorf("%w: %s: %v", ErrDispatch, kind, err)
	}

	d.logger.Debug("task submitted",
		"kind", kind,
		"queue", queue,
		"message_id", msg.ID,
	)

	return Handle{ID: msg.ID, Kind: kind, Queue: queue}, nil
}
