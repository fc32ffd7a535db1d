package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message — сообщение задачи в очереди.
//
// Args — упорядоченный список JSON-совместимых значений; mq не делает
// предположений об их семантике, разбор — забота обработчика.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Kind — имя задачи из каталога (например, "bot.start").
	Kind string `json:"kind"`

	// Args — позиционные аргументы задачи.
	Args []any `json:"args"`

	// Attempt — номер попытки, начиная с 1. Увеличивается при retry.
	Attempt int `json:"attempt"`

	// EnqueuedAt — время постановки в очередь.
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Publisher публикует сообщения задач в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// PublishTask публикует задачу в рабочую очередь.
func (p *Publisher) PublishTask(ctx context.Context, queue Queue, msg *Message) error {
	return p.publish(ctx, ExchangeTasks, string(queue), msg, "")
}

// PublishRetry публикует задачу в retry-очередь с задержкой delay.
// Брокер вернёт сообщение в рабочую очередь по истечении TTL.
func (p *Publisher) PublishRetry(ctx context.Context, queue Queue, msg *Message, delay time.Duration) error {
	expiration := strconv.FormatInt(delay.Milliseconds(), 10)
	return p.publish(ctx, ExchangeRetry, string(RetryQueue(queue)), msg, expiration)
}

// publish сериализует и публикует сообщение.
func (p *Publisher) publish(ctx context.Context, exchange Exchange, routingKey string, msg *Message, expiration string) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange), // exchange
			routingKey,       // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.EnqueuedAt,
				Expiration:   expiration,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"kind", msg.Kind,
			"attempt", msg.Attempt,
		)

		return nil
	})
}
