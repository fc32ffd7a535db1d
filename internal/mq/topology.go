package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// Exchanges — имена обменников.
const (
	// ExchangeTasks — рабочие задачи, маршрутизируются по имени очереди.
	ExchangeTasks Exchange = "hive.tasks"

	// ExchangeRetry — отложенный retry: очереди с TTL возвращают
	// сообщение в ExchangeTasks по истечении задержки.
	ExchangeRetry Exchange = "hive.retry"

	// ExchangeDLQ — poison-сообщения.
	ExchangeDLQ Exchange = "hive.dlq"
)

// Рабочие очереди. Routing key совпадает с именем очереди.
const (
	QueueBots      Queue = "bots"
	QueueContent   Queue = "content"
	QueueCampaigns Queue = "campaigns"

	QueueDLQ Queue = "dlq.tasks"
)

// WorkQueues — все рабочие очереди задач.
var WorkQueues = []Queue{QueueBots, QueueContent, QueueCampaigns}

// RetryQueue возвращает имя retry-очереди для рабочей очереди.
func RetryQueue(q Queue) Queue {
	return q + ".retry"
}

// SetupTopology объявляет exchange, очереди и привязки.
// Идемпотентна: повторное объявление существующей топологии — no-op.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	for _, name := range []Exchange{ExchangeTasks, ExchangeRetry, ExchangeDLQ} {
		err := ch.ExchangeDeclare(
			string(name), // name
			"direct",     // type
			true,         // durable
			false,        // auto-deleted
			false,        // internal
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}
	return nil
}

// declareQueues создаёт рабочие, retry и DLQ очереди.
func declareQueues(ch *amqp.Channel) error {
	// Рабочие очереди: непарсящиеся сообщения уходят в DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(QueueDLQ),
	}

	for _, q := range WorkQueues {
		if _, err := ch.QueueDeclare(string(q), true, false, false, false, dlqArgs); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}

		// Retry-очередь: без потребителей; сообщение лежит до истечения
		// per-message TTL и dead-letter'ится обратно в рабочую очередь
		retryArgs := amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeTasks),
			"x-dead-letter-routing-key": string(q),
		}
		if _, err := ch.QueueDeclare(string(RetryQueue(q)), true, false, false, false, retryArgs); err != nil {
			return fmt.Errorf("declare queue %s: %w", RetryQueue(q), err)
		}
	}

	if _, err := ch.QueueDeclare(string(QueueDLQ), true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", QueueDLQ, err)
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	for _, q := range WorkQueues {
		if err := ch.QueueBind(string(q), string(q), string(ExchangeTasks), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", q, ExchangeTasks, err)
		}
		retry := RetryQueue(q)
		if err := ch.QueueBind(string(retry), string(retry), string(ExchangeRetry), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", retry, ExchangeRetry, err)
		}
	}

	if err := ch.QueueBind(string(QueueDLQ), string(QueueDLQ), string(ExchangeDLQ), false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", QueueDLQ, ExchangeDLQ, err)
	}

	return nil
}
