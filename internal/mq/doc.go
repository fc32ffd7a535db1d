// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, очередей и привязок
//   - publisher.go  — публикация задач в очереди
//   - consumer.go   — потребление задач из очередей
//
// Топология:
//   - hive.tasks (direct) — рабочие очереди bots, content, campaigns
//   - очереди *.retry — отложенный retry через per-message TTL,
//     dead-letter обратно в рабочую очередь
//   - hive.dlq — poison-сообщения после nack без requeue
//
// Доставка at-least-once: сообщение может быть доставлено повторно,
// обработчики обязаны перечитывать текущий статус сущности перед работой.
package mq
