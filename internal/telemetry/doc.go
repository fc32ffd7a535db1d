// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog, With*-хелперы
//     для сквозных полей (bot_id, campaign_id, content_id, task_id)
//   - metrics.go — Prometheus метрики: выполнение задач (worker),
//     циклы и захваты сканера, HTTP-запросы API
//
// Все сервисы используют единый формат логирования
// и экспортируют метрики на /metrics endpoint.
package telemetry
