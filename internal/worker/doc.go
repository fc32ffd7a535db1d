// Package worker выполняет асинхронные задачи из очередей RabbitMQ.
//
// Структура:
//   - registry.go          — реестр обработчиков по виду задачи,
//     валидация полноты при старте
//   - worker.go            — цикл потребления, политика retry
//   - handlers_bot.go      — задачи bot.* (жизненный цикл, действия, health)
//   - handlers_campaign.go — задачи campaign.* (обработка, действия, метрики)
//   - handlers_content.go  — задачи content.generate_*
//
// Семантика доставки — at-least-once: обработчики идемпотентны,
// повторная доставка уже выполненной задачи завершается no-op.
//
// Ошибки выполнения делятся на три класса:
//   - benign (repo.ErrRaceLost, domain.TransitionError) — работу уже
//     сделал другой экземпляр либо сущность ушла дальше по жизненному
//     циклу; сообщение подтверждается без действий
//   - fatal (repo.ErrNotFound, ErrBadArgs) — повтор бессмыслен,
//     вызывается Fail и сообщение подтверждается
//   - retryable (всё остальное) — сообщение переотправляется в
//     retry-очередь с задержкой; после task.MaxRetries попыток
//     вызывается Fail ровно один раз
//
// Workers stateless и масштабируются горизонтально.
package worker
