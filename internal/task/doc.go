// Package task определяет каталог задач и диспетчер их отправки.
//
// Структура:
//   - catalog.go    — перечисление видов задач, маршрутизация по очередям,
//     политика retry (бюджет попыток, задержка по классу задачи)
//   - dispatcher.go — неблокирующая отправка задачи в очередь
//
// Маршрутизация статическая, по префиксу имени:
//   - bot.*      → очередь "bots"
//   - content.*  → очередь "content"
//   - campaign.* → очередь "campaigns"
//
// Submit только ставит сообщение в очередь и возвращает Handle —
// исполнение происходит out-of-process в воркере (пакет worker).
package task
