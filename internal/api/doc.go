// Package api реализует HTTP API сервиса.
//
// Структура:
//   - handler.go          — Handler с зависимостями
//   - routes.go           — регистрация маршрутов (метод-паттерны ServeMux)
//   - bot_handler.go      — эндпоинты ботов
//   - campaign_handler.go — эндпоинты кампаний
//   - content_handler.go  — эндпоинты контента
//   - dto.go              — request/response структуры
//   - response.go         — helpers для JSON ответов
//   - middleware.go       — логирование, recovery, метрики
//
// Операции жизненного цикла (start/stop бота, генерация контента)
// асинхронны: эндпоинт валидирует переход, ставит задачу в очередь
// и отвечает 202 с идентификатором задачи.
package api
