// Package cli реализует инструмент командной строки Hive.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Hive API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления ботами, кампаниями и контентом.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Hive API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	bots, err := client.ListBots(cli.ListBotsOpts{})
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: hive bot list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - bot: list, create, show, update, delete, start, stop, pause,
//     resume, reset, health-check, actions, exec, activities
//   - campaign: list, create, show, update, delete, status, actions,
//     schedule, execute, metrics
//   - content: list, show, delete, generate
//
// Каждая группа создаётся через фабричную функцию (NewBotCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
