// Package domain содержит доменные сущности и чистую логику переходов статусов.
//
// Сущности:
//   - Bot          — автоматизированный бот (status, health, proxy_status)
//   - BotAction    — действие бота
//   - BotActivity  — append-only журнал активности бота
//   - Campaign     — маркетинговая кампания
//   - CampaignAction — запланированная единица работы кампании
//   - CampaignMetric — числовая метрика кампании
//   - Content      — сгенерированный контент (text, image, audio)
//
// Машины состояний (machine.go) — чистые функции без обращения к БД
// или очередям. Побочные эффекты перехода (запись BotActivity)
// выполняются слоем repo в той же транзакции, что и UPDATE статуса.
package domain
