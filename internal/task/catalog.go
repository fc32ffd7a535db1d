package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/shaiso/Hive/internal/mq"
)

// Kind — вид задачи из фиксированного каталога.
type Kind string

// Каталог задач.
const (
	// KindBotStart — запуск бота.
	KindBotStart Kind = "bot.start"

	// KindBotStop — остановка бота.
	KindBotStop Kind = "bot.stop"

	// KindBotExecuteAction — выполнение действия бота.
	KindBotExecuteAction Kind = "bot.execute_action"

	// KindBotHealthCheck — проверка здоровья бота.
	KindBotHealthCheck Kind = "bot.health_check"

	// KindCampaignProcess — обработка кампании после активации.
	KindCampaignProcess Kind = "campaign.process"

	// KindCampaignExecuteAction — выполнение действия кампании.
	KindCampaignExecuteAction Kind = "campaign.execute_action"

	// KindCampaignRefreshMetrics — обновление метрик кампании.
	KindCampaignRefreshMetrics Kind = "campaign.refresh_metrics"

	// KindContentGenerateText — генерация текста.
	KindContentGenerateText Kind = "content.generate_text"

	// KindContentGenerateImage — генерация изображения.
	KindContentGenerateImage Kind = "content.generate_image"

	// KindContentGenerateAudio — генерация аудио.
	KindContentGenerateAudio Kind = "content.generate_audio"
)

// MaxRetries — максимальное количество попыток выполнения задачи,
// включая первую.
const MaxRetries = 3

// Catalog возвращает все виды задач. Используется воркером для
// валидации реестра обработчиков при старте.
func Catalog() []Kind {
	return []Kind{
		KindBotStart,
		KindBotStop,
		KindBotExecuteAction,
		KindBotHealthCheck,
		KindCampaignProcess,
		KindCampaignExecuteAction,
		KindCampaignRefreshMetrics,
		KindContentGenerateText,
		KindContentGenerateImage,
		KindContentGenerateAudio,
	}
}

// routes — статическая таблица маршрутизации: префикс вида задачи →
// логическая очередь.
var routes = map[string]mq.Queue{
	"bot":      mq.QueueBots,
	"content":  mq.QueueContent,
	"campaign": mq.QueueCampaigns,
}

// Queue возвращает очередь для вида задачи.
func (k Kind) Queue() (mq.Queue, error) {
	prefix, _, ok := strings.Cut(string(k), ".")
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}

	queue, ok := routes[prefix]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	return queue, nil
}

// Valid проверяет, что вид задачи входит в каталог.
func (k Kind) Valid() bool {
	for _, known := range Catalog() {
		if k == known {
			return true
		}
	}
	return false
}

// RetryCountdown возвращает задержку перед повторной попыткой.
//
// Фоновые задачи обслуживания (health check, обновление метрик)
// повторяются реже, чем задачи действий и генерации.
func (k Kind) RetryCountdown() time.Duration {
	switch k {
	case KindBotHealthCheck, KindCampaignRefreshMetrics:
		return 300 * time.Second
	default:
		return 60 * time.Second
	}
}
