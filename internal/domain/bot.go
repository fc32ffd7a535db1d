package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bot — автоматизированный бот, работающий на внешней платформе.
//
// Бот владеет упорядоченными коллекциями BotAction и BotActivity.
// Статус меняется только через машину состояний (BotTransition);
// каждый эффективный переход сопровождается ровно одной записью
// BotActivity в той же транзакции.
type Bot struct {
	// ID — уникальный идентификатор бота.
	ID uuid.UUID `json:"id"`

	// Name — имя бота.
	Name string `json:"name"`

	// Type — тип бота (например, "engagement", "posting").
	Type string `json:"type"`

	// Platform — целевая платформа бота.
	Platform string `json:"platform"`

	// Status — статус жизненного цикла.
	Status BotStatus `json:"status"`

	// Health — состояние здоровья по результатам последней проверки.
	Health BotHealth `json:"health"`

	// ProxyStatus — статус прокси-соединения.
	ProxyStatus ProxyStatus `json:"proxy_status"`

	// Description — описание назначения бота.
	Description string `json:"description,omitempty"`

	// Avatar — URL аватара.
	Avatar string `json:"avatar,omitempty"`

	// Config — произвольная конфигурация бота (JSONB).
	Config map[string]any `json:"config,omitempty"`

	// LastActive — время последней активности.
	LastActive *time.Time `json:"last_active,omitempty"`

	// Version — токен оптимистической блокировки.
	// Каждый UPDATE выполняется как compare-and-set по этому полю.
	Version int `json:"version"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// BotAction — действие, выполняемое ботом.
type BotAction struct {
	// ID — уникальный идентификатор действия.
	ID uuid.UUID `json:"id"`

	// BotID — ссылка на бота.
	BotID uuid.UUID `json:"bot_id"`

	// Type — тип действия (например, "like", "post", "follow").
	Type string `json:"type"`

	// Status — статус выполнения действия.
	Status ActionStatus `json:"status"`

	// Target — цель действия (URL, username и т.п.).
	Target string `json:"target,omitempty"`

	// Details — произвольные параметры действия.
	Details map[string]any `json:"details,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt — время завершения.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// BotActivity — запись append-only журнала активности бота.
//
// Записи никогда не изменяются и не удаляются, кроме каскадного
// удаления вместе с ботом.
type BotActivity struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// BotID — ссылка на бота.
	BotID uuid.UUID `json:"bot_id"`

	// Type — тип события ("status_change", "health_check", ...).
	Type string `json:"type"`

	// Description — человекочитаемое описание события.
	Description string `json:"description"`

	// Details — произвольные детали события.
	Details map[string]any `json:"details,omitempty"`

	// Timestamp — время события.
	Timestamp time.Time `json:"timestamp"`
}

// StatusChangeActivity создаёт запись журнала о смене статуса.
func StatusChangeActivity(botID uuid.UUID, to BotStatus) BotActivity {
	return BotActivity{
		ID:          uuid.New(),
		BotID:       botID,
		Type:        "status_change",
		Description: "Bot status changed to " + string(to),
		Timestamp:   time.Now().UTC(),
	}
}

// Touch обновляет время последней активности.
func (b *Bot) Touch(now time.Time) {
	t := now.UTC()
	b.LastActive = &t
	b.UpdatedAt = t
}
