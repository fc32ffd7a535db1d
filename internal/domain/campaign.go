package domain

import (
	"time"

	"github.com/google/uuid"
)

// Campaign — маркетинговая кампания.
//
// Кампания владеет CampaignAction, CampaignMetric и CampaignPlatform —
// все они удаляются каскадно вместе с кампанией. Инвариант: updated_at
// кампании продвигается при добавлении любого действия или метрики
// (слой repo делает это в одной транзакции со вставкой).
type Campaign struct {
	// ID — уникальный идентификатор кампании.
	ID uuid.UUID `json:"id"`

	// Name — имя кампании.
	Name string `json:"name"`

	// Description — описание кампании.
	Description string `json:"description,omitempty"`

	// Type — тип кампании (например, "awareness", "engagement").
	Type string `json:"type"`

	// Status — статус кампании.
	Status CampaignStatus `json:"status"`

	// StartDate — дата начала.
	StartDate *time.Time `json:"start_date,omitempty"`

	// EndDate — дата окончания.
	EndDate *time.Time `json:"end_date,omitempty"`

	// Budget — бюджет кампании.
	Budget *float64 `json:"budget,omitempty"`

	// Tags — произвольные теги.
	Tags []string `json:"tags,omitempty"`

	// Platforms — целевые платформы.
	Platforms []string `json:"platforms,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// CampaignAction — запланированная единица работы кампании.
//
// Действие с scheduled_for и статусом pending — кандидат для сканера:
// как только scheduled_for <= now, сканер захватывает его (claim)
// и отправляет задачу на исполнение.
type CampaignAction struct {
	// ID — уникальный идентификатор действия.
	ID uuid.UUID `json:"id"`

	// CampaignID — ссылка на кампанию-владельца.
	CampaignID uuid.UUID `json:"campaign_id"`

	// Type — тип действия (например, "publish_post", "boost").
	Type string `json:"type"`

	// Status — статус выполнения.
	Status ActionStatus `json:"status"`

	// ScheduledFor — время, начиная с которого действие должно быть выполнено.
	// Nil — действие запускается только вручную.
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`

	// RecurCron — cron-выражение для повторяющихся действий.
	// После завершения действия создаётся следующее pending-действие
	// со scheduled_for, вычисленным по этому выражению.
	RecurCron string `json:"recur_cron,omitempty"`

	// Platform — платформа, на которой выполняется действие.
	Platform string `json:"platform,omitempty"`

	// Details — параметры действия.
	Details map[string]any `json:"details,omitempty"`

	// Results — результаты выполнения. Заполняется только в терминальном статусе.
	Results map[string]any `json:"results,omitempty"`

	// Error — текст ошибки, если действие завершилось со статусом failed.
	Error string `json:"error,omitempty"`

	// CompletedAt — время завершения. Заполняется только в терминальном статусе.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsDue проверяет, готово ли действие к захвату сканером.
func (a *CampaignAction) IsDue(now time.Time) bool {
	if a.Status != ActionStatusPending {
		return false
	}
	if a.ScheduledFor == nil {
		return false
	}
	return !a.ScheduledFor.After(now)
}

// NextOccurrence создаёт следующее pending-действие для повторяющегося
// действия. scheduledFor вычисляется вызывающим по RecurCron.
func (a *CampaignAction) NextOccurrence(scheduledFor time.Time) CampaignAction {
	return CampaignAction{
		ID:           uuid.New(),
		CampaignID:   a.CampaignID,
		Type:         a.Type,
		Status:       ActionStatusPending,
		ScheduledFor: &scheduledFor,
		RecurCron:    a.RecurCron,
		Platform:     a.Platform,
		Details:      a.Details,
	}
}

// CampaignMetric — именованная числовая метрика кампании.
type CampaignMetric struct {
	// ID — уникальный идентификатор метрики.
	ID uuid.UUID `json:"id"`

	// CampaignID — ссылка на кампанию.
	CampaignID uuid.UUID `json:"campaign_id"`

	// Name — имя метрики ("views", "likes", ...).
	Name string `json:"name"`

	// Value — текущее значение.
	Value float64 `json:"value"`

	// Target — целевое значение.
	Target *float64 `json:"target,omitempty"`

	// Change — изменение за период, в процентах.
	Change *float64 `json:"change,omitempty"`
}
