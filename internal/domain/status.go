package domain

// BotStatus — статус жизненного цикла бота.
//
// Жизненный цикл:
//
//	idle --start--> running --stop--> idle
//	любой статус --fault--> error
//	error --reset--> idle
type BotStatus string

const (
	// BotStatusIdle — бот остановлен и готов к запуску.
	BotStatusIdle BotStatus = "idle"

	// BotStatusRunning — бот выполняет работу.
	BotStatusRunning BotStatus = "running"

	// BotStatusPaused — бот приостановлен пользователем.
	BotStatusPaused BotStatus = "paused"

	// BotStatusError — бот в состоянии ошибки, требуется reset.
	BotStatusError BotStatus = "error"
)

// Valid проверяет, что статус входит в допустимое множество.
func (s BotStatus) Valid() bool {
	switch s {
	case BotStatusIdle, BotStatusRunning, BotStatusPaused, BotStatusError:
		return true
	default:
		return false
	}
}

// BotHealth — состояние здоровья бота.
type BotHealth string

const (
	BotHealthHealthy  BotHealth = "healthy"
	BotHealthWarning  BotHealth = "warning"
	BotHealthCritical BotHealth = "critical"
	BotHealthUnknown  BotHealth = "unknown"
)

// Valid проверяет, что значение health входит в допустимое множество.
func (h BotHealth) Valid() bool {
	switch h {
	case BotHealthHealthy, BotHealthWarning, BotHealthCritical, BotHealthUnknown:
		return true
	default:
		return false
	}
}

// ProxyStatus — статус прокси бота.
type ProxyStatus string

const (
	ProxyStatusActive   ProxyStatus = "active"
	ProxyStatusInactive ProxyStatus = "inactive"
	ProxyStatusError    ProxyStatus = "error"
)

// CampaignStatus — статус кампании.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// Valid проверяет, что статус входит в допустимое множество.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused,
		CampaignStatusCompleted, CampaignStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true, если статус финальный (кампания завершена).
func (s CampaignStatus) IsTerminal() bool {
	switch s {
	case CampaignStatusCompleted, CampaignStatusCancelled:
		return true
	default:
		return false
	}
}

// ActionStatus — статус действия кампании.
//
// Жизненный цикл:
//
//	pending --claim--> in-progress --succeed--> completed
//	                               --fail-----> failed
//
// failed — терминальный статус: действие никогда не переисполняется
// автоматически, повторный запуск создаёт новое действие.
type ActionStatus string

const (
	ActionStatusPending    ActionStatus = "pending"
	ActionStatusInProgress ActionStatus = "in-progress"
	ActionStatusCompleted  ActionStatus = "completed"
	ActionStatusFailed     ActionStatus = "failed"
)

// IsTerminal возвращает true, если статус финальный.
func (s ActionStatus) IsTerminal() bool {
	switch s {
	case ActionStatusCompleted, ActionStatusFailed:
		return true
	default:
		return false
	}
}

// ContentStatus — статус генерации контента (хранится в Content.Metadata).
//
// Жизненный цикл:
//
//	processing --succeed--> completed
//	           --fail-----> error
//
// Из completed и error переходов нет.
type ContentStatus string

const (
	ContentStatusProcessing ContentStatus = "processing"
	ContentStatusCompleted  ContentStatus = "completed"
	ContentStatusError      ContentStatus = "error"
)

// IsTerminal возвращает true, если статус финальный.
func (s ContentStatus) IsTerminal() bool {
	switch s {
	case ContentStatusCompleted, ContentStatusError:
		return true
	default:
		return false
	}
}

// ContentType — тип генерируемого контента.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeAudio ContentType = "audio"
)

// Valid проверяет, что тип контента поддерживается.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeText, ContentTypeImage, ContentTypeAudio:
		return true
	default:
		return false
	}
}
