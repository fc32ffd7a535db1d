package domain

import (
	"time"

	"github.com/google/uuid"
)

// Content — единица сгенерированного контента.
//
// Прогресс генерации отслеживается через Metadata.Status независимо от
// жизненного цикла самой записи. Инвариант: Body и MediaURL заполняются
// только когда Metadata.Status == completed.
type Content struct {
	// ID — уникальный идентификатор контента.
	ID uuid.UUID `json:"id"`

	// Type — тип контента: text, image, audio.
	Type ContentType `json:"type"`

	// Title — заголовок.
	Title string `json:"title,omitempty"`

	// Description — описание (для генерируемого контента — prompt).
	Description string `json:"description,omitempty"`

	// Body — сгенерированный текст (только для type=text).
	Body string `json:"content,omitempty"`

	// MediaURL — URL сгенерированного медиа (image, audio).
	MediaURL string `json:"media_url,omitempty"`

	// Platform — целевая платформа публикации.
	Platform string `json:"platform,omitempty"`

	// CampaignID — необязательная привязка к кампании.
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"`

	// Metadata — статус генерации и её параметры.
	Metadata ContentMetadata `json:"metadata"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`
}

// ContentMetadata — метаданные генерации (JSONB поле metadata).
type ContentMetadata struct {
	// Status — статус генерации: processing, completed, error.
	Status ContentStatus `json:"status"`

	// Parameters — параметры генерации, переданные провайдеру.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Error — текст ошибки при status == error.
	Error string `json:"error,omitempty"`

	// GeneratedAt — время успешной генерации.
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// NewGenerationPlaceholder создаёт placeholder-запись контента
// в статусе processing. Заполняется воркером после генерации.
func NewGenerationPlaceholder(ctype ContentType, prompt, platform string, campaignID *uuid.UUID, params map[string]any) Content {
	title := prompt
	if len(title) > 30 {
		title = title[:30] + "..."
	}

	return Content{
		ID:          uuid.New(),
		Type:        ctype,
		Title:       "Generated " + string(ctype) + ": " + title,
		Description: prompt,
		Platform:    platform,
		CampaignID:  campaignID,
		Metadata: ContentMetadata{
			Status:     ContentStatusProcessing,
			Parameters: params,
		},
		CreatedAt: time.Now().UTC(),
	}
}
