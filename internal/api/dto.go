package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/task"
)

// Bot DTOs

// CreateBotRequest — запрос на создание бота.
type CreateBotRequest struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Platform    string         `json:"platform"`
	Description string         `json:"description,omitempty"`
	Avatar      string         `json:"avatar,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

// UpdateBotRequest — запрос на обновление бота.
type UpdateBotRequest struct {
	Name        *string         `json:"name,omitempty"`
	Type        *string         `json:"type,omitempty"`
	Platform    *string         `json:"platform,omitempty"`
	Description *string         `json:"description,omitempty"`
	Avatar      *string         `json:"avatar,omitempty"`
	Config      *map[string]any `json:"config,omitempty"`

	// Version — токен оптимистической блокировки. Обязателен:
	// обновление применится только если бот не менялся с момента чтения.
	Version int `json:"version"`
}

// BotResponse — ответ с ботом.
type BotResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Platform    string         `json:"platform"`
	Status      string         `json:"status"`
	Health      string         `json:"health"`
	ProxyStatus string         `json:"proxy_status"`
	Description string         `json:"description,omitempty"`
	Avatar      string         `json:"avatar,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	LastActive  *time.Time     `json:"last_active,omitempty"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BotFromDomain конвертирует domain.Bot в BotResponse.
func BotFromDomain(b domain.Bot) BotResponse {
	return BotResponse{
		ID:          b.ID,
		Name:        b.Name,
		Type:        b.Type,
		Platform:    b.Platform,
		Status:      string(b.Status),
		Health:      string(b.Health),
		ProxyStatus: string(b.ProxyStatus),
		Description: b.Description,
		Avatar:      b.Avatar,
		Config:      b.Config,
		LastActive:  b.LastActive,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// CreateBotActionRequest — запрос на выполнение действия ботом.
type CreateBotActionRequest struct {
	Type    string         `json:"type"`
	Target  string         `json:"target,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// BotActionResponse — ответ с действием бота.
type BotActionResponse struct {
	ID          uuid.UUID      `json:"id"`
	BotID       uuid.UUID      `json:"bot_id"`
	Type        string         `json:"type"`
	Status      string         `json:"status"`
	Target      string         `json:"target,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// BotActionFromDomain конвертирует domain.BotAction в BotActionResponse.
func BotActionFromDomain(a domain.BotAction) BotActionResponse {
	return BotActionResponse{
		ID:          a.ID,
		BotID:       a.BotID,
		Type:        a.Type,
		Status:      string(a.Status),
		Target:      a.Target,
		Details:     a.Details,
		StartedAt:   a.StartedAt,
		CompletedAt: a.CompletedAt,
	}
}

// BotActivityResponse — ответ с записью журнала активности.
type BotActivityResponse struct {
	ID          uuid.UUID      `json:"id"`
	BotID       uuid.UUID      `json:"bot_id"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// BotActivityFromDomain конвертирует domain.BotActivity в BotActivityResponse.
func BotActivityFromDomain(a domain.BotActivity) BotActivityResponse {
	return BotActivityResponse{
		ID:          a.ID,
		BotID:       a.BotID,
		Type:        a.Type,
		Description: a.Description,
		Details:     a.Details,
		Timestamp:   a.Timestamp,
	}
}

// Campaign DTOs

// CreateCampaignRequest — запрос на создание кампании.
type CreateCampaignRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Budget      *float64   `json:"budget,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Platforms   []string   `json:"platforms,omitempty"`
}

// UpdateCampaignRequest — запрос на обновление кампании.
type UpdateCampaignRequest struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Type        *string     `json:"type,omitempty"`
	StartDate   *time.Time  `json:"start_date,omitempty"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	Budget      *float64    `json:"budget,omitempty"`
	Tags        *[]string   `json:"tags,omitempty"`
	Platforms   *[]string   `json:"platforms,omitempty"`
}

// SetCampaignStatusRequest — запрос на смену статуса кампании.
type SetCampaignStatusRequest struct {
	Status string `json:"status"`
}

// CampaignResponse — ответ с кампанией.
type CampaignResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Budget      *float64   `json:"budget,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Platforms   []string   `json:"platforms,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CampaignFromDomain конвертирует domain.Campaign в CampaignResponse.
func CampaignFromDomain(c domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Type:        c.Type,
		Status:      string(c.Status),
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Budget:      c.Budget,
		Tags:        c.Tags,
		Platforms:   c.Platforms,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CreateCampaignActionRequest — запрос на создание действия кампании.
type CreateCampaignActionRequest struct {
	Type         string         `json:"type"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	RecurCron    string         `json:"recur_cron,omitempty"`
	Platform     string         `json:"platform,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// CampaignActionResponse — ответ с действием кампании.
type CampaignActionResponse struct {
	ID           uuid.UUID      `json:"id"`
	CampaignID   uuid.UUID      `json:"campaign_id"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	RecurCron    string         `json:"recur_cron,omitempty"`
	Platform     string         `json:"platform,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	Results      map[string]any `json:"results,omitempty"`
	Error        string         `json:"error,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// CampaignActionFromDomain конвертирует domain.CampaignAction.
func CampaignActionFromDomain(a domain.CampaignAction) CampaignActionResponse {
	return CampaignActionResponse{
		ID:           a.ID,
		CampaignID:   a.CampaignID,
		Type:         a.Type,
		Status:       string(a.Status),
		ScheduledFor: a.ScheduledFor,
		RecurCron:    a.RecurCron,
		Platform:     a.Platform,
		Details:      a.Details,
		Results:      a.Results,
		Error:        a.Error,
		CompletedAt:  a.CompletedAt,
	}
}

// AddCampaignMetricRequest — запрос на добавление метрики.
type AddCampaignMetricRequest struct {
	Name   string   `json:"name"`
	Value  float64  `json:"value"`
	Target *float64 `json:"target,omitempty"`
	Change *float64 `json:"change,omitempty"`
}

// CampaignMetricResponse — ответ с метрикой кампании.
type CampaignMetricResponse struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	Name       string    `json:"name"`
	Value      float64   `json:"value"`
	Target     *float64  `json:"target,omitempty"`
	Change     *float64  `json:"change,omitempty"`
}

// CampaignMetricFromDomain конвертирует domain.CampaignMetric.
func CampaignMetricFromDomain(m domain.CampaignMetric) CampaignMetricResponse {
	return CampaignMetricResponse{
		ID:         m.ID,
		CampaignID: m.CampaignID,
		Name:       m.Name,
		Value:      m.Value,
		Target:     m.Target,
		Change:     m.Change,
	}
}

// Content DTOs

// CreateContentRequest — запрос на создание готового контента.
type CreateContentRequest struct {
	Type        string     `json:"type"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Body        string     `json:"content,omitempty"`
	MediaURL    string     `json:"media_url,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	CampaignID  *uuid.UUID `json:"campaign_id,omitempty"`
}

// GenerateContentRequest — запрос на генерацию контента.
type GenerateContentRequest struct {
	Prompt     string         `json:"prompt"`
	Platform   string         `json:"platform,omitempty"`
	CampaignID *uuid.UUID     `json:"campaign_id,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ContentResponse — ответ с контентом.
type ContentResponse struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Body        string                 `json:"content,omitempty"`
	MediaURL    string                 `json:"media_url,omitempty"`
	Platform    string                 `json:"platform,omitempty"`
	CampaignID  *uuid.UUID             `json:"campaign_id,omitempty"`
	Metadata    domain.ContentMetadata `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ContentFromDomain конвертирует domain.Content в ContentResponse.
func ContentFromDomain(c domain.Content) ContentResponse {
	return ContentResponse{
		ID:          c.ID,
		Type:        string(c.Type),
		Title:       c.Title,
		Description: c.Description,
		Body:        c.Body,
		MediaURL:    c.MediaURL,
		Platform:    c.Platform,
		CampaignID:  c.CampaignID,
		Metadata:    c.Metadata,
		CreatedAt:   c.CreatedAt,
	}
}

// Task DTOs

// TaskSubmittedResponse — ответ о поставленной в очередь задаче.
type TaskSubmittedResponse struct {
	TaskID string `json:"task_id"`
	Kind   string `json:"kind"`
	Queue  string `json:"queue"`
}

// TaskSubmittedFromHandle конвертирует task.Handle.
func TaskSubmittedFromHandle(h task.Handle) TaskSubmittedResponse {
	return TaskSubmittedResponse{
		TaskID: h.ID,
		Kind:   string(h.Kind),
		Queue:  string(h.Queue),
	}
}

// BotActionSubmittedResponse — созданное действие бота и задача его выполнения.
type BotActionSubmittedResponse struct {
	Action BotActionResponse     `json:"action"`
	Task   TaskSubmittedResponse `json:"task"`
}

// CampaignActionSubmittedResponse — действие кампании и задача его выполнения.
type CampaignActionSubmittedResponse struct {
	Action CampaignActionResponse `json:"action"`
	Task   TaskSubmittedResponse  `json:"task"`
}

// GenerationSubmittedResponse — placeholder контента и задача генерации.
type GenerationSubmittedResponse struct {
	Content ContentResponse       `json:"content"`
	Task    TaskSubmittedResponse `json:"task"`
}
