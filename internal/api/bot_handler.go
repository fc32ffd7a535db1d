package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
)

// ListBots возвращает список ботов.
// GET /api/v1/bots
func (h *Handler) ListBots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pagination(q)

	bots, err := h.botRepo.List(r.Context(), repo.BotFilter{
		Status:   queryList(q, "status"),
		Type:     queryList(q, "type"),
		Platform: queryList(q, "platform"),
		Health:   queryList(q, "health"),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]BotResponse, len(bots))
	for i, b := range bots {
		result[i] = BotFromDomain(b)
	}

	List(w, result, len(result))
}

// CreateBot создаёт нового бота в статусе idle.
// POST /api/v1/bots
func (h *Handler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var req CreateBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}
	if req.Platform == "" {
		BadRequest(w, "platform is required")
		return
	}

	now := time.Now().UTC()
	bot := &domain.Bot{
		ID:          uuid.New(),
		Name:        req.Name,
		Type:        req.Type,
		Platform:    req.Platform,
		Status:      domain.BotStatusIdle,
		Health:      domain.BotHealthUnknown,
		ProxyStatus: domain.ProxyStatusInactive,
		Description: req.Description,
		Avatar:      req.Avatar,
		Config:      req.Config,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.botRepo.Create(r.Context(), bot); HandleRepoError(w, h.logger, err, "") {
		return
	}

	Created(w, BotFromDomain(*bot))
}

// GetBot возвращает бота по ID.
// GET /api/v1/bots/{id}
func (h *Handler) GetBot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	bot, err := h.botRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	Success(w, BotFromDomain(*bot))
}

// UpdateBot обновляет бота.
// PUT /api/v1/bots/{id}
//
// Требует актуальный version: при конкурентном изменении возвращает 409.
func (h *Handler) UpdateBot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	var req UpdateBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Version <= 0 {
		BadRequest(w, "version is required")
		return
	}

	bot, err := h.botRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	if req.Name != nil {
		bot.Name = *req.Name
	}
	if req.Type != nil {
		bot.Type = *req.Type
	}
	if req.Platform != nil {
		bot.Platform = *req.Platform
	}
	if req.Description != nil {
		bot.Description = *req.Description
	}
	if req.Avatar != nil {
		bot.Avatar = *req.Avatar
	}
	if req.Config != nil {
		bot.Config = *req.Config
	}

	// CAS по версии клиента, не по прочитанной: конфликт обнаруживается
	// даже если бот изменился между чтением клиента и этим запросом.
	bot.Version = req.Version

	if err := h.botRepo.Update(r.Context(), bot); HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	Success(w, BotFromDomain(*bot))
}

// DeleteBot удаляет бота вместе с действиями и журналом активности.
// DELETE /api/v1/bots/{id}
func (h *Handler) DeleteBot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	if err := h.botRepo.Delete(r.Context(), id); HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	NoContent(w)
}

// StartBot ставит задачу запуска бота.
// POST /api/v1/bots/{id}/start
func (h *Handler) StartBot(w http.ResponseWriter, r *http.Request) {
	h.submitBotLifecycle(w, r, domain.BotEventStart, task.KindBotStart)
}

// StopBot ставит задачу остановки бота.
// POST /api/v1/bots/{id}/stop
func (h *Handler) StopBot(w http.ResponseWriter, r *http.Request) {
	h.submitBotLifecycle(w, r, domain.BotEventStop, task.KindBotStop)
}

// submitBotLifecycle валидирует переход и ставит задачу жизненного цикла.
//
// Идемпотентный случай (start на running, stop на idle) не порождает
// задачу — возвращается текущее состояние бота.
func (h *Handler) submitBotLifecycle(w http.ResponseWriter, r *http.Request, event domain.Event, kind task.Kind) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	bot, err := h.botRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	next, err := domain.BotTransition(bot.Status, event)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	if next == bot.Status {
		Success(w, BotFromDomain(*bot))
		return
	}

	handle, err := h.dispatcher.Submit(r.Context(), kind, id.String())
	if HandleDispatchError(w, h.logger, err) {
		return
	}

	Accepted(w, TaskSubmittedFromHandle(handle))
}

// PauseBot приостанавливает бота.
// POST /api/v1/bots/{id}/pause
func (h *Handler) PauseBot(w http.ResponseWriter, r *http.Request) {
	h.applyBotTransition(w, r, domain.BotEventPause)
}

// ResumeBot возобновляет бота.
// POST /api/v1/bots/{id}/resume
func (h *Handler) ResumeBot(w http.ResponseWriter, r *http.Request) {
	h.applyBotTransition(w, r, domain.BotEventResume)
}

// ResetBot сбрасывает бота из статуса error в idle.
// POST /api/v1/bots/{id}/reset
func (h *Handler) ResetBot(w http.ResponseWriter, r *http.Request) {
	h.applyBotTransition(w, r, domain.BotEventReset)
}

// applyBotTransition применяет синхронный переход статуса.
// pause/resume/reset не требуют работы на платформе, поэтому
// выполняются прямо в запросе, без задачи.
func (h *Handler) applyBotTransition(w http.ResponseWriter, r *http.Request, event domain.Event) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	bot, err := h.botRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	next, err := domain.BotTransition(bot.Status, event)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	if next != bot.Status {
		if err := h.botRepo.SetStatus(r.Context(), id, bot.Status, next); HandleRepoError(w, h.logger, err, "bot not found") {
			return
		}
		bot.Status = next
	}

	Success(w, BotFromDomain(*bot))
}

// CheckBotHealth ставит задачу проверки здоровья бота.
// POST /api/v1/bots/{id}/health-check
func (h *Handler) CheckBotHealth(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	if _, err := h.botRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	handle, err := h.dispatcher.Submit(r.Context(), task.KindBotHealthCheck, id.String())
	if HandleDispatchError(w, h.logger, err) {
		return
	}

	Accepted(w, TaskSubmittedFromHandle(handle))
}

// ListBotActions возвращает действия бота.
// GET /api/v1/bots/{id}/actions
func (h *Handler) ListBotActions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	if _, err := h.botRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	limit, offset := pagination(r.URL.Query())
	actions, err := h.botRepo.ListActions(r.Context(), id, limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]BotActionResponse, len(actions))
	for i, a := range actions {
		result[i] = BotActionFromDomain(a)
	}

	List(w, result, len(result))
}

// CreateBotAction создаёт действие бота и ставит задачу его выполнения.
// POST /api/v1/bots/{id}/actions
func (h *Handler) CreateBotAction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	var req CreateBotActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Type == "" {
		BadRequest(w, "type is required")
		return
	}

	bot, err := h.botRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}
	if bot.Status != domain.BotStatusRunning {
		InvalidState(w, "bot must be running to execute actions")
		return
	}

	now := time.Now().UTC()
	action := &domain.BotAction{
		ID:        uuid.New(),
		BotID:     id,
		Type:      req.Type,
		Status:    domain.ActionStatusPending,
		Target:    req.Target,
		Details:   req.Details,
		StartedAt: &now,
	}

	if err := h.botRepo.CreateAction(r.Context(), action); HandleRepoError(w, h.logger, err, "") {
		return
	}

	handle, err := h.dispatcher.Submit(r.Context(), task.KindBotExecuteAction, id.String(), action.ID.String())
	if HandleDispatchError(w, h.logger, err) {
		return
	}

	Accepted(w, BotActionSubmittedResponse{
		Action: BotActionFromDomain(*action),
		Task:   TaskSubmittedFromHandle(handle),
	})
}

// ListBotActivities возвращает журнал активности бота.
// GET /api/v1/bots/{id}/activities
func (h *Handler) ListBotActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid bot id")
		return
	}

	if _, err := h.botRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "bot not found") {
		return
	}

	limit, offset := pagination(r.URL.Query())
	activities, err := h.botRepo.ListActivities(r.Context(), id, limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]BotActivityResponse, len(activities))
	for i, a := range activities {
		result[i] = BotActivityFromDomain(a)
	}

	List(w, result, len(result))
}
