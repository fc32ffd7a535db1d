package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
)

// ListCampaigns возвращает список кампаний.
// GET /api/v1/campaigns
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pagination(q)

	campaigns, err := h.campaignRepo.List(r.Context(), repo.CampaignFilter{
		Status:   queryList(q, "status"),
		Type:     queryList(q, "type"),
		Platform: queryList(q, "platform"),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]CampaignResponse, len(campaigns))
	for i, c := range campaigns {
		result[i] = CampaignFromDomain(c)
	}

	List(w, result, len(result))
}

// CreateCampaign создаёт кампанию в статусе draft.
// POST /api/v1/campaigns
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	now := time.Now().UTC()
	campaign := &domain.Campaign{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Status:      domain.CampaignStatusDraft,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Tags:        req.Tags,
		Platforms:   req.Platforms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.campaignRepo.Create(r.Context(), campaign); HandleRepoError(w, h.logger, err, "") {
		return
	}

	Created(w, CampaignFromDomain(*campaign))
}

// GetCampaign возвращает кампанию по ID.
// GET /api/v1/campaigns/{id}
func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	campaign, err := h.campaignRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	Success(w, CampaignFromDomain(*campaign))
}

// UpdateCampaign обновляет кампанию.
// PUT /api/v1/campaigns/{id}
func (h *Handler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	var req UpdateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	campaign, err := h.campaignRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.Type != nil {
		campaign.Type = *req.Type
	}
	if req.StartDate != nil {
		campaign.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = req.EndDate
	}
	if req.Budget != nil {
		campaign.Budget = req.Budget
	}
	if req.Tags != nil {
		campaign.Tags = *req.Tags
	}

	replacePlatforms := req.Platforms != nil
	if replacePlatforms {
		campaign.Platforms = *req.Platforms
	}

	if err := h.campaignRepo.Update(r.Context(), campaign, replacePlatforms); HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	Success(w, CampaignFromDomain(*campaign))
}

// DeleteCampaign удаляет кампанию вместе с действиями, метриками и платформами.
// DELETE /api/v1/campaigns/{id}
func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	if err := h.campaignRepo.Delete(r.Context(), id); HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	NoContent(w)
}

// campaignEvents — целевой статус → событие машины состояний.
var campaignEvents = map[domain.CampaignStatus]domain.Event{
	domain.CampaignStatusActive:    domain.CampaignEventActivate,
	domain.CampaignStatusPaused:    domain.CampaignEventPause,
	domain.CampaignStatusCompleted: domain.CampaignEventComplete,
	domain.CampaignStatusCancelled: domain.CampaignEventCancel,
}

// SetCampaignStatus меняет статус кампании.
// PUT /api/v1/campaigns/{id}/status
//
// Активация дополнительно ставит задачу campaign.process: захват
// немедленных действий и пересчёт метрик происходят в воркере.
func (h *Handler) SetCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	var req SetCampaignStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	target := domain.CampaignStatus(req.Status)
	event, ok := campaignEvents[target]
	if !ok {
		BadRequest(w, "invalid target status")
		return
	}

	campaign, err := h.campaignRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	next, err := domain.CampaignTransition(campaign.Status, event)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	if next != campaign.Status {
		if err := h.campaignRepo.SetStatus(r.Context(), id, campaign.Status, next); HandleRepoError(w, h.logger, err, "campaign not found") {
			return
		}
		campaign.Status = next

		if next == domain.CampaignStatusActive {
			if _, err := h.dispatcher.Submit(r.Context(), task.KindCampaignProcess, id.String()); err != nil {
				// Статус уже записан; обработку подберёт следующая активация.
				h.logger.Error("failed to submit campaign.process", "campaign_id", id, "error", err)
			}
		}
	}

	Success(w, CampaignFromDomain(*campaign))
}

// ListCampaignActions возвращает действия кампании.
// GET /api/v1/campaigns/{id}/actions
func (h *Handler) ListCampaignActions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	if _, err := h.campaignRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	limit, offset := pagination(r.URL.Query())
	actions, err := h.actionRepo.ListByCampaign(r.Context(), id, limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]CampaignActionResponse, len(actions))
	for i, a := range actions {
		result[i] = CampaignActionFromDomain(a)
	}

	List(w, result, len(result))
}

// CreateCampaignAction создаёт действие кампании.
// POST /api/v1/campaigns/{id}/actions
//
// Действие со scheduled_for подхватит сканер; без него действие
// выполняется при активации кампании или вручную через execute.
func (h *Handler) CreateCampaignAction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	var req CreateCampaignActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Type == "" {
		BadRequest(w, "type is required")
		return
	}
	if req.RecurCron != "" {
		if _, err := cron.ParseStandard(req.RecurCron); err != nil {
			BadRequest(w, "invalid recur_cron expression")
			return
		}
		if req.ScheduledFor == nil {
			BadRequest(w, "recur_cron requires scheduled_for")
			return
		}
	}

	if _, err := h.campaignRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	action := &domain.CampaignAction{
		ID:           uuid.New(),
		CampaignID:   id,
		Type:         req.Type,
		Status:       domain.ActionStatusPending,
		ScheduledFor: req.ScheduledFor,
		RecurCron:    req.RecurCron,
		Platform:     req.Platform,
		Details:      req.Details,
	}

	if err := h.actionRepo.Create(r.Context(), action); HandleRepoError(w, h.logger, err, "") {
		return
	}

	Created(w, CampaignActionFromDomain(*action))
}

// ExecuteCampaignAction запускает действие вручную.
// POST /api/v1/campaigns/{id}/actions/{action_id}/execute
//
// Тот же порядок, что у сканера: захват до отправки задачи.
func (h *Handler) ExecuteCampaignAction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}
	actionID, err := uuid.Parse(r.PathValue("action_id"))
	if err != nil {
		BadRequest(w, "invalid action id")
		return
	}

	action, err := h.actionRepo.GetByID(r.Context(), actionID)
	if HandleRepoError(w, h.logger, err, "action not found") {
		return
	}
	if action.CampaignID != id {
		NotFound(w, "action not found")
		return
	}
	if action.Status != domain.ActionStatusPending {
		InvalidState(w, "action is not pending")
		return
	}

	if err := h.actionRepo.Claim(r.Context(), actionID); HandleRepoError(w, h.logger, err, "action not found") {
		return
	}
	action.Status = domain.ActionStatusInProgress

	handle, err := h.dispatcher.Submit(r.Context(), task.KindCampaignExecuteAction, id.String(), actionID.String())
	if HandleDispatchError(w, h.logger, err) {
		return
	}

	Accepted(w, CampaignActionSubmittedResponse{
		Action: CampaignActionFromDomain(*action),
		Task:   TaskSubmittedFromHandle(handle),
	})
}

// ListCampaignMetrics возвращает метрики кампании.
// GET /api/v1/campaigns/{id}/metrics
func (h *Handler) ListCampaignMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	if _, err := h.campaignRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	metrics, err := h.campaignRepo.ListMetrics(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]CampaignMetricResponse, len(metrics))
	for i, m := range metrics {
		result[i] = CampaignMetricFromDomain(m)
	}

	List(w, result, len(result))
}

// AddCampaignMetric добавляет метрику кампании.
// POST /api/v1/campaigns/{id}/metrics
func (h *Handler) AddCampaignMetric(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	var req AddCampaignMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	metric := &domain.CampaignMetric{
		ID:         uuid.New(),
		CampaignID: id,
		Name:       req.Name,
		Value:      req.Value,
		Target:     req.Target,
		Change:     req.Change,
	}

	if err := h.campaignRepo.AddMetric(r.Context(), metric); HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	Created(w, CampaignMetricFromDomain(*metric))
}

// RefreshCampaignMetrics ставит задачу пересчёта метрик.
// POST /api/v1/campaigns/{id}/metrics/refresh
func (h *Handler) RefreshCampaignMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid campaign id")
		return
	}

	if _, err := h.campaignRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "campaign not found") {
		return
	}

	handle, err := h.dispatcher.Submit(r.Context(), task.KindCampaignRefreshMetrics, id.String())
	if HandleDispatchError(w, h.logger, err) {
		return
	}

	Accepted(w, TaskSubmittedFromHandle(handle))
}
