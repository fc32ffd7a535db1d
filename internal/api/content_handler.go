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

// ListContent возвращает список контента.
// GET /api/v1/content
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pagination(q)

	filter := repo.ContentFilter{
		Type:   queryList(q, "type"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := q.Get("campaign_id"); raw != "" {
		campaignID, err := uuid.Parse(raw)
		if err != nil {
			BadRequest(w, "invalid campaign_id")
			return
		}
		filter.CampaignID = &campaignID
	}

	contents, err := h.contentRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ContentResponse, len(contents))
	for i, c := range contents {
		result[i] = ContentFromDomain(c)
	}

	List(w, result, len(result))
}

// CreateContent создаёт готовый контент без генерации.
// POST /api/v1/content
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	ctype := domain.ContentType(req.Type)
	if !ctype.Valid() {
		BadRequest(w, "invalid content type")
		return
	}

	now := time.Now().UTC()
	content := &domain.Content{
		ID:          uuid.New(),
		Type:        ctype,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		MediaURL:    req.MediaURL,
		Platform:    req.Platform,
		CampaignID:  req.CampaignID,
		Metadata: domain.ContentMetadata{
			Status:      domain.ContentStatusCompleted,
			GeneratedAt: &now,
		},
		CreatedAt: now,
	}

	if err := h.contentRepo.Create(r.Context(), content); HandleRepoError(w, h.logger, err, "") {
		return
	}

	Created(w, ContentFromDomain(*content))
}

// GetContent возвращает контент по ID.
// GET /api/v1/content/{id}
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid content id")
		return
	}

	content, err := h.contentRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "content not found") {
		return
	}

	Success(w, ContentFromDomain(*content))
}

// DeleteContent удаляет контент.
// DELETE /api/v1/content/{id}
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid content id")
		return
	}

	if err := h.contentRepo.Delete(r.Context(), id); HandleRepoError(w, h.logger, err, "content not found") {
		return
	}

	NoContent(w)
}

// GenerateText ставит задачу генерации текста.
// POST /api/v1/content/generate/text
func (h *Handler) GenerateText(w http.ResponseWriter, r *http.Request) {
	h.submitGeneration(w, r, domain.ContentTypeText, task.KindContentGenerateText)
}

// GenerateImage ставит задачу генерации изображения.
// POST /api/v1/content/generate/image
func (h *Handler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	h.submitGeneration(w, r, domain.ContentTypeImage, task.KindContentGenerateImage)
}

// GenerateAudio ставит задачу генерации аудио.
// POST /api/v1/content/generate/audio
func (h *Handler) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	h.submitGeneration(w, r, domain.ContentTypeAudio, task.KindContentGenerateAudio)
}

// submitGeneration создаёт placeholder в статусе processing и ставит
// задачу генерации. Результат появится в записи после выполнения.
func (h *Handler) submitGeneration(w http.ResponseWriter, r *http.Request, ctype domain.ContentType, kind task.Kind) {
	var req GenerateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.Prompt == "" {
		BadRequest(w, "prompt is required")
		return
	}

	if req.CampaignID != nil {
		if _, err := h.campaignRepo.GetByID(r.Context(), *req.CampaignID); HandleRepoError(w, h.logger, err, "campaign not found") {
			return
		}
	}

	content := domain.NewGenerationPlaceholder(ctype, req.Prompt, req.Platform, req.CampaignID, req.Parameters)
	if err := h.contentRepo.Create(r.Context(), &content); HandleRepoError(w, h.logger, err, "") {
		return
	}

	handle, err := h.dispatcher.Submit(r.Context(), kind, content.ID.String())
	if HandleDispatchError(w, h.logger, err) {
		return
	}

	Accepted(w, GenerationSubmittedResponse{
		Content: ContentFromDomain(content),
		Task:    TaskSubmittedFromHandle(handle),
	})
}
