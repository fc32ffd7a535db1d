package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Bots
	mux.Handle("GET /api/v1/bots", chain(http.HandlerFunc(h.ListBots)))
	mux.Handle("POST /api/v1/bots", chain(http.HandlerFunc(h.CreateBot)))
	mux.Handle("GET /api/v1/bots/{id}", chain(http.HandlerFunc(h.GetBot)))
	mux.Handle("PUT /api/v1/bots/{id}", chain(http.HandlerFunc(h.UpdateBot)))
	mux.Handle("DELETE /api/v1/bots/{id}", chain(http.HandlerFunc(h.DeleteBot)))
	mux.Handle("POST /api/v1/bots/{id}/start", chain(http.HandlerFunc(h.StartBot)))
	mux.Handle("POST /api/v1/bots/{id}/stop", chain(http.HandlerFunc(h.StopBot)))
	mux.Handle("POST /api/v1/bots/{id}/pause", chain(http.HandlerFunc(h.PauseBot)))
	mux.Handle("POST /api/v1/bots/{id}/resume", chain(http.HandlerFunc(h.ResumeBot)))
	mux.Handle("POST /api/v1/bots/{id}/reset", chain(http.HandlerFunc(h.ResetBot)))
	mux.Handle("POST /api/v1/bots/{id}/health-check", chain(http.HandlerFunc(h.CheckBotHealth)))
	mux.Handle("GET /api/v1/bots/{id}/actions", chain(http.HandlerFunc(h.ListBotActions)))
	mux.Handle("POST /api/v1/bots/{id}/actions", chain(http.HandlerFunc(h.CreateBotAction)))
	mux.Handle("GET /api/v1/bots/{id}/activities", chain(http.HandlerFunc(h.ListBotActivities)))

	// Campaigns
	mux.Handle("GET /api/v1/campaigns", chain(http.HandlerFunc(h.ListCampaigns)))
	mux.Handle("POST /api/v1/campaigns", chain(http.HandlerFunc(h.CreateCampaign)))
	mux.Handle("GET /api/v1/campaigns/{id}", chain(http.HandlerFunc(h.GetCampaign)))
	mux.Handle("PUT /api/v1/campaigns/{id}", chain(http.HandlerFunc(h.UpdateCampaign)))
	mux.Handle("DELETE /api/v1/campaigns/{id}", chain(http.HandlerFunc(h.DeleteCampaign)))
	mux.Handle("PUT /api/v1/campaigns/{id}/status", chain(http.HandlerFunc(h.SetCampaignStatus)))
	mux.Handle("GET /api/v1/campaigns/{id}/actions", chain(http.HandlerFunc(h.ListCampaignActions)))
	mux.Handle("POST /api/v1/campaigns/{id}/actions", chain(http.HandlerFunc(h.CreateCampaignAction)))
	mux.Handle("POST /api/v1/campaigns/{id}/actions/{action_id}/execute", chain(http.HandlerFunc(h.ExecuteCampaignAction)))
	mux.Handle("GET /api/v1/campaigns/{id}/metrics", chain(http.HandlerFunc(h.ListCampaignMetrics)))
	mux.Handle("POST /api/v1/campaigns/{id}/metrics", chain(http.HandlerFunc(h.AddCampaignMetric)))
	mux.Handle("POST /api/v1/campaigns/{id}/metrics/refresh", chain(http.HandlerFunc(h.RefreshCampaignMetrics)))

	// Content
	mux.Handle("GET /api/v1/content", chain(http.HandlerFunc(h.ListContent)))
	mux.Handle("POST /api/v1/content", chain(http.HandlerFunc(h.CreateContent)))
	mux.Handle("GET /api/v1/content/{id}", chain(http.HandlerFunc(h.GetContent)))
	mux.Handle("DELETE /api/v1/content/{id}", chain(http.HandlerFunc(h.DeleteContent)))
	mux.Handle("POST /api/v1/content/generate/text", chain(http.HandlerFunc(h.GenerateText)))
	mux.Handle("POST /api/v1/content/generate/image", chain(http.HandlerFunc(h.GenerateImage)))
	mux.Handle("POST /api/v1/content/generate/audio", chain(http.HandlerFunc(h.GenerateAudio)))
}
