package api

import (
	"log/slog"

	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	botRepo      *repo.BotRepo
	campaignRepo *repo.CampaignRepo
	actionRepo   *repo.ActionRepo
	contentRepo  *repo.ContentRepo
	dispatcher   *task.Dispatcher
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	BotRepo      *repo.BotRepo
	CampaignRepo *repo.CampaignRepo
	ActionRepo   *repo.ActionRepo
	ContentRepo  *repo.ContentRepo
	Dispatcher   *task.Dispatcher
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		botRepo:      cfg.BotRepo,
		campaignRepo: cfg.CampaignRepo,
		actionRepo:   cfg.ActionRepo,
		contentRepo:  cfg.ContentRepo,
		dispatcher:   cfg.Dispatcher,
		logger:       cfg.Logger,
	}
}
