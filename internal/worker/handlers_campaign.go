package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
)

// actionBatch — сколько действий кампании обрабатывается за раз.
const actionBatch = 500

// CampaignProcessHandler выполняет campaign.process: после активации
// кампании захватывает её немедленные действия (без scheduled_for)
// и отправляет их на исполнение, затем ставит пересчёт метрик.
// Args: [campaign_id].
//
// Действия со scheduled_for обрабатывает сканер, здесь они не трогаются.
type CampaignProcessHandler struct {
	campaigns  CampaignStore
	actions    ActionStore
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewCampaignProcessHandler создаёт обработчик campaign.process.
func NewCampaignProcessHandler(campaigns CampaignStore, actions ActionStore, dispatcher Dispatcher, logger *slog.Logger) *CampaignProcessHandler {
	return &CampaignProcessHandler{
		campaigns:  campaigns,
		actions:    actions,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *CampaignProcessHandler) Execute(ctx context.Context, args []any) error {
	id, err := argUUID(args, 0)
	if err != nil {
		return err
	}

	campaign, err := h.campaigns.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get campaign: %w", err)
	}

	// Кампанию успели приостановить или завершить — задача устарела.
	if campaign.Status != domain.CampaignStatusActive {
		h.logger.Debug("campaign is not active, skipping", "campaign_id", id, "status", campaign.Status)
		return nil
	}

	actions, err := h.actions.ListByCampaign(ctx, id, actionBatch, 0)
	if err != nil {
		return fmt.Errorf("list actions: %w", err)
	}

	dispatched := 0
	for i := range actions {
		action := &actions[i]
		if action.Status != domain.ActionStatusPending || action.ScheduledFor != nil {
			continue
		}

		// Claim до dispatch: действие отправляется ровно один раз,
		// даже при конкурентной доставке той же задачи.
		if err := h.actions.Claim(ctx, action.ID); err != nil {
			if errors.Is(err, repo.ErrRaceLost) || errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return fmt.Errorf("claim action: %w", err)
		}

		if _, err := h.dispatcher.Submit(ctx, task.KindCampaignExecuteAction, id.String(), action.ID.String()); err != nil {
			return fmt.Errorf("submit action: %w", err)
		}
		dispatched++
	}

	if _, err := h.dispatcher.Submit(ctx, task.KindCampaignRefreshMetrics, id.String()); err != nil {
		return fmt.Errorf("submit metrics refresh: %w", err)
	}

	h.logger.Info("campaign processed", "campaign_id", id, "dispatched", dispatched)
	return nil
}

func (h *CampaignProcessHandler) Fail(ctx context.Context, args []any, cause error) error {
	// Обработка кампании не имеет собственного терминального состояния:
	// незахваченные действия подхватит следующая активация или сканер.
	return nil
}

// CampaignExecuteActionHandler выполняет campaign.execute_action.
// Args: [campaign_id, action_id].
//
// Действие приходит уже захваченным (in-progress). Повторная доставка
// завершённого действия — no-op. Для повторяющегося действия после
// завершения создаётся следующее pending-действие по RecurCron.
type CampaignExecuteActionHandler struct {
	actions ActionStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewCampaignExecuteActionHandler создаёт обработчик campaign.execute_action.
func NewCampaignExecuteActionHandler(actions ActionStore, logger *slog.Logger) *CampaignExecuteActionHandler {
	return &CampaignExecuteActionHandler{actions: actions, logger: logger, now: time.Now}
}

func (h *CampaignExecuteActionHandler) Execute(ctx context.Context, args []any) error {
	actionID, err := argUUID(args, 1)
	if err != nil {
		return err
	}

	action, err := h.actions.GetByID(ctx, actionID)
	if err != nil {
		return fmt.Errorf("get action: %w", err)
	}

	if action.Status.IsTerminal() {
		h.logger.Debug("action already finished", "action_id", actionID, "status", action.Status)
		return nil
	}

	if action.Status == domain.ActionStatusPending {
		// Ручной запуск в обход сканера: захватываем сами.
		if err := h.actions.Claim(ctx, actionID); err != nil {
			return fmt.Errorf("claim action: %w", err)
		}
	}

	results := executeActionResults(action, h.now())
	if err := h.actions.Complete(ctx, actionID, results); err != nil {
		return fmt.Errorf("complete action: %w", err)
	}

	h.logger.Info("campaign action executed",
		"campaign_id", action.CampaignID,
		"action_id", actionID,
		"type", action.Type,
	)

	if action.RecurCron != "" {
		h.scheduleNext(ctx, action)
	}
	return nil
}

// scheduleNext создаёт следующее вхождение повторяющегося действия.
// Некорректное cron-выражение не проваливает уже завершённое действие.
func (h *CampaignExecuteActionHandler) scheduleNext(ctx context.Context, action *domain.CampaignAction) {
	schedule, err := cron.ParseStandard(action.RecurCron)
	if err != nil {
		h.logger.Warn("invalid recur_cron, recurrence stopped",
			"action_id", action.ID,
			"recur_cron", action.RecurCron,
			"error", err,
		)
		return
	}

	next := action.NextOccurrence(schedule.Next(h.now().UTC()))
	if err := h.actions.Create(ctx, &next); err != nil {
		h.logger.Error("failed to create next occurrence",
			"action_id", action.ID,
			"error", err,
		)
		return
	}

	h.logger.Info("next occurrence scheduled",
		"action_id", action.ID,
		"next_id", next.ID,
		"scheduled_for", next.ScheduledFor,
	)
}

func (h *CampaignExecuteActionHandler) Fail(ctx context.Context, args []any, cause error) error {
	actionID, err := argUUID(args, 1)
	if err != nil {
		return err
	}

	if err := h.actions.Fail(ctx, actionID, cause.Error()); err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrRaceLost) {
			return nil
		}
		return err
	}
	return nil
}

// executeActionResults симулирует выполнение действия на платформе.
// Интеграции с реальными платформами подключаются отдельными клиентами.
func executeActionResults(action *domain.CampaignAction, now time.Time) map[string]any {
	return map[string]any{
		"action_type": action.Type,
		"platform":    action.Platform,
		"executed_at": now.UTC().Format(time.RFC3339),
		"status":      "success",
	}
}

// CampaignRefreshMetricsHandler выполняет campaign.refresh_metrics:
// пересчитывает метрики кампании по её действиям и атомарно заменяет
// набор метрик. Args: [campaign_id].
type CampaignRefreshMetricsHandler struct {
	campaigns CampaignStore
	actions   ActionStore
	logger    *slog.Logger
}

// NewCampaignRefreshMetricsHandler создаёт обработчик campaign.refresh_metrics.
func NewCampaignRefreshMetricsHandler(campaigns CampaignStore, actions ActionStore, logger *slog.Logger) *CampaignRefreshMetricsHandler {
	return &CampaignRefreshMetricsHandler{campaigns: campaigns, actions: actions, logger: logger}
}

func (h *CampaignRefreshMetricsHandler) Execute(ctx context.Context, args []any) error {
	id, err := argUUID(args, 0)
	if err != nil {
		return err
	}

	campaign, err := h.campaigns.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get campaign: %w", err)
	}

	actions, err := h.actions.ListByCampaign(ctx, id, actionBatch, 0)
	if err != nil {
		return fmt.Errorf("list actions: %w", err)
	}

	metrics := computeMetrics(campaign.ID, actions)
	if err := h.campaigns.ReplaceMetrics(ctx, id, metrics); err != nil {
		return fmt.Errorf("replace metrics: %w", err)
	}

	h.logger.Info("campaign metrics refreshed", "campaign_id", id, "metrics", len(metrics))
	return nil
}

func (h *CampaignRefreshMetricsHandler) Fail(ctx context.Context, args []any, cause error) error {
	// Метрики — производные данные; прошлый набор остаётся валидным.
	return nil
}

// Множители симулированных платформенных метрик на одно
// завершённое действие.
const (
	impressionsPerAction = 250
	clicksPerAction      = 40
	conversionsPerAction = 5
)

// computeMetrics строит набор метрик кампании по её действиям.
func computeMetrics(campaignID uuid.UUID, actions []domain.CampaignAction) []domain.CampaignMetric {
	var completed, failed float64
	for i := range actions {
		switch actions[i].Status {
		case domain.ActionStatusCompleted:
			completed++
		case domain.ActionStatusFailed:
			failed++
		}
	}

	metric := func(name string, value float64) domain.CampaignMetric {
		return domain.CampaignMetric{
			ID:         uuid.New(),
			CampaignID: campaignID,
			Name:       name,
			Value:      value,
		}
	}

	return []domain.CampaignMetric{
		metric("actions_total", float64(len(actions))),
		metric("actions_completed", completed),
		metric("actions_failed", failed),
		metric("impressions", completed*impressionsPerAction),
		metric("clicks", completed*clicksPerAction),
		metric("conversions", completed*conversionsPerAction),
	}
}
