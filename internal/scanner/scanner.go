package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
	"github.com/shaiso/Hive/internal/telemetry"
)

const defaultBatchSize = 100

// ActionSource — выборка и захват due-действий.
// Реализуется *repo.ActionRepo.
type ActionSource interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.CampaignAction, error)
	Claim(ctx context.Context, id uuid.UUID) error
}

// Dispatcher — отправка задач на исполнение.
// Реализуется *task.Dispatcher.
type Dispatcher interface {
	Submit(ctx context.Context, kind task.Kind, args ...any) (task.Handle, error)
}

// Scanner — сканер due-действий кампаний.
type Scanner struct {
	actions    ActionSource
	dispatcher Dispatcher
	logger     *slog.Logger
	batchSize  int
	now        func() time.Time
}

// Config — конфигурация Scanner.
type Config struct {
	Actions    ActionSource
	Dispatcher Dispatcher
	Logger     *slog.Logger
	BatchSize  int // количество действий за один тик (default: 100)
}

// New создаёт новый Scanner.
func New(cfg Config) *Scanner {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		actions:    cfg.Actions,
		dispatcher: cfg.Dispatcher,
		logger:     logger,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// Tick выполняет один цикл сканирования.
//
// 1. Находит pending-действия со scheduled_for <= now
// 2. Захватывает каждое (CAS pending → in-progress)
// 3. Отправляет campaign.execute_action
//
// Проигранный claim означает, что действие уже захвачено другим
// экземпляром — пропускается без ошибки. Ошибка отправки одного
// действия не блокирует обработку остальных.
func (s *Scanner) Tick(ctx context.Context) error {
	now := s.now().UTC()

	due, err := s.actions.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due actions: %w", err)
	}

	telemetry.ScannerTicks.Inc()

	if len(due) == 0 {
		return nil
	}

	s.logger.Debug("found due actions", "count", len(due))

	var dispatched, lost int
	for i := range due {
		action := &due[i]

		switch err := s.dispatchAction(ctx, action); {
		case err == nil:
			dispatched++
		case errors.Is(err, repo.ErrRaceLost), errors.Is(err, repo.ErrNotFound):
			lost++
		default:
			s.logger.Error("failed to dispatch action",
				"action_id", action.ID,
				"campaign_id", action.CampaignID,
				"error", err,
			)
		}
	}

	s.logger.Info("scanner tick completed",
		"due", len(due),
		"dispatched", dispatched,
		"race_lost", lost,
	)
	return nil
}

// dispatchAction захватывает действие и отправляет задачу на исполнение.
func (s *Scanner) dispatchAction(ctx context.Context, action *domain.CampaignAction) error {
	if err := s.actions.Claim(ctx, action.ID); err != nil {
		if errors.Is(err, repo.ErrRaceLost) {
			telemetry.ScannerRaceLosses.Inc()
		}
		return err
	}

	telemetry.ScannerClaims.Inc()

	if _, err := s.dispatcher.Submit(ctx, task.KindCampaignExecuteAction,
		action.CampaignID.String(), action.ID.String()); err != nil {
		return fmt.Errorf("submit execute_action: %w", err)
	}

	s.logger.Debug("action dispatched",
		"action_id", action.ID,
		"campaign_id", action.CampaignID,
		"scheduled_for", action.ScheduledFor,
	)
	return nil
}
