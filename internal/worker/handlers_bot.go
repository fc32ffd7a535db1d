package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/repo"
)

// BotStartHandler выполняет bot.start: переводит бота в running.
// Args: [bot_id].
type BotStartHandler struct {
	bots   BotStore
	logger *slog.Logger
}

// NewBotStartHandler создаёт обработчик bot.start.
func NewBotStartHandler(bots BotStore, logger *slog.Logger) *BotStartHandler {
	return &BotStartHandler{bots: bots, logger: logger}
}

func (h *BotStartHandler) Execute(ctx context.Context, args []any) error {
	return applyBotEvent(ctx, h.bots, h.logger, args, domain.BotEventStart)
}

func (h *BotStartHandler) Fail(ctx context.Context, args []any, cause error) error {
	return faultBot(ctx, h.bots, args)
}

// BotStopHandler выполняет bot.stop: переводит бота в idle.
// Args: [bot_id].
type BotStopHandler struct {
	bots   BotStore
	logger *slog.Logger
}

// NewBotStopHandler создаёт обработчик bot.stop.
func NewBotStopHandler(bots BotStore, logger *slog.Logger) *BotStopHandler {
	return &BotStopHandler{bots: bots, logger: logger}
}

func (h *BotStopHandler) Execute(ctx context.Context, args []any) error {
	return applyBotEvent(ctx, h.bots, h.logger, args, domain.BotEventStop)
}

func (h *BotStopHandler) Fail(ctx context.Context, args []any, cause error) error {
	return faultBot(ctx, h.bots, args)
}

// applyBotEvent применяет событие машины состояний к боту.
//
// Идемпотентный переход (start на уже running, stop на уже idle)
// завершается без побочных эффектов. Невозможный переход и
// проигранная гонка CAS — benign: дубликат доставки не должен
// трогать бота, ушедшего дальше по жизненному циклу.
func applyBotEvent(ctx context.Context, bots BotStore, logger *slog.Logger, args []any, event domain.Event) error {
	id, err := argUUID(args, 0)
	if err != nil {
		return err
	}

	bot, err := bots.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get bot: %w", err)
	}

	next, err := domain.BotTransition(bot.Status, event)
	if err != nil {
		return err
	}

	if next == bot.Status {
		logger.Debug("bot already in target status", "bot_id", id, "status", bot.Status)
		return nil
	}

	if err := bots.SetStatus(ctx, id, bot.Status, next); err != nil {
		return fmt.Errorf("set bot status: %w", err)
	}
	return nil
}

// faultBot переводит бота в error. Используется как Fail ровно для
// задач жизненного цикла: провал запуска или остановки оставляет
// бота в состоянии, требующем вмешательства.
func faultBot(ctx context.Context, bots BotStore, args []any) error {
	id, err := argUUID(args, 0)
	if err != nil {
		return err
	}

	bot, err := bots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}

	next, err := domain.BotTransition(bot.Status, domain.BotEventFault)
	if err != nil || next == bot.Status {
		return nil
	}

	if err := bots.SetStatus(ctx, id, bot.Status, next); err != nil {
		if errors.Is(err, repo.ErrRaceLost) || errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// BotExecuteActionHandler выполняет bot.execute_action.
// Args: [bot_id, action_id].
//
// Действие выполняется только у running бота; в остальных статусах
// задача возвращается на retry (бот может быть в процессе запуска).
type BotExecuteActionHandler struct {
	bots   BotStore
	logger *slog.Logger
}

// NewBotExecuteActionHandler создаёт обработчик bot.execute_action.
func NewBotExecuteActionHandler(bots BotStore, logger *slog.Logger) *BotExecuteActionHandler {
	return &BotExecuteActionHandler{bots: bots, logger: logger}
}

func (h *BotExecuteActionHandler) Execute(ctx context.Context, args []any) error {
	botID, err := argUUID(args, 0)
	if err != nil {
		return err
	}
	actionID, err := argUUID(args, 1)
	if err != nil {
		return err
	}

	bot, err := h.bots.GetByID(ctx, botID)
	if err != nil {
		return fmt.Errorf("get bot: %w", err)
	}

	if bot.Status != domain.BotStatusRunning {
		return fmt.Errorf("%w: bot %s is %s", ErrBotNotRunning, botID, bot.Status)
	}

	// Выполнение действия на внешней платформе здесь симулируется:
	// интеграции с платформами подключаются отдельными клиентами.
	if err := h.bots.FinishAction(ctx, actionID, domain.ActionStatusCompleted); err != nil {
		return fmt.Errorf("finish action: %w", err)
	}

	h.logger.Info("bot action executed", "bot_id", botID, "action_id", actionID)
	return nil
}

func (h *BotExecuteActionHandler) Fail(ctx context.Context, args []any, cause error) error {
	actionID, err := argUUID(args, 1)
	if err != nil {
		return err
	}

	if err := h.bots.FinishAction(ctx, actionID, domain.ActionStatusFailed); err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrRaceLost) {
			return nil
		}
		return err
	}
	return nil
}

// BotHealthCheckHandler выполняет bot.health_check.
// Args: [bot_id].
type BotHealthCheckHandler struct {
	bots   BotStore
	logger *slog.Logger
	now    func() time.Time
}

// NewBotHealthCheckHandler создаёт обработчик bot.health_check.
func NewBotHealthCheckHandler(bots BotStore, logger *slog.Logger) *BotHealthCheckHandler {
	return &BotHealthCheckHandler{bots: bots, logger: logger, now: time.Now}
}

// staleActivity — порог давности активности running бота,
// после которого здоровье деградирует до warning.
const staleActivity = 30 * time.Minute

func (h *BotHealthCheckHandler) Execute(ctx context.Context, args []any) error {
	id, err := argUUID(args, 0)
	if err != nil {
		return err
	}

	bot, err := h.bots.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get bot: %w", err)
	}

	health := assessHealth(bot, h.now())
	if health == bot.Health {
		return nil
	}

	if err := h.bots.SetHealth(ctx, id, health); err != nil {
		return fmt.Errorf("set bot health: %w", err)
	}

	h.logger.Info("bot health updated", "bot_id", id, "health", health)
	return nil
}

// Fail сбрасывает здоровье в unknown: проверка не удалась,
// актуальное состояние неизвестно.
func (h *BotHealthCheckHandler) Fail(ctx context.Context, args []any, cause error) error {
	id, err := argUUID(args, 0)
	if err != nil {
		return err
	}

	if err := h.bots.SetHealth(ctx, id, domain.BotHealthUnknown); err != nil {
		if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrRaceLost) {
			return nil
		}
		return err
	}
	return nil
}

// assessHealth вычисляет здоровье бота по его статусу и давности
// активности.
func assessHealth(bot *domain.Bot, now time.Time) domain.BotHealth {
	switch bot.Status {
	case domain.BotStatusError:
		return domain.BotHealthCritical
	case domain.BotStatusRunning:
		if bot.ProxyStatus == domain.ProxyStatusError {
			return domain.BotHealthCritical
		}
		if bot.LastActive == nil || now.Sub(*bot.LastActive) > staleActivity {
			return domain.BotHealthWarning
		}
		return domain.BotHealthHealthy
	case domain.BotStatusPaused:
		return domain.BotHealthWarning
	default:
		return domain.BotHealthUnknown
	}
}
