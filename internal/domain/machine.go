package domain

import "fmt"

// Event — событие машины состояний.
type Event string

// События ботов.
const (
	// BotEventStart — запуск бота (idle → running).
	BotEventStart Event = "start"

	// BotEventStop — остановка бота (running → idle).
	BotEventStop Event = "stop"

	// BotEventPause — приостановка бота (running → paused).
	BotEventPause Event = "pause"

	// BotEventResume — возобновление бота (paused → running).
	BotEventResume Event = "resume"

	// BotEventFault — фатальная ошибка (любой статус → error).
	BotEventFault Event = "fault"

	// BotEventReset — сброс из error (error → idle).
	BotEventReset Event = "reset"
)

// События действий кампании.
const (
	// ActionEventClaim — захват действия (pending → in-progress).
	ActionEventClaim Event = "claim"

	// ActionEventSucceed — успешное завершение (in-progress → completed).
	ActionEventSucceed Event = "succeed"

	// ActionEventFail — неудача (in-progress → failed).
	ActionEventFail Event = "fail"
)

// События кампаний.
const (
	// CampaignEventActivate — запуск кампании (draft, paused → active).
	CampaignEventActivate Event = "activate"

	// CampaignEventPause — приостановка (active → paused).
	CampaignEventPause Event = "pause"

	// CampaignEventComplete — завершение (active → completed).
	CampaignEventComplete Event = "complete"

	// CampaignEventCancel — отмена (draft, active, paused → cancelled).
	CampaignEventCancel Event = "cancel"
)

// События генерации контента.
const (
	// ContentEventSucceed — генерация завершена (processing → completed).
	ContentEventSucceed Event = "succeed"

	// ContentEventFail — генерация провалена (processing → error).
	ContentEventFail Event = "fail"
)

// TransitionError — запрошенный переход недопустим для текущего статуса.
// Статус сущности при этом не меняется.
type TransitionError struct {
	Entity  string
	Current string
	Event   Event
}

// Error реализует интерфейс error.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: invalid transition: event %q in status %q", e.Entity, e.Event, e.Current)
}

// BotTransition вычисляет следующий статус бота для события.
//
// Повторные start на уже running боте и stop на уже idle — идемпотентны:
// возвращается текущий статус без ошибки. Вызывающий обязан пропустить
// побочные эффекты (запись BotActivity), когда next == current.
// Это осознанное решение: stale-сообщение из очереди не должно ронять
// обработку и не должно дублировать журнал активности.
func BotTransition(current BotStatus, event Event) (BotStatus, error) {
	// fault допустим из любого статуса
	if event == BotEventFault {
		return BotStatusError, nil
	}

	switch current {
	case BotStatusIdle:
		switch event {
		case BotEventStart:
			return BotStatusRunning, nil
		case BotEventStop:
			return BotStatusIdle, nil // идемпотентный no-op
		}

	case BotStatusRunning:
		switch event {
		case BotEventStop:
			return BotStatusIdle, nil
		case BotEventStart:
			return BotStatusRunning, nil // идемпотентный no-op
		case BotEventPause:
			return BotStatusPaused, nil
		}

	case BotStatusPaused:
		switch event {
		case BotEventResume:
			return BotStatusRunning, nil
		case BotEventStop:
			return BotStatusIdle, nil
		}

	case BotStatusError:
		if event == BotEventReset {
			return BotStatusIdle, nil
		}
	}

	return current, &TransitionError{Entity: "bot", Current: string(current), Event: event}
}

// CampaignTransition вычисляет следующий статус кампании для события.
//
// completed и cancelled — терминальные. Повторный activate на уже
// active кампании — идемпотентный no-op, как start у ботов.
func CampaignTransition(current CampaignStatus, event Event) (CampaignStatus, error) {
	switch current {
	case CampaignStatusDraft:
		switch event {
		case CampaignEventActivate:
			return CampaignStatusActive, nil
		case CampaignEventCancel:
			return CampaignStatusCancelled, nil
		}

	case CampaignStatusActive:
		switch event {
		case CampaignEventActivate:
			return CampaignStatusActive, nil // идемпотентный no-op
		case CampaignEventPause:
			return CampaignStatusPaused, nil
		case CampaignEventComplete:
			return CampaignStatusCompleted, nil
		case CampaignEventCancel:
			return CampaignStatusCancelled, nil
		}

	case CampaignStatusPaused:
		switch event {
		case CampaignEventActivate:
			return CampaignStatusActive, nil
		case CampaignEventCancel:
			return CampaignStatusCancelled, nil
		}
	}

	return current, &TransitionError{Entity: "campaign", Current: string(current), Event: event}
}

// ActionTransition вычисляет следующий статус действия кампании.
//
// failed и completed — терминальные: никакое событие из них не выводит.
func ActionTransition(current ActionStatus, event Event) (ActionStatus, error) {
	switch current {
	case ActionStatusPending:
		if event == ActionEventClaim {
			return ActionStatusInProgress, nil
		}

	case ActionStatusInProgress:
		switch event {
		case ActionEventSucceed:
			return ActionStatusCompleted, nil
		case ActionEventFail:
			return ActionStatusFailed, nil
		}
	}

	return current, &TransitionError{Entity: "campaign action", Current: string(current), Event: event}
}

// ContentTransition вычисляет следующий статус генерации контента.
func ContentTransition(current ContentStatus, event Event) (ContentStatus, error) {
	if current == ContentStatusProcessing {
		switch event {
		case ContentEventSucceed:
			return ContentStatusCompleted, nil
		case ContentEventFail:
			return ContentStatusError, nil
		}
	}

	return current, &TransitionError{Entity: "content", Current: string(current), Event: event}
}
