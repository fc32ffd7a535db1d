package worker

import (
	"errors"

	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/repo"
)

// Ошибки воркера.
var (
	// ErrMissingHandler — в реестре нет обработчика для вида задачи
	// из каталога. Обнаруживается валидацией при старте.
	ErrMissingHandler = errors.New("no handler registered for task kind")

	// ErrBadArgs — аргументы сообщения не разбираются. Fatal: повтор
	// с теми же аргументами бессмыслен.
	ErrBadArgs = errors.New("invalid task arguments")

	// ErrBotNotRunning — действие бота требует статуса running.
	// Retryable: бот может быть в процессе запуска.
	ErrBotNotRunning = errors.New("bot is not running")

	// ErrRetryExhausted — все попытки исчерпаны.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)

// isFatal определяет, что повтор задачи бессмыслен: сущность
// отсутствует или аргументы некорректны.
func isFatal(err error) bool {
	return errors.Is(err, repo.ErrNotFound) ||
		errors.Is(err, ErrBadArgs)
}

// isBenign определяет, что работа уже выполнена или выполняется
// другим экземпляром. Сообщение подтверждается без побочных эффектов.
//
// TransitionError при at-least-once доставке означает, что сущность
// уже ушла дальше по жизненному циклу (дубликат bot.start пришёл,
// когда бот давно paused). Переводить её в failure-состояние нельзя —
// дубликат подтверждается молча.
func isBenign(err error) bool {
	var transition *domain.TransitionError
	return errors.Is(err, repo.ErrRaceLost) ||
		errors.As(err, &transition)
}
