package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — запись уже существует (конфликт уникальности).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState — операция невозможна в текущем состоянии.
	ErrInvalidState = errors.New("invalid state")

	// ErrRaceLost — compare-and-set не прошёл: другой актор уже
	// изменил статус записи. Для захвата действий сканером это
	// штатная ситуация, не ошибка.
	ErrRaceLost = errors.New("race lost")
)
