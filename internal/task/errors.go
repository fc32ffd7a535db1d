package task

import "errors"

// Ошибки диспетчера.
var (
	// ErrUnknownKind — вид задачи отсутствует в каталоге.
	ErrUnknownKind = errors.New("unknown task kind")

	// ErrDispatch — брокер недоступен при отправке. Возвращается
	// вызывающему синхронно, не проглатывается.
	ErrDispatch = errors.New("dispatch failed")
)
