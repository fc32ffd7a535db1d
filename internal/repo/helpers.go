package repo

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation — код ошибки Postgres для нарушения уникальности.
const uniqueViolation = "23505"

// isUniqueViolation распознаёт конфликт уникальности (duplicate key).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// nullString возвращает nil для пустой строки.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID разыменовывает указатель для параметров запроса.
func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// nullStrings возвращает nil для пустого среза (для ANY($n)).
func nullStrings(ss []string) any {
	if len(ss) == 0 {
		return nil
	}
	return ss
}
