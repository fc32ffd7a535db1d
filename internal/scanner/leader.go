package scanner

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LockConn — выделенная сессия БД, на которой держится advisory lock.
// Реализуется *pgxpool.Conn.
type LockConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Release()
}

// ConnSource выдаёт выделенные соединения из пула.
// Реализуется обёрткой над *pgxpool.Pool.
type ConnSource interface {
	Acquire(ctx context.Context) (LockConn, error)
}

// LeaderLock держит session-scoped advisory lock на выделенном
// соединении. Брать lock через пул нельзя: он остался бы на случайном
// соединении, которое пул может закрыть, молча снимая лидерство.
type LeaderLock struct {
	source ConnSource
	key    int64
	logger *slog.Logger
	conn   LockConn
}

// NewLeaderLock создаёт LeaderLock с ключом key.
func NewLeaderLock(source ConnSource, key int64, logger *slog.Logger) *LeaderLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderLock{source: source, key: key, logger: logger}
}

// Held проверяет лидерство, при необходимости пытаясь его захватить.
//
// Живость сессии проверяется на каждом вызове: если соединение
// умерло, сервер уже снял lock — лидерство сбрасывается и
// захватывается заново на свежем соединении.
func (l *LeaderLock) Held(ctx context.Context) bool {
	if l.conn != nil {
		err := l.conn.Ping(ctx)
		if err == nil {
			return true
		}
		l.logger.Warn("leader session lost", "error", err)
		l.conn.Release()
		l.conn = nil
	}

	conn, err := l.source.Acquire(ctx)
	if err != nil {
		l.logger.Error("acquire lock connection", "error", err)
		return false
	}

	var ok bool
	if err := conn.QueryRow(ctx, "select pg_try_advisory_lock($1)", l.key).Scan(&ok); err != nil {
		l.logger.Error("advisory lock", "error", err)
		conn.Release()
		return false
	}
	if !ok {
		// лидер — другой экземпляр
		conn.Release()
		return false
	}

	l.conn = conn
	return true
}

// Release снимает lock на владеющем соединении и возвращает его в пул.
func (l *LeaderLock) Release() {
	if l.conn == nil {
		return
	}
	if _, err := l.conn.Exec(context.Background(), "select pg_advisory_unlock($1)", l.key); err != nil {
		l.logger.Warn("advisory unlock", "error", err)
	}
	l.conn.Release()
	l.conn = nil
}
