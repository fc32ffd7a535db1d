package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeLockConn — сессия с управляемым исходом pg_try_advisory_lock.
type fakeLockConn struct {
	lockResult bool
	pingErr    error
	released   bool
	unlocked   bool
}

func (c *fakeLockConn) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return fakeRow{ok: c.lockResult}
}

func (c *fakeLockConn) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	c.unlocked = true
	return pgconn.CommandTag{}, nil
}

func (c *fakeLockConn) Ping(_ context.Context) error { return c.pingErr }

func (c *fakeLockConn) Release() { c.released = true }

type fakeRow struct{ ok bool }

func (r fakeRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = r.ok
	return nil
}

// fakeConnSource выдаёт заранее подготовленные соединения по порядку.
type fakeConnSource struct {
	conns    []*fakeLockConn
	err      error
	acquired int
}

func (s *fakeConnSource) Acquire(_ context.Context) (LockConn, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.acquired >= len(s.conns) {
		return nil, errors.New("no more connections")
	}
	c := s.conns[s.acquired]
	s.acquired++
	return c, nil
}

func TestLeaderLockAcquire(t *testing.T) {
	conn := &fakeLockConn{lockResult: true}
	source := &fakeConnSource{conns: []*fakeLockConn{conn}}
	l := NewLeaderLock(source, 42, discardLogger())

	if !l.Held(context.Background()) {
		t.Fatal("Held() = false, want true")
	}

	// Лидерство держится на том же соединении, новые не берутся.
	if !l.Held(context.Background()) {
		t.Fatal("Held() second call = false, want true")
	}
	if source.acquired != 1 {
		t.Errorf("acquired %d connections, want 1", source.acquired)
	}
	if conn.released {
		t.Error("owning connection must stay checked out")
	}
}

func TestLeaderLockContended(t *testing.T) {
	conn := &fakeLockConn{lockResult: false}
	source := &fakeConnSource{conns: []*fakeLockConn{conn}}
	l := NewLeaderLock(source, 42, discardLogger())

	if l.Held(context.Background()) {
		t.Fatal("Held() = true, want false: lock held elsewhere")
	}
	if !conn.released {
		t.Error("connection without lock must be returned to the pool")
	}
}

// Смерть соединения снимает lock на сервере: лидерство сбрасывается
// и захватывается заново на свежем соединении.
func TestLeaderLockReacquireAfterSessionLoss(t *testing.T) {
	first := &fakeLockConn{lockResult: true}
	second := &fakeLockConn{lockResult: true}
	source := &fakeConnSource{conns: []*fakeLockConn{first, second}}
	l := NewLeaderLock(source, 42, discardLogger())

	if !l.Held(context.Background()) {
		t.Fatal("Held() = false, want true")
	}

	first.pingErr = errors.New("connection closed")
	if !l.Held(context.Background()) {
		t.Fatal("Held() after session loss = false, want reacquired true")
	}
	if !first.released {
		t.Error("dead connection must be released")
	}
	if source.acquired != 2 {
		t.Errorf("acquired %d connections, want 2", source.acquired)
	}
}

// Если после потери сессии lock успел взять другой экземпляр,
// лидерство не возвращается.
func TestLeaderLockLostToAnotherInstance(t *testing.T) {
	first := &fakeLockConn{lockResult: true}
	second := &fakeLockConn{lockResult: false}
	source := &fakeConnSource{conns: []*fakeLockConn{first, second}}
	l := NewLeaderLock(source, 42, discardLogger())

	if !l.Held(context.Background()) {
		t.Fatal("Held() = false, want true")
	}

	first.pingErr = errors.New("connection closed")
	if l.Held(context.Background()) {
		t.Fatal("Held() = true, want false: lock taken elsewhere")
	}
}

func TestLeaderLockRelease(t *testing.T) {
	conn := &fakeLockConn{lockResult: true}
	source := &fakeConnSource{conns: []*fakeLockConn{conn}}
	l := NewLeaderLock(source, 42, discardLogger())

	if !l.Held(context.Background()) {
		t.Fatal("Held() = false, want true")
	}

	l.Release()
	if !conn.unlocked {
		t.Error("unlock must run on the owning connection")
	}
	if !conn.released {
		t.Error("owning connection must be returned to the pool")
	}

	// Повторный Release — no-op.
	l.Release()
}

func TestLeaderLockAcquireError(t *testing.T) {
	source := &fakeConnSource{err: errors.New("pool exhausted")}
	l := NewLeaderLock(source, 42, discardLogger())

	if l.Held(context.Background()) {
		t.Fatal("Held() = true, want false on acquire error")
	}
}
