package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeActionSource — in-memory источник действий с CAS-захватом.
type fakeActionSource struct {
	mu      sync.Mutex
	actions map[uuid.UUID]*domain.CampaignAction
	listErr error
}

func newFakeActionSource(actions ...*domain.CampaignAction) *fakeActionSource {
	s := &fakeActionSource{actions: make(map[uuid.UUID]*domain.CampaignAction)}
	for _, a := range actions {
		s.actions[a.ID] = a
	}
	return s
}

func (s *fakeActionSource) ListDue(_ context.Context, now time.Time, limit int) ([]domain.CampaignAction, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.CampaignAction
	for _, a := range s.actions {
		if a.IsDue(now) && len(due) < limit {
			due = append(due, *a)
		}
	}
	return due, nil
}

func (s *fakeActionSource) Claim(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actions[id]
	if !ok {
		return repo.ErrNotFound
	}
	if a.Status != domain.ActionStatusPending {
		return repo.ErrRaceLost
	}
	a.Status = domain.ActionStatusInProgress
	return nil
}

// fakeDispatcher записывает отправленные задачи.
type fakeDispatcher struct {
	mu        sync.Mutex
	submitted []submittedTask
	err       error
}

type submittedTask struct {
	kind task.Kind
	args []any
}

func (f *fakeDispatcher) Submit(_ context.Context, kind task.Kind, args ...any) (task.Handle, error) {
	if f.err != nil {
		return task.Handle{}, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, submittedTask{kind: kind, args: args})
	return task.Handle{ID: uuid.New().String(), Kind: kind}, nil
}

func dueAction(scheduledFor time.Time) *domain.CampaignAction {
	return &domain.CampaignAction{
		ID:           uuid.New(),
		CampaignID:   uuid.New(),
		Type:         "publish_post",
		Status:       domain.ActionStatusPending,
		ScheduledFor: &scheduledFor,
	}
}

func TestTick(t *testing.T) {
	now := time.Now().UTC()
	due := dueAction(now.Add(-time.Minute))
	future := dueAction(now.Add(time.Hour))

	source := newFakeActionSource(due, future)
	dispatcher := &fakeDispatcher{}
	scan := New(Config{Actions: source, Dispatcher: dispatcher, Logger: discardLogger()})

	if err := scan.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	if due.Status != domain.ActionStatusInProgress {
		t.Errorf("due action status = %s, want in-progress", due.Status)
	}
	if future.Status != domain.ActionStatusPending {
		t.Errorf("future action status = %s, want pending", future.Status)
	}

	if len(dispatcher.submitted) != 1 {
		t.Fatalf("submitted %d tasks, want 1", len(dispatcher.submitted))
	}
	got := dispatcher.submitted[0]
	if got.kind != task.KindCampaignExecuteAction {
		t.Errorf("kind = %s, want campaign.execute_action", got.kind)
	}
	wantArgs := []any{due.CampaignID.String(), due.ID.String()}
	if len(got.args) != 2 || got.args[0] != wantArgs[0] || got.args[1] != wantArgs[1] {
		t.Errorf("args = %v, want %v", got.args, wantArgs)
	}
}

func TestTickEmpty(t *testing.T) {
	source := newFakeActionSource()
	dispatcher := &fakeDispatcher{}
	scan := New(Config{Actions: source, Dispatcher: dispatcher, Logger: discardLogger()})

	if err := scan.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(dispatcher.submitted) != 0 {
		t.Errorf("submitted %d tasks, want 0", len(dispatcher.submitted))
	}
}

func TestTickListError(t *testing.T) {
	source := newFakeActionSource()
	source.listErr = errors.New("db down")
	scan := New(Config{Actions: source, Dispatcher: &fakeDispatcher{}, Logger: discardLogger()})

	if err := scan.Tick(context.Background()); err == nil {
		t.Error("Tick() error = nil, want list error")
	}
}

func TestTickConcurrentClaim(t *testing.T) {
	// Два экземпляра видят одно и то же due-действие:
	// ровно один выигрывает claim и отправляет задачу.
	now := time.Now().UTC()
	due := dueAction(now.Add(-time.Minute))

	source := newFakeActionSource(due)
	dispatcher := &fakeDispatcher{}

	first := New(Config{Actions: source, Dispatcher: dispatcher, Logger: discardLogger()})
	second := New(Config{Actions: source, Dispatcher: dispatcher, Logger: discardLogger()})

	var wg sync.WaitGroup
	for _, scan := range []*Scanner{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := scan.Tick(context.Background()); err != nil {
				t.Errorf("Tick() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if len(dispatcher.submitted) != 1 {
		t.Errorf("submitted %d tasks, want exactly 1", len(dispatcher.submitted))
	}
}

func TestTickDispatchErrorDoesNotBlockOthers(t *testing.T) {
	now := time.Now().UTC()
	first := dueAction(now.Add(-time.Minute))
	second := dueAction(now.Add(-time.Minute))

	source := newFakeActionSource(first, second)
	dispatcher := &fakeDispatcher{err: errors.New("broker down")}
	scan := New(Config{Actions: source, Dispatcher: dispatcher, Logger: discardLogger()})

	// Ошибки отправки логируются, тик завершается без ошибки.
	if err := scan.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	// Оба действия были захвачены до попытки отправки.
	if first.Status != domain.ActionStatusInProgress {
		t.Errorf("first action status = %s, want in-progress", first.Status)
	}
	if second.Status != domain.ActionStatusInProgress {
		t.Errorf("second action status = %s, want in-progress", second.Status)
	}
}

func TestTickBatchLimit(t *testing.T) {
	now := time.Now().UTC()
	var actions []*domain.CampaignAction
	for range 5 {
		actions = append(actions, dueAction(now.Add(-time.Minute)))
	}

	source := newFakeActionSource(actions...)
	dispatcher := &fakeDispatcher{}
	scan := New(Config{Actions: source, Dispatcher: dispatcher, Logger: discardLogger(), BatchSize: 2})

	if err := scan.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(dispatcher.submitted) != 2 {
		t.Errorf("submitted %d tasks, want 2 (batch limit)", len(dispatcher.submitted))
	}
}
