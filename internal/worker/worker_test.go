package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Hive/internal/domain"
	"github.com/shaiso/Hive/internal/mq"
	"github.com/shaiso/Hive/internal/repo"
	"github.com/shaiso/Hive/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubHandler считает вызовы Execute и Fail.
type stubHandler struct {
	execErr   error
	execCalls int
	failCalls int
	failCause error
}

func (s *stubHandler) Execute(_ context.Context, _ []any) error {
	s.execCalls++
	return s.execErr
}

func (s *stubHandler) Fail(_ context.Context, _ []any, cause error) error {
	s.failCalls++
	s.failCause = cause
	return nil
}

// fakeRetryPublisher записывает retry-публикации.
type fakeRetryPublisher struct {
	published []retryPublish
	err       error
}

type retryPublish struct {
	queue mq.Queue
	msg   mq.Message
	delay time.Duration
}

func (f *fakeRetryPublisher) PublishRetry(_ context.Context, queue mq.Queue, msg *mq.Message, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, retryPublish{queue: queue, msg: *msg, delay: delay})
	return nil
}

func newTestWorker(handler Handler, pub RetryPublisher) *Worker {
	registry := NewRegistry()
	for _, kind := range task.Catalog() {
		registry.Register(kind, handler)
	}
	return New(Config{
		Registry:  registry,
		Publisher: pub,
		Logger:    discardLogger(),
	})
}

func delivery(kind task.Kind, attempt int, args ...any) *mq.Delivery {
	return &mq.Delivery{
		Message: mq.Message{
			ID:         uuid.New().String(),
			Kind:       string(kind),
			Args:       args,
			Attempt:    attempt,
			EnqueuedAt: time.Now().UTC(),
		},
	}
}

func TestHandleSuccess(t *testing.T) {
	handler := &stubHandler{}
	pub := &fakeRetryPublisher{}
	w := newTestWorker(handler, pub)

	if err := w.handle(context.Background(), delivery(task.KindBotStart, 1, uuid.New().String())); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	if handler.execCalls != 1 {
		t.Errorf("execCalls = %d, want 1", handler.execCalls)
	}
	if handler.failCalls != 0 {
		t.Errorf("failCalls = %d, want 0", handler.failCalls)
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d retries, want 0", len(pub.published))
	}
}

func TestHandleRetryable(t *testing.T) {
	handler := &stubHandler{execErr: errors.New("platform unavailable")}
	pub := &fakeRetryPublisher{}
	w := newTestWorker(handler, pub)

	if err := w.handle(context.Background(), delivery(task.KindCampaignExecuteAction, 1, uuid.New().String(), uuid.New().String())); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	if handler.failCalls != 0 {
		t.Errorf("failCalls = %d, want 0", handler.failCalls)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d retries, want 1", len(pub.published))
	}

	got := pub.published[0]
	if got.queue != mq.QueueCampaigns {
		t.Errorf("retry queue = %s, want %s", got.queue, mq.QueueCampaigns)
	}
	if got.msg.Attempt != 2 {
		t.Errorf("retry attempt = %d, want 2", got.msg.Attempt)
	}
	if got.delay != 60*time.Second {
		t.Errorf("retry delay = %v, want 60s", got.delay)
	}
}

func TestHandleMaintenanceRetryDelay(t *testing.T) {
	handler := &stubHandler{execErr: errors.New("db timeout")}
	pub := &fakeRetryPublisher{}
	w := newTestWorker(handler, pub)

	if err := w.handle(context.Background(), delivery(task.KindBotHealthCheck, 1, uuid.New().String())); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d retries, want 1", len(pub.published))
	}
	if got := pub.published[0].delay; got != 300*time.Second {
		t.Errorf("retry delay = %v, want 300s", got)
	}
}

func TestHandleRetryExhausted(t *testing.T) {
	handler := &stubHandler{execErr: errors.New("still broken")}
	pub := &fakeRetryPublisher{}
	w := newTestWorker(handler, pub)

	// Последняя попытка: вместо retry — ровно один Fail.
	if err := w.handle(context.Background(), delivery(task.KindBotStart, task.MaxRetries, uuid.New().String())); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	if len(pub.published) != 0 {
		t.Errorf("published %d retries, want 0", len(pub.published))
	}
	if handler.failCalls != 1 {
		t.Errorf("failCalls = %d, want 1", handler.failCalls)
	}
	if !errors.Is(handler.failCause, ErrRetryExhausted) {
		t.Errorf("failCause = %v, want ErrRetryExhausted", handler.failCause)
	}
}

func TestHandleFatal(t *testing.T) {
	handler := &stubHandler{execErr: repo.ErrNotFound}
	pub := &fakeRetryPublisher{}
	w := newTestWorker(handler, pub)

	if err := w.handle(context.Background(), delivery(task.KindBotStart, 1, uuid.New().String())); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	// Сущности нет — retry бессмыслен даже на первой попытке.
	if len(pub.published) != 0 {
		t.Errorf("published %d retries, want 0", len(pub.published))
	}
	if handler.failCalls != 1 {
		t.Errorf("failCalls = %d, want 1", handler.failCalls)
	}
}

func TestHandleBenign(t *testing.T) {
	handler := &stubHandler{execErr: repo.ErrRaceLost}
	pub := &fakeRetryPublisher{}
	w := newTestWorker(handler, pub)

	if err := w.handle(context.Background(), delivery(task.KindContentGenerateText, 1, uuid.New().String())); err != nil {
		t.Fatalf("handle() error = %v", err)
	}

	if len(pub.published) != 0 {
		t.Errorf("published %d retries, want 0", len(pub.published))
	}
	if handler.failCalls != 0 {
		t.Errorf("failCalls = %d, want 0", handler.failCalls)
	}
}

func TestHandleRetryPublishFails(t *testing.T) {
	handler := &stubHandler{execErr: errors.New("flaky")}
	pub := &fakeRetryPublisher{err: errors.New("broker down")}
	w := newTestWorker(handler, pub)

	// Ошибка публикации retry уходит наверх: сообщение вернётся в очередь.
	if err := w.handle(context.Background(), delivery(task.KindBotStart, 1, uuid.New().String())); err == nil {
		t.Error("handle() error = nil, want publish error")
	}
	if handler.failCalls != 0 {
		t.Errorf("failCalls = %d, want 0", handler.failCalls)
	}
}

func TestRegistryValidate(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Validate(); !errors.Is(err, ErrMissingHandler) {
		t.Errorf("Validate() on empty registry = %v, want ErrMissingHandler", err)
	}

	handler := &stubHandler{}
	for _, kind := range task.Catalog() {
		registry.Register(kind, handler)
	}
	if err := registry.Validate(); err != nil {
		t.Errorf("Validate() on full registry = %v", err)
	}
}

func TestArgUUID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		args    []any
		wantErr bool
	}{
		{"valid", []any{id.String()}, false},
		{"missing", []any{}, true},
		{"not a string", []any{42}, true},
		{"not a uuid", []any{"hello"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := argUUID(tt.args, 0)
			if tt.wantErr {
				if !errors.Is(err, ErrBadArgs) {
					t.Errorf("argUUID() error = %v, want ErrBadArgs", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("argUUID() error = %v", err)
			}
			if got != id {
				t.Errorf("argUUID() = %s, want %s", got, id)
			}
		})
	}
}

func TestAssessHealth(t *testing.T) {
	now := time.Now().UTC()
	recent := now.Add(-5 * time.Minute)
	stale := now.Add(-2 * time.Hour)

	tests := []struct {
		name string
		bot  domain.Bot
		want domain.BotHealth
	}{
		{
			"running and active",
			domain.Bot{Status: domain.BotStatusRunning, LastActive: &recent},
			domain.BotHealthHealthy,
		},
		{
			"running but stale",
			domain.Bot{Status: domain.BotStatusRunning, LastActive: &stale},
			domain.BotHealthWarning,
		},
		{
			"running without activity",
			domain.Bot{Status: domain.BotStatusRunning},
			domain.BotHealthWarning,
		},
		{
			"running with broken proxy",
			domain.Bot{Status: domain.BotStatusRunning, ProxyStatus: domain.ProxyStatusError, LastActive: &recent},
			domain.BotHealthCritical,
		},
		{
			"error status",
			domain.Bot{Status: domain.BotStatusError},
			domain.BotHealthCritical,
		},
		{
			"paused",
			domain.Bot{Status: domain.BotStatusPaused},
			domain.BotHealthWarning,
		},
		{
			"idle",
			domain.Bot{Status: domain.BotStatusIdle},
			domain.BotHealthUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assessHealth(&tt.bot, now); got != tt.want {
				t.Errorf("assessHealth() = %s, want %s", got, tt.want)
			}
		})
	}
}
