package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shaiso/Hive/internal/mq"
)

// fakePublisher записывает публикации вместо отправки в брокер.
type fakePublisher struct {
	published []publishedTask
	err       error
}

type publishedTask struct {
	queue mq.Queue
	msg   mq.Message
}

func (f *fakePublisher) PublishTask(_ context.Context, queue mq.Queue, msg *mq.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedTask{queue: queue, msg: *msg})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmit(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, discardLogger())

	botID := "2a0b7a3e-0000-4000-8000-000000000001"
	handle, err := d.Submit(context.Background(), KindBotStart, botID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if handle.Kind != KindBotStart {
		t.Errorf("handle.Kind = %s, want %s", handle.Kind, KindBotStart)
	}
	if handle.Queue != mq.QueueBots {
		t.Errorf("handle.Queue = %s, want %s", handle.Queue, mq.QueueBots)
	}
	if handle.ID == "" {
		t.Error("handle.ID is empty")
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	got := pub.published[0]
	if got.queue != mq.QueueBots {
		t.Errorf("queue = %s, want %s", got.queue, mq.QueueBots)
	}
	if got.msg.Kind != string(KindBotStart) {
		t.Errorf("msg.Kind = %s, want %s", got.msg.Kind, KindBotStart)
	}
	if got.msg.Attempt != 1 {
		t.Errorf("msg.Attempt = %d, want 1", got.msg.Attempt)
	}
	if len(got.msg.Args) != 1 || got.msg.Args[0] != botID {
		t.Errorf("msg.Args = %v, want [%s]", got.msg.Args, botID)
	}
	if got.msg.EnqueuedAt.IsZero() {
		t.Error("msg.EnqueuedAt is zero")
	}
}

func TestSubmitUniqueIDs(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, discardLogger())

	h1, err := d.Submit(context.Background(), KindContentGenerateText, "id-1")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	h2, err := d.Submit(context.Background(), KindContentGenerateText, "id-1")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if h1.ID == h2.ID {
		t.Errorf("handle IDs collide: %s", h1.ID)
	}
}

func TestSubmitUnknownKind(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, discardLogger())

	_, err := d.Submit(context.Background(), Kind("bot.teleport"), "id")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Submit() error = %v, want ErrUnknownKind", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d messages, want 0", len(pub.published))
	}
}

func TestSubmitBrokerDown(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	d := NewDispatcher(pub, discardLogger())

	_, err := d.Submit(context.Background(), KindCampaignProcess, "id")
	if !errors.Is(err, ErrDispatch) {
		t.Errorf("Submit() error = %v, want ErrDispatch", err)
	}
}
