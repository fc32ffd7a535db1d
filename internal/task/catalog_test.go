package task

import (
	"errors"
	"testing"
	"time"

	"github.com/shaiso/Hive/internal/mq"
)

func TestKindQueue(t *testing.T) {
	tests := []struct {
		kind Kind
		want mq.Queue
	}{
		{KindBotStart, mq.QueueBots},
		{KindBotStop, mq.QueueBots},
		{KindBotExecuteAction, mq.QueueBots},
		{KindBotHealthCheck, mq.QueueBots},
		{KindCampaignProcess, mq.QueueCampaigns},
		{KindCampaignExecuteAction, mq.QueueCampaigns},
		{KindCampaignRefreshMetrics, mq.QueueCampaigns},
		{KindContentGenerateText, mq.QueueContent},
		{KindContentGenerateImage, mq.QueueContent},
		{KindContentGenerateAudio, mq.QueueContent},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, err := tt.kind.Queue()
			if err != nil {
				t.Fatalf("Queue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Queue() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestKindQueueUnknown(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{"no prefix", Kind("start")},
		{"unknown prefix", Kind("proxy.rotate")},
		{"empty", Kind("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.kind.Queue()
			if !errors.Is(err, ErrUnknownKind) {
				t.Errorf("Queue() error = %v, want ErrUnknownKind", err)
			}
		})
	}
}

func TestCatalogRoutable(t *testing.T) {
	// Каждый вид из каталога обязан иметь очередь.
	for _, kind := range Catalog() {
		if _, err := kind.Queue(); err != nil {
			t.Errorf("Queue(%s) error = %v", kind, err)
		}
		if !kind.Valid() {
			t.Errorf("Valid(%s) = false", kind)
		}
	}
}

func TestKindValid(t *testing.T) {
	if Kind("bot.selfdestruct").Valid() {
		t.Error("Valid() = true for kind outside catalog")
	}
}

func TestRetryCountdown(t *testing.T) {
	tests := []struct {
		kind Kind
		want time.Duration
	}{
		{KindBotStart, 60 * time.Second},
		{KindCampaignExecuteAction, 60 * time.Second},
		{KindContentGenerateText, 60 * time.Second},
		{KindBotHealthCheck, 300 * time.Second},
		{KindCampaignRefreshMetrics, 300 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.RetryCountdown(); got != tt.want {
				t.Errorf("RetryCountdown() = %v, want %v", got, tt.want)
			}
		})
	}
}
