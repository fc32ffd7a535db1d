package domain

import (
	"errors"
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func TestBotTransition_ValidPairs(t *testing.T) {
	tests := []struct {
		name    string
		current BotStatus
		event   Event
		want    BotStatus
	}{
		{"start from idle", BotStatusIdle, BotEventStart, BotStatusRunning},
		{"stop from running", BotStatusRunning, BotEventStop, BotStatusIdle},
		{"pause from running", BotStatusRunning, BotEventPause, BotStatusPaused},
		{"resume from paused", BotStatusPaused, BotEventResume, BotStatusRunning},
		{"stop from paused", BotStatusPaused, BotEventStop, BotStatusIdle},
		{"reset from error", BotStatusError, BotEventReset, BotStatusIdle},
		{"fault from idle", BotStatusIdle, BotEventFault, BotStatusError},
		{"fault from running", BotStatusRunning, BotEventFault, BotStatusError},
		{"fault from paused", BotStatusPaused, BotEventFault, BotStatusError},
		{"fault from error", BotStatusError, BotEventFault, BotStatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BotTransition(tt.current, tt.event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBotTransition_Idempotent(t *testing.T) {
	// start на уже running и stop на уже idle — no-op, не ошибка
	got, err := BotTransition(BotStatusRunning, BotEventStart)
	if err != nil {
		t.Fatalf("start on running should be a no-op, got error: %v", err)
	}
	if got != BotStatusRunning {
		t.Errorf("got %q, want running", got)
	}

	got, err = BotTransition(BotStatusIdle, BotEventStop)
	if err != nil {
		t.Fatalf("stop on idle should be a no-op, got error: %v", err)
	}
	if got != BotStatusIdle {
		t.Errorf("got %q, want idle", got)
	}
}

func TestBotTransition_InvalidPairs(t *testing.T) {
	tests := []struct {
		name    string
		current BotStatus
		event   Event
	}{
		{"reset from idle", BotStatusIdle, BotEventReset},
		{"reset from running", BotStatusRunning, BotEventReset},
		{"start from error", BotStatusError, BotEventStart},
		{"stop from error", BotStatusError, BotEventStop},
		{"pause from idle", BotStatusIdle, BotEventPause},
		{"resume from running", BotStatusRunning, BotEventResume},
		{"unknown event", BotStatusIdle, Event("explode")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BotTransition(tt.current, tt.event)
			if err == nil {
				t.Fatal("expected TransitionError")
			}
			var terr *TransitionError
			if !errors.As(err, &terr) {
				t.Fatalf("expected *TransitionError, got %T", err)
			}
			// статус не меняется при невалидном переходе
			if got != tt.current {
				t.Errorf("status changed on invalid transition: got %q, want %q", got, tt.current)
			}
		})
	}
}

func TestActionTransition(t *testing.T) {
	tests := []struct {
		name    string
		current ActionStatus
		event   Event
		want    ActionStatus
		wantErr bool
	}{
		{"claim pending", ActionStatusPending, ActionEventClaim, ActionStatusInProgress, false},
		{"succeed in-progress", ActionStatusInProgress, ActionEventSucceed, ActionStatusCompleted, false},
		{"fail in-progress", ActionStatusInProgress, ActionEventFail, ActionStatusFailed, false},
		{"claim in-progress", ActionStatusInProgress, ActionEventClaim, ActionStatusInProgress, true},
		{"claim completed", ActionStatusCompleted, ActionEventClaim, ActionStatusCompleted, true},
		{"claim failed", ActionStatusFailed, ActionEventClaim, ActionStatusFailed, true},
		{"succeed pending", ActionStatusPending, ActionEventSucceed, ActionStatusPending, true},
		{"fail completed", ActionStatusCompleted, ActionEventFail, ActionStatusCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ActionTransition(tt.current, tt.event)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if got != tt.current {
					t.Errorf("status changed on invalid transition: got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCampaignTransition(t *testing.T) {
	tests := []struct {
		name    string
		current CampaignStatus
		event   Event
		want    CampaignStatus
		wantErr bool
	}{
		{"activate draft", CampaignStatusDraft, CampaignEventActivate, CampaignStatusActive, false},
		{"activate paused", CampaignStatusPaused, CampaignEventActivate, CampaignStatusActive, false},
		{"activate active", CampaignStatusActive, CampaignEventActivate, CampaignStatusActive, false},
		{"pause active", CampaignStatusActive, CampaignEventPause, CampaignStatusPaused, false},
		{"complete active", CampaignStatusActive, CampaignEventComplete, CampaignStatusCompleted, false},
		{"cancel draft", CampaignStatusDraft, CampaignEventCancel, CampaignStatusCancelled, false},
		{"cancel active", CampaignStatusActive, CampaignEventCancel, CampaignStatusCancelled, false},
		{"cancel paused", CampaignStatusPaused, CampaignEventCancel, CampaignStatusCancelled, false},
		{"pause draft", CampaignStatusDraft, CampaignEventPause, CampaignStatusDraft, true},
		{"complete paused", CampaignStatusPaused, CampaignEventComplete, CampaignStatusPaused, true},
		{"activate completed", CampaignStatusCompleted, CampaignEventActivate, CampaignStatusCompleted, true},
		{"cancel cancelled", CampaignStatusCancelled, CampaignEventCancel, CampaignStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CampaignTransition(tt.current, tt.event)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if got != tt.current {
					t.Errorf("status changed on invalid transition: got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentTransition(t *testing.T) {
	tests := []struct {
		name    string
		current ContentStatus
		event   Event
		want    ContentStatus
		wantErr bool
	}{
		{"succeed processing", ContentStatusProcessing, ContentEventSucceed, ContentStatusCompleted, false},
		{"fail processing", ContentStatusProcessing, ContentEventFail, ContentStatusError, false},
		{"succeed completed", ContentStatusCompleted, ContentEventSucceed, ContentStatusCompleted, true},
		{"fail completed", ContentStatusCompleted, ContentEventFail, ContentStatusCompleted, true},
		{"succeed error", ContentStatusError, ContentEventSucceed, ContentStatusError, true},
		{"fail error", ContentStatusError, ContentEventFail, ContentStatusError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContentTransition(tt.current, tt.event)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if got != tt.current {
					t.Errorf("status changed on invalid transition: got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionStatus_IsTerminal(t *testing.T) {
	if !ActionStatusCompleted.IsTerminal() || !ActionStatusFailed.IsTerminal() {
		t.Error("completed and failed should be terminal")
	}
	if ActionStatusPending.IsTerminal() || ActionStatusInProgress.IsTerminal() {
		t.Error("pending and in-progress should not be terminal")
	}
}

func TestCampaignAction_IsDue(t *testing.T) {
	now := mustTime(t, "2025-06-01T12:00:00Z")
	past := mustTime(t, "2025-06-01T11:59:59Z")
	future := mustTime(t, "2025-06-01T12:00:01Z")

	tests := []struct {
		name   string
		action CampaignAction
		want   bool
	}{
		{"pending and due", CampaignAction{Status: ActionStatusPending, ScheduledFor: &past}, true},
		{"pending exactly now", CampaignAction{Status: ActionStatusPending, ScheduledFor: &now}, true},
		{"pending in future", CampaignAction{Status: ActionStatusPending, ScheduledFor: &future}, false},
		{"pending unscheduled", CampaignAction{Status: ActionStatusPending}, false},
		{"in-progress and due", CampaignAction{Status: ActionStatusInProgress, ScheduledFor: &past}, false},
		{"completed and due", CampaignAction{Status: ActionStatusCompleted, ScheduledFor: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.IsDue(now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}
