package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/notify"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

type capturePublisher struct {
	intents []notify.Intent
	err     error
}

func (p *capturePublisher) Publish(_ context.Context, intent notify.Intent) error {
	if p.err != nil {
		return p.err
	}
	p.intents = append(p.intents, intent)
	return nil
}

func TestNotificationService_Intents(t *testing.T) {
	tests := []struct {
		name          string
		event         events.Event
		wantKind      string
		wantRecipient string
		wantReason    string
	}{
		{
			name: "character rejected goes to owner",
			event: events.Event{
				Type:    domain.ActionCharacterRejected,
				Target:  events.Target{Type: domain.TargetCharacter, ID: "c1", Name: "Thorin"},
				Payload: events.CharacterPayload{OwnerID: "owner-1", Reason: "Name breaks the rules."},
			},
			wantKind:      NotifyCharacterRejected,
			wantRecipient: "owner-1",
			wantReason:    "Name breaks the rules.",
		},
		{
			name: "comment approved goes to author",
			event: events.Event{
				Type:    domain.ActionCommentApproved,
				Target:  events.Target{Type: domain.TargetComment, ID: "cm1"},
				Payload: events.CommentPayload{CharacterID: "c1", AuthorID: "author-1"},
			},
			wantKind:      NotifyCommentApproved,
			wantRecipient: "author-1",
		},
		{
			name: "suspension goes to account holder",
			event: events.Event{
				Type:   domain.ActionUserSuspended,
				Target: events.Target{Type: domain.TargetUser, ID: "u1", Name: "bilbo"},
			},
			wantKind:      NotifyAccountSuspended,
			wantRecipient: "u1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := events.NewInMemoryDispatcher(nil)
			publisher := &capturePublisher{}
			NewNotificationService(dispatcher, publisher, nil).RegisterHandlers()

			_ = dispatcher.Publish(context.Background(), tt.event)
			if len(publisher.intents) != 1 {
				t.Fatalf("intents = %d, want 1", len(publisher.intents))
			}
			intent := publisher.intents[0]
			if intent.Kind != tt.wantKind || intent.RecipientID != tt.wantRecipient {
				t.Fatalf("intent = %s/%s, want %s/%s", intent.Kind, intent.RecipientID, tt.wantKind, tt.wantRecipient)
			}
			if intent.Data["reason"] != tt.wantReason {
				t.Fatalf("reason = %q, want %q", intent.Data["reason"], tt.wantReason)
			}
		})
	}
}

func TestNotificationService_IgnoresUnrelatedEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	publisher := &capturePublisher{}
	NewNotificationService(dispatcher, publisher, nil).RegisterHandlers()

	_ = dispatcher.Publish(context.Background(), events.Event{Type: domain.ActionCharacterCreated})
	_ = dispatcher.Publish(context.Background(), events.Event{Type: domain.ActionUserLoggedIn})
	if len(publisher.intents) != 0 {
		t.Fatalf("intents = %d, want 0", len(publisher.intents))
	}
}

func TestNotificationService_PublishFailureStaysInHandler(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, &capturePublisher{err: errors.New("broker down")}, nil).RegisterHandlers()
	err := dispatcher.Publish(context.Background(), events.Event{
		Type:   domain.ActionEmployeeCreated,
		Target: events.Target{ID: "u1"},
	})
	if err != nil {
		t.Fatalf("publish err = %v, want nil", err)
	}
}

type memActivityLogs struct {
	entries []domain.ActivityLogEntry
	filter  repository.ActivityLogFilter
}

func (m *memActivityLogs) Insert(_ context.Context, entry *domain.ActivityLogEntry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memActivityLogs) List(_ context.Context, filter repository.ActivityLogFilter) ([]domain.ActivityLogEntry, error) {
	m.filter = filter
	return m.entries, nil
}

func TestActivityService(t *testing.T) {
	logs := &memActivityLogs{}
	svc := NewActivityService(logs)
	ctx := context.Background()

	event := events.Event{
		ID:        "evt-1",
		Type:      domain.ActionCharacterApproved,
		Actor:     events.Actor{UserID: "mod-1", Pseudo: "moria", IPAddress: "10.0.0.9"},
		Target:    events.Target{Type: domain.TargetCharacter, ID: "c1", Name: "Thorin"},
		Timestamp: testNow,
	}
	if err := svc.Record(ctx, event); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := logs.entries[0]
	if got.Action != domain.ActionCharacterApproved || got.ActorPseudo != "moria" || got.TargetName != "Thorin" || got.IPAddress != "10.0.0.9" {
		t.Fatalf("entry = %+v", got)
	}

	employee := &domain.Principal{UserID: "e1", Role: domain.RoleEmployee}
	if _, err := svc.List(ctx, employee, ActivityQuery{}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("employee list err = %v, want forbidden", err)
	}

	admin := &domain.Principal{UserID: "a1", Role: domain.RoleAdmin}
	from := testNow
	to := testNow.Add(-time.Hour)
	if _, err := svc.List(ctx, admin, ActivityQuery{From: &from, To: &to}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("inverted range err = %v, want validation", err)
	}
	to = testNow.Add(time.Hour)
	entries, err := svc.List(ctx, admin, ActivityQuery{Actions: []domain.ActivityAction{domain.ActionCharacterApproved}, From: &from, To: &to})
	if err != nil || len(entries) != 1 {
		t.Fatalf("list = %v, %v", entries, err)
	}
	if len(logs.filter.Actions) != 1 || logs.filter.From == nil {
		t.Fatalf("filter not forwarded: %+v", logs.filter)
	}
}
