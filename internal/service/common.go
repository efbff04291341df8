package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
)

// eventPublisher stamps and publishes domain events. Publication is
// best-effort: it never fails the operation that triggered it.
type eventPublisher struct {
	dispatcher events.Dispatcher
	now        func() time.Time
}

func newEventPublisher(dispatcher events.Dispatcher, now func() time.Time) eventPublisher {
	if now == nil {
		now = time.Now
	}
	return eventPublisher{dispatcher: dispatcher, now: now}
}

func (p eventPublisher) publishEvent(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	_ = p.dispatcher.Publish(ctx, event)
}

func clockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func characterTarget(c *domain.Character) events.Target {
	return events.Target{Type: domain.TargetCharacter, ID: c.ID, Name: c.Name}
}

func commentTarget(c *domain.Comment) events.Target {
	return events.Target{Type: domain.TargetComment, ID: c.ID}
}

func userTarget(u *domain.User) events.Target {
	return events.Target{Type: domain.TargetUser, ID: u.ID, Name: u.Pseudo}
}

func characterPayload(c *domain.Character) events.CharacterPayload {
	payload := events.CharacterPayload{
		OwnerID:  c.OwnerID,
		Status:   c.Status.String(),
		IsShared: c.IsShared,
	}
	if c.RejectionReason != nil {
		payload.Reason = *c.RejectionReason
	}
	return payload
}

func commentPayload(c *domain.Comment) events.CommentPayload {
	payload := events.CommentPayload{
		CharacterID: c.CharacterID,
		AuthorID:    c.AuthorID,
		Rating:      c.Rating,
	}
	if c.RejectionReason != nil {
		payload.Reason = *c.RejectionReason
	}
	return payload
}

func accountPayload(u *domain.User) events.AccountPayload {
	return events.AccountPayload{Email: u.Email, Role: u.Role.String()}
}
