package service

import (
	"context"
	"time"

	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

// ActivityService writes and reads the audit log.
type ActivityService struct {
	logs repository.ActivityLogRepository
}

// NewActivityService constructs the service.
func NewActivityService(logs repository.ActivityLogRepository) *ActivityService {
	return &ActivityService{logs: logs}
}

// Record stores an event as an audit entry. It is registered as a dispatcher
// handler, so a failure here never reaches the request that caused it.
func (s *ActivityService) Record(ctx context.Context, event events.Event) error {
	return s.logs.Insert(ctx, EntryFromEvent(event))
}

// EntryFromEvent maps a domain event onto an audit entry.
func EntryFromEvent(event events.Event) *domain.ActivityLogEntry {
	return &domain.ActivityLogEntry{
		ID:          event.ID,
		Timestamp:   event.Timestamp,
		Action:      event.Type,
		ActorID:     event.Actor.UserID,
		ActorPseudo: event.Actor.Pseudo,
		TargetType:  event.Target.Type,
		TargetID:    event.Target.ID,
		TargetName:  event.Target.Name,
		Details:     event.Details,
		IPAddress:   event.Actor.IPAddress,
	}
}

// ActivityQuery filters the audit log.
type ActivityQuery struct {
	Actions  []domain.ActivityAction
	ActorID  string
	TargetID string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// List returns audit entries, newest first. Admins only.
func (s *ActivityService) List(ctx context.Context, principal *domain.Principal, query ActivityQuery) ([]domain.ActivityLogEntry, error) {
	if err := auth.Authorize(principal, auth.ActionViewActivityLog); err != nil {
		return nil, err
	}
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return nil, apperrors.NewValidationError("from must not be after to", map[string]any{"field": "from"})
	}
	return s.logs.List(ctx, repository.ActivityLogFilter{
		Actions:  query.Actions,
		ActorID:  query.ActorID,
		TargetID: query.TargetID,
		From:     query.From,
		To:       query.To,
		Page:     repository.Page{Limit: query.Limit, Offset: query.Offset},
	})
}
