package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/repository"
)

// ModerationService drives the review queues for characters and comments.
type ModerationService struct {
	characters repository.CharacterRepository
	comments   repository.CommentRepository
	gallery    galleryPages
	now        func() time.Time
	events     eventPublisher
}

// ModerationDependencies bundles collaborators for the moderation service.
type ModerationDependencies struct {
	CharacterRepo repository.CharacterRepository
	CommentRepo   repository.CommentRepository
	Cache         GalleryCache
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         func() time.Time
}

// NewModerationService constructs the service.
func NewModerationService(deps ModerationDependencies) *ModerationService {
	now := clockOrDefault(deps.Clock)
	return &ModerationService{
		characters: deps.CharacterRepo,
		comments:   deps.CommentRepo,
		gallery:    newGalleryPages(deps.Cache, deps.Logger),
		now:        now,
		events:     newEventPublisher(deps.Dispatcher, now),
	}
}

// PendingCharacters lists characters awaiting review, oldest first.
func (s *ModerationService) PendingCharacters(ctx context.Context, principal *domain.Principal, page repository.Page) ([]domain.Character, error) {
	if err := auth.Authorize(principal, auth.ActionModerate); err != nil {
		return nil, err
	}
	return s.characters.List(ctx, repository.CharacterFilter{
		Statuses: []domain.CharacterStatus{domain.CharacterPending},
		Page:     page,
	})
}

// PendingComments lists comments awaiting review, oldest first.
func (s *ModerationService) PendingComments(ctx context.Context, principal *domain.Principal, page repository.Page) ([]domain.Comment, error) {
	if err := auth.Authorize(principal, auth.ActionModerate); err != nil {
		return nil, err
	}
	return s.comments.List(ctx, repository.CommentFilter{
		Statuses: []domain.CommentStatus{domain.CommentPending},
		Page:     page,
	})
}

// ApproveCharacter accepts a pending character.
func (s *ModerationService) ApproveCharacter(ctx context.Context, principal *domain.Principal, id string) (*domain.Character, error) {
	return s.reviewCharacter(ctx, principal, id, domain.ActionCharacterApproved, func(c *domain.Character) error {
		return c.Approve(principal.UserID, s.now())
	})
}

// RejectCharacter refuses a pending character with a reason for its owner.
func (s *ModerationService) RejectCharacter(ctx context.Context, principal *domain.Principal, id, reason string) (*domain.Character, error) {
	return s.reviewCharacter(ctx, principal, id, domain.ActionCharacterRejected, func(c *domain.Character) error {
		return c.Reject(reason, principal.UserID, s.now())
	})
}

func (s *ModerationService) reviewCharacter(ctx context.Context, principal *domain.Principal, id string, action domain.ActivityAction, transition func(*domain.Character) error) (*domain.Character, error) {
	if err := auth.Authorize(principal, auth.ActionModerate); err != nil {
		return nil, err
	}
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := character.Status
	if err := transition(character); err != nil {
		return nil, err
	}
	if err := s.characters.Update(ctx, character, expected); err != nil {
		return nil, err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:    action,
		Actor:   events.ActorFrom(principal),
		Target:  characterTarget(character),
		Details: reasonOf(character.RejectionReason),
		Payload: characterPayload(character),
	})
	return character, nil
}

// ApproveComment publishes a pending comment.
func (s *ModerationService) ApproveComment(ctx context.Context, principal *domain.Principal, id string) (*domain.Comment, error) {
	return s.reviewComment(ctx, principal, id, domain.ActionCommentApproved, func(c *domain.Comment) error {
		return c.Approve(principal.UserID, s.now())
	})
}

// RejectComment refuses a pending comment for good.
func (s *ModerationService) RejectComment(ctx context.Context, principal *domain.Principal, id, reason string) (*domain.Comment, error) {
	return s.reviewComment(ctx, principal, id, domain.ActionCommentRejected, func(c *domain.Comment) error {
		return c.Reject(reason, principal.UserID, s.now())
	})
}

func (s *ModerationService) reviewComment(ctx context.Context, principal *domain.Principal, id string, action domain.ActivityAction, transition func(*domain.Comment) error) (*domain.Comment, error) {
	if err := auth.Authorize(principal, auth.ActionModerate); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := comment.Status
	if err := transition(comment); err != nil {
		return nil, err
	}
	if err := s.comments.Update(ctx, comment, expected); err != nil {
		return nil, err
	}
	if comment.Status == domain.CommentApproved {
		s.gallery.invalidate(ctx)
	}

	s.events.publishEvent(ctx, events.Event{
		Type:    action,
		Actor:   events.ActorFrom(principal),
		Target:  commentTarget(comment),
		Details: reasonOf(comment.RejectionReason),
		Payload: commentPayload(comment),
	})
	return comment, nil
}

func reasonOf(reason *string) string {
	if reason == nil {
		return ""
	}
	return *reason
}
