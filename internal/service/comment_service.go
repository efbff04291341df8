package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

// CommentService manages reviews left on shared characters.
type CommentService struct {
	comments   repository.CommentRepository
	characters repository.CharacterRepository
	guard      *UniquenessGuard
	gallery    galleryPages
	now        func() time.Time
	events     eventPublisher
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo   repository.CommentRepository
	CharacterRepo repository.CharacterRepository
	Guard         *UniquenessGuard
	Cache         GalleryCache
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         func() time.Time
}

// CommentInput is a new review.
type CommentInput struct {
	Rating int
	Text   string
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	now := clockOrDefault(deps.Clock)
	return &CommentService{
		comments:   deps.CommentRepo,
		characters: deps.CharacterRepo,
		guard:      deps.Guard,
		gallery:    newGalleryPages(deps.Cache, deps.Logger),
		now:        now,
		events:     newEventPublisher(deps.Dispatcher, now),
	}
}

// Create posts a pending review. Only shared characters accept reviews,
// owners cannot review their own work and each user reviews a character once.
func (s *CommentService) Create(ctx context.Context, principal *domain.Principal, characterID string, input CommentInput) (*domain.Comment, error) {
	if err := auth.Authorize(principal, auth.ActionPostComment); err != nil {
		return nil, err
	}
	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if !character.IsPublic() {
		if character.OwnerID != principal.UserID && !principal.IsModerator() {
			return nil, apperrors.NewNotFound("character", map[string]any{"id": characterID})
		}
		return nil, apperrors.NewInvalidState("only shared characters accept comments")
	}
	if character.OwnerID == principal.UserID {
		return nil, apperrors.NewForbidden("you cannot comment on your own character")
	}

	comment, err := domain.NewComment(character.ID, principal.UserID, input.Rating, input.Text, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckComment(ctx, character.ID, principal.UserID); err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.AuthorPseudo = principal.Pseudo

	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionCommentCreated,
		Actor:   events.ActorFrom(principal),
		Target:  commentTarget(comment),
		Payload: commentPayload(comment),
	})
	return comment, nil
}

// ListApproved returns the published reviews of a visible character.
func (s *CommentService) ListApproved(ctx context.Context, principal *domain.Principal, characterID string, page repository.Page) ([]domain.Comment, error) {
	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if !character.IsPublic() && (principal == nil || (principal.UserID != character.OwnerID && !principal.IsModerator())) {
		return nil, apperrors.NewNotFound("character", map[string]any{"id": characterID})
	}
	id := character.ID
	return s.comments.List(ctx, repository.CommentFilter{
		CharacterID: &id,
		Statuses:    []domain.CommentStatus{domain.CommentApproved},
		Page:        page,
	})
}

// ListOwn returns the caller's reviews in every status.
func (s *CommentService) ListOwn(ctx context.Context, principal *domain.Principal, page repository.Page) ([]domain.Comment, error) {
	if err := auth.Authorize(principal, auth.ActionPostComment); err != nil {
		return nil, err
	}
	author := principal.UserID
	return s.comments.List(ctx, repository.CommentFilter{AuthorID: &author, Page: page})
}

// Delete removes a review. Authors and moderators may delete.
func (s *CommentService) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	if principal == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeOwnerOrModerator(principal, comment.AuthorID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	if comment.Status == domain.CommentApproved {
		s.gallery.invalidate(ctx)
	}

	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionCommentDeleted,
		Actor:   events.ActorFrom(principal),
		Target:  commentTarget(comment),
		Payload: commentPayload(comment),
	})
	return nil
}
