package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
	"github.com/spec-kit/character-gallery/pkg/validator"
)

// GalleryCache holds rendered gallery pages.
type GalleryCache interface {
	Get(ctx context.Context, limit, offset int) ([]domain.GalleryEntry, bool, error)
	Set(ctx context.Context, limit, offset int, entries []domain.GalleryEntry) error
	Invalidate(ctx context.Context) error
}

// CharacterService coordinates character workflows for their owners.
type CharacterService struct {
	characters repository.CharacterRepository
	classes    repository.CharacterClassRepository
	guard      *UniquenessGuard
	gallery    galleryPages
	now        func() time.Time
	events     eventPublisher
}

// CharacterDependencies bundles collaborators for the character service.
type CharacterDependencies struct {
	CharacterRepo repository.CharacterRepository
	ClassRepo     repository.CharacterClassRepository
	Guard         *UniquenessGuard
	Cache         GalleryCache
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Clock         func() time.Time
}

// CharacterInput is the editable part of a character.
type CharacterInput struct {
	Name       string
	ClassID    string
	Appearance domain.Appearance
}

// CharacterListFilter narrows the owner's own listing.
type CharacterListFilter struct {
	Statuses []domain.CharacterStatus
	Limit    int
	Offset   int
}

// NewCharacterService constructs the service.
func NewCharacterService(deps CharacterDependencies) *CharacterService {
	now := clockOrDefault(deps.Clock)
	return &CharacterService{
		characters: deps.CharacterRepo,
		classes:    deps.ClassRepo,
		guard:      deps.Guard,
		gallery:    newGalleryPages(deps.Cache, deps.Logger),
		now:        now,
		events:     newEventPublisher(deps.Dispatcher, now),
	}
}

// Create stores a new draft owned by the caller.
func (s *CharacterService) Create(ctx context.Context, principal *domain.Principal, input CharacterInput) (*domain.Character, error) {
	if err := auth.Authorize(principal, auth.ActionManageOwnCharacter); err != nil {
		return nil, err
	}
	character, err := domain.NewCharacter(principal.UserID, input.Name, input.ClassID, input.Appearance, s.now())
	if err != nil {
		return nil, err
	}
	class, err := s.resolveClass(ctx, input.ClassID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckCharacterName(ctx, character.Name, principal.UserID, ""); err != nil {
		return nil, err
	}

	if err := s.characters.Create(ctx, character); err != nil {
		return nil, err
	}
	character.ClassName = class.Name

	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionCharacterCreated,
		Actor:   events.ActorFrom(principal),
		Target:  characterTarget(character),
		Payload: characterPayload(character),
	})
	return character, nil
}

func (s *CharacterService) resolveClass(ctx context.Context, classID string) (*domain.CharacterClass, error) {
	var errs validator.Errors
	if strings.TrimSpace(classID) == "" {
		errs.Add("class_id", "%s is required", "class_id")
		return nil, errs.Err()
	}
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			errs.Add("class_id", "character class not found")
			return nil, errs.Err()
		}
		return nil, err
	}
	return class, nil
}

// Get returns a character. Shared characters are public; anything else is
// visible to its owner and moderators only and reads as missing otherwise.
func (s *CharacterService) Get(ctx context.Context, principal *domain.Principal, id string) (*domain.Character, error) {
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if character.IsPublic() {
		return character, nil
	}
	if principal != nil && (principal.UserID == character.OwnerID || principal.IsModerator()) {
		return character, nil
	}
	return nil, apperrors.NewNotFound("character", map[string]any{"id": id})
}

// ListOwn lists the caller's characters.
func (s *CharacterService) ListOwn(ctx context.Context, principal *domain.Principal, filter CharacterListFilter) ([]domain.Character, error) {
	if err := auth.Authorize(principal, auth.ActionManageOwnCharacter); err != nil {
		return nil, err
	}
	owner := principal.UserID
	return s.characters.List(ctx, repository.CharacterFilter{
		OwnerID:  &owner,
		Statuses: filter.Statuses,
		Page:     repository.Page{Limit: filter.Limit, Offset: filter.Offset},
	})
}

// Update edits a character. Renaming an approved character sends it back to
// review.
func (s *CharacterService) Update(ctx context.Context, principal *domain.Principal, id string, input CharacterInput) (*domain.Character, error) {
	character, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	class, err := s.resolveClass(ctx, input.ClassID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckCharacterName(ctx, strings.TrimSpace(input.Name), character.OwnerID, character.ID); err != nil {
		return nil, err
	}

	expected := character.Status
	wasPublic := character.IsPublic()
	demoted, err := character.UpdateAppearance(input.Name, input.ClassID, input.Appearance, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.characters.Update(ctx, character, expected); err != nil {
		return nil, err
	}
	character.ClassName = class.Name
	if wasPublic {
		s.gallery.invalidate(ctx)
	}

	payload := characterPayload(character)
	payload.Demoted = demoted
	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionCharacterUpdated,
		Actor:   events.ActorFrom(principal),
		Target:  characterTarget(character),
		Payload: payload,
	})
	return character, nil
}

// Submit queues a draft or rejected character for moderation.
func (s *CharacterService) Submit(ctx context.Context, principal *domain.Principal, id string) (*domain.Character, error) {
	character, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	expected := character.Status
	if err := character.SubmitForReview(s.now()); err != nil {
		return nil, err
	}
	if err := s.characters.Update(ctx, character, expected); err != nil {
		return nil, err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionCharacterSubmitted,
		Actor:   events.ActorFrom(principal),
		Target:  characterTarget(character),
		Payload: characterPayload(character),
	})
	return character, nil
}

// ToggleShare publishes an approved character to the gallery or withdraws it.
func (s *CharacterService) ToggleShare(ctx context.Context, principal *domain.Principal, id string) (*domain.Character, error) {
	character, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	expected := character.Status
	if err := character.ToggleShare(s.now()); err != nil {
		return nil, err
	}
	if err := s.characters.Update(ctx, character, expected); err != nil {
		return nil, err
	}
	s.gallery.invalidate(ctx)

	action := domain.ActionCharacterUnshared
	if character.IsShared {
		action = domain.ActionCharacterShared
	}
	s.events.publishEvent(ctx, events.Event{
		Type:    action,
		Actor:   events.ActorFrom(principal),
		Target:  characterTarget(character),
		Payload: characterPayload(character),
	})
	return character, nil
}

// Delete removes a character and its comments. Owners and moderators may
// delete.
func (s *CharacterService) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	if principal == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeOwnerOrModerator(principal, character.OwnerID); err != nil {
		return err
	}
	if err := s.characters.Delete(ctx, character.ID); err != nil {
		return err
	}
	if character.IsPublic() {
		s.gallery.invalidate(ctx)
	}

	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionCharacterDeleted,
		Actor:   events.ActorFrom(principal),
		Target:  characterTarget(character),
		Payload: characterPayload(character),
	})
	return nil
}

// Gallery lists shared characters with their review summary, newest first.
func (s *CharacterService) Gallery(ctx context.Context, limit, offset int) ([]domain.GalleryEntry, error) {
	page := repository.Page{Limit: limit, Offset: offset}.Normalize()
	if entries, ok := s.gallery.get(ctx, page); ok {
		return entries, nil
	}
	entries, err := s.characters.ListGallery(ctx, page)
	if err != nil {
		return nil, err
	}
	s.gallery.set(ctx, page, entries)
	return entries, nil
}

// Classes lists the class catalogue.
func (s *CharacterService) Classes(ctx context.Context) ([]domain.CharacterClass, error) {
	return s.classes.List(ctx)
}

// loadOwned fetches a character the caller owns. Someone else's private
// character reads as missing.
func (s *CharacterService) loadOwned(ctx context.Context, principal *domain.Principal, id string) (*domain.Character, error) {
	if err := auth.Authorize(principal, auth.ActionManageOwnCharacter); err != nil {
		return nil, err
	}
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwner(principal, character.OwnerID); err != nil {
		if !character.IsPublic() && !principal.IsModerator() {
			return nil, apperrors.NewNotFound("character", map[string]any{"id": id})
		}
		return nil, err
	}
	return character, nil
}
