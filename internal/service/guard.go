package service

import (
	"context"
	"errors"

	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

// UniquenessGuard rejects writes that would collide with persisted data.
// The store's unique constraints remain authoritative; repositories map
// their violations to the same CONFLICT errors.
type UniquenessGuard struct {
	users      repository.UserRepository
	characters repository.CharacterRepository
	comments   repository.CommentRepository
}

// NewUniquenessGuard builds the guard.
func NewUniquenessGuard(users repository.UserRepository, characters repository.CharacterRepository, comments repository.CommentRepository) *UniquenessGuard {
	return &UniquenessGuard{users: users, characters: characters, comments: comments}
}

// CheckCharacterName refuses a name the owner already uses. excludeID skips
// the character being renamed.
func (g *UniquenessGuard) CheckCharacterName(ctx context.Context, name, ownerID, excludeID string) error {
	exists, err := g.characters.ExistsByNameAndOwner(ctx, name, ownerID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflict("a character with this name already exists", map[string]any{"field": "name"})
	}
	return nil
}

// CheckComment refuses a second review by the same author.
func (g *UniquenessGuard) CheckComment(ctx context.Context, characterID, authorID string) error {
	exists, err := g.comments.ExistsByCharacterAndAuthor(ctx, characterID, authorID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflict("you have already commented on this character", map[string]any{"field": "character_id"})
	}
	return nil
}

// CheckEmail refuses an address already registered.
func (g *UniquenessGuard) CheckEmail(ctx context.Context, email string) error {
	_, err := g.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperrors.NewConflict("email is already registered", map[string]any{"field": "email"})
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		return err
	}
}

// CheckPseudo refuses a handle already taken.
func (g *UniquenessGuard) CheckPseudo(ctx context.Context, pseudo string) error {
	_, err := g.users.GetByPseudo(ctx, pseudo)
	switch {
	case err == nil:
		return apperrors.NewConflict("pseudo is already taken", map[string]any{"field": "pseudo"})
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		return err
	}
}

// CheckAccount runs the email and pseudo checks.
func (g *UniquenessGuard) CheckAccount(ctx context.Context, email, pseudo string) error {
	if err := g.CheckEmail(ctx, email); err != nil {
		return err
	}
	return g.CheckPseudo(ctx, pseudo)
}
