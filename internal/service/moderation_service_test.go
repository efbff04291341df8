package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

func TestModeration_RequiresModerator(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	alice := h.seedUser("alice", domain.RoleUser)
	c, _ := h.characters.Create(ctx, alice, characterInput("Thorin"))
	if _, err := h.characters.Submit(ctx, alice, c.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := h.moderation.ApproveCharacter(ctx, alice, c.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("user approve err = %v, want forbidden", err)
	}
	if _, err := h.moderation.ApproveCharacter(ctx, nil, c.ID); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("anonymous approve err = %v, want unauthenticated", err)
	}
	if _, err := h.moderation.PendingCharacters(ctx, alice, repository.Page{}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("user queue err = %v, want forbidden", err)
	}

	admin := h.seedUser("root", domain.RoleAdmin)
	pending, err := h.moderation.PendingCharacters(ctx, admin, repository.Page{})
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, %v; want one", pending, err)
	}
}

func TestModeration_RejectCharacterKeepsReason(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	alice := h.seedUser("alice", domain.RoleUser)
	mod := h.seedUser("moria", domain.RoleEmployee)
	c, _ := h.characters.Create(ctx, alice, characterInput("Thorin"))
	_, _ = h.characters.Submit(ctx, alice, c.ID)

	if _, err := h.moderation.RejectCharacter(ctx, mod, c.ID, "too short"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("short reason err = %v, want validation", err)
	}
	rejected, err := h.moderation.RejectCharacter(ctx, mod, c.ID, "Name breaks the naming rules.")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "Name breaks the naming rules." {
		t.Fatalf("reason = %v", rejected.RejectionReason)
	}
	event := h.dispatcher.last()
	if event.Type != domain.ActionCharacterRejected || event.Details != "Name breaks the naming rules." {
		t.Fatalf("event = %s %q", event.Type, event.Details)
	}

	stored, err := h.characters.Get(ctx, alice, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.RejectionReason == nil {
		t.Fatal("owner must see the rejection reason")
	}

	if _, err := h.moderation.ApproveCharacter(ctx, mod, c.ID); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("approve rejected err = %v, want invalid transition", err)
	}
}

func TestModeration_StaleStatusIsConflict(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	alice := h.seedUser("alice", domain.RoleUser)
	mod := h.seedUser("moria", domain.RoleEmployee)
	c, _ := h.characters.Create(ctx, alice, characterInput("Thorin"))
	_, _ = h.characters.Submit(ctx, alice, c.ID)

	// Another moderator approves between this request's read and write.
	repo := racingCharacters{memCharacters: memCharacters{s: h.store}, mod: mod.UserID}
	moderation := NewModerationService(ModerationDependencies{
		CharacterRepo: repo,
		CommentRepo:   memComments{s: h.store},
		Dispatcher:    h.dispatcher,
		Clock:         testClock,
	})
	before := len(h.dispatcher.events)
	if _, err := moderation.RejectCharacter(ctx, mod, c.ID, "Name breaks the naming rules."); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if len(h.dispatcher.events) != before {
		t.Fatal("failed transition must not publish")
	}
}

type racingCharacters struct {
	memCharacters
	mod string
}

func (r racingCharacters) GetByID(ctx context.Context, id string) (*domain.Character, error) {
	c, err := r.memCharacters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	winner := *c
	if err := winner.Approve(r.mod, testNow); err != nil {
		return nil, err
	}
	r.s.characters[id] = winner
	return c, nil
}

func TestModeration_CommentQueue(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	alice := h.seedUser("alice", domain.RoleUser)
	bob := h.seedUser("bob", domain.RoleUser)
	mod := h.seedUser("moria", domain.RoleEmployee)
	shared := sharedCharacter(t, h, alice, mod, "Thorin")
	comment, _ := h.comments.Create(ctx, bob, shared.ID, CommentInput{Rating: 5, Text: reviewText})

	queue, err := h.moderation.PendingComments(ctx, mod, repository.Page{})
	if err != nil || len(queue) != 1 {
		t.Fatalf("queue = %v, %v; want one", queue, err)
	}
	before := h.cache.invalidations
	if _, err := h.moderation.ApproveComment(ctx, mod, comment.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if h.cache.invalidations != before+1 {
		t.Fatal("approving a review must refresh the gallery ratings")
	}
	if _, err := h.moderation.RejectComment(ctx, mod, comment.ID, "Changed my mind on this."); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("reject approved err = %v, want invalid transition", err)
	}
	queue, _ = h.moderation.PendingComments(ctx, mod, repository.Page{})
	if len(queue) != 0 {
		t.Fatalf("queue = %d, want empty", len(queue))
	}
}
