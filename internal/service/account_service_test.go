package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

func TestCreateEmployee(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	admin := h.seedUser("root", domain.RoleAdmin)
	employee := h.seedUser("moria", domain.RoleEmployee)

	if _, err := h.accounts.CreateEmployee(ctx, employee, EmployeeInput{Pseudo: "gimli", Email: "gimli@example.com"}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("employee creating employee err = %v, want forbidden", err)
	}

	issued, err := h.accounts.CreateEmployee(ctx, admin, EmployeeInput{Pseudo: "gimli", Email: "Gimli@Example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if issued.User.Role != domain.RoleEmployee || !issued.User.MustChangePassword {
		t.Fatalf("user = %+v, want employee needing a password change", issued.User)
	}
	if len(issued.TemporaryPassword) < auth.MinTemporaryPasswordLength {
		t.Fatalf("temporary password length = %d", len(issued.TemporaryPassword))
	}
	if err := auth.ComparePassword(issued.User.PasswordHash, issued.TemporaryPassword); err != nil {
		t.Fatalf("stored hash does not match issued password: %v", err)
	}
	for _, e := range h.dispatcher.events {
		if strings.Contains(e.Details, issued.TemporaryPassword) {
			t.Fatal("temporary password leaked into an event")
		}
	}

	if _, err := h.accounts.CreateEmployee(ctx, admin, EmployeeInput{Pseudo: "gimli2", Email: "gimli@example.com"}); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate email err = %v, want conflict", err)
	}
	if _, err := h.accounts.CreateEmployee(ctx, admin, EmployeeInput{Pseudo: "x", Email: "nope"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("invalid input err = %v, want validation", err)
	}
}

func TestSuspendMatrix(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Role
		target  domain.Role
		wantErr error
	}{
		{name: "employee suspends user", actor: domain.RoleEmployee, target: domain.RoleUser},
		{name: "employee suspends employee", actor: domain.RoleEmployee, target: domain.RoleEmployee, wantErr: apperrors.ErrForbidden},
		{name: "admin suspends employee", actor: domain.RoleAdmin, target: domain.RoleEmployee},
		{name: "admin suspends user", actor: domain.RoleAdmin, target: domain.RoleUser, wantErr: apperrors.ErrForbidden},
		{name: "admin suspends admin", actor: domain.RoleAdmin, target: domain.RoleAdmin, wantErr: apperrors.ErrForbidden},
		{name: "user suspends user", actor: domain.RoleUser, target: domain.RoleUser, wantErr: apperrors.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			actor := h.seedUser("actor", tt.actor)
			target := h.seedUser("target", tt.target)
			user, err := h.accounts.Suspend(context.Background(), actor, target.UserID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("suspend: %v", err)
			}
			if !user.IsSuspended || !h.store.users[target.UserID].IsSuspended {
				t.Fatal("expected suspended account")
			}
		})
	}
}

func TestSuspendReactivateCycle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	employee := h.seedUser("moria", domain.RoleEmployee)
	target := h.seedUser("bilbo", domain.RoleUser)

	if _, err := h.accounts.Suspend(ctx, employee, target.UserID); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := h.accounts.Suspend(ctx, employee, target.UserID); !errors.Is(err, apperrors.ErrAlreadySuspended) {
		t.Fatalf("second suspend err = %v, want already suspended", err)
	}
	if _, err := h.accounts.Reactivate(ctx, employee, target.UserID); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if _, err := h.accounts.Reactivate(ctx, employee, target.UserID); !errors.Is(err, apperrors.ErrNotSuspended) {
		t.Fatalf("second reactivate err = %v, want not suspended", err)
	}
}

func TestIssueTemporaryPassword(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	employee := h.seedUser("moria", domain.RoleEmployee)
	target := h.seedUser("bilbo", domain.RoleUser)

	issued, err := h.accounts.IssueTemporaryPassword(ctx, employee, target.UserID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stored := h.store.users[target.UserID]
	if !stored.MustChangePassword {
		t.Fatal("temporary password must force a change")
	}
	if err := auth.ComparePassword(stored.PasswordHash, issued.TemporaryPassword); err != nil {
		t.Fatalf("stored hash mismatch: %v", err)
	}
	if h.dispatcher.last().Type != domain.ActionTemporaryPasswordIssued {
		t.Fatalf("last event = %s", h.dispatcher.last().Type)
	}
}

func TestDeleteAccount_CascadesAndProtectsAdmins(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	admin := h.seedUser("root", domain.RoleAdmin)
	other := h.seedUser("root2", domain.RoleAdmin)
	employee := h.seedUser("moria", domain.RoleEmployee)
	alice := h.seedUser("alice", domain.RoleUser)
	_, _ = h.characters.Create(ctx, alice, characterInput("Thorin"))

	if err := h.accounts.DeleteAccount(ctx, employee, alice.UserID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("employee delete err = %v, want forbidden", err)
	}
	if err := h.accounts.DeleteAccount(ctx, admin, other.UserID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("admin delete admin err = %v, want forbidden", err)
	}
	if err := h.accounts.DeleteAccount(ctx, admin, alice.UserID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(h.store.characters) != 0 {
		t.Fatalf("characters left = %d, want cascade delete", len(h.store.characters))
	}
	if err := h.accounts.DeleteAccount(ctx, admin, alice.UserID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("repeat delete err = %v, want not found", err)
	}
}

func TestListAccounts_ScopedByRole(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	admin := h.seedUser("root", domain.RoleAdmin)
	employee := h.seedUser("moria", domain.RoleEmployee)
	h.seedUser("alice", domain.RoleUser)
	h.seedUser("bob", domain.RoleUser)

	seen, err := h.accounts.List(ctx, employee, AccountListFilter{})
	if err != nil {
		t.Fatalf("employee list: %v", err)
	}
	for _, u := range seen {
		if u.Role != domain.RoleUser {
			t.Fatalf("employee saw %s account", u.Role)
		}
	}
	if len(seen) != 2 {
		t.Fatalf("employee saw %d accounts, want 2", len(seen))
	}

	all, err := h.accounts.List(ctx, admin, AccountListFilter{})
	if err != nil || len(all) != 4 {
		t.Fatalf("admin list = %d, %v; want 4", len(all), err)
	}

	adminRole := domain.RoleAdmin
	if _, err := h.accounts.List(ctx, employee, AccountListFilter{Role: &adminRole}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("employee listing admins err = %v, want forbidden", err)
	}
}

// suspendingUsers suspends the stored account between a request's read and
// its write, as a moderator acting at the same moment would.
type suspendingUsers struct {
	memUsers
}

func (r suspendingUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.memUsers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stored := r.s.users[id]
	stored.IsSuspended = true
	r.s.users[id] = stored
	return u, nil
}

func TestPasswordChangeKeepsConcurrentSuspension(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	session := register(t, h, "bilbo")
	repo := suspendingUsers{memUsers: memUsers{s: h.store}}
	authService := NewAuthService(AuthDependencies{
		UserRepo:     repo,
		Guard:        NewUniquenessGuard(repo, memCharacters{s: h.store}, memComments{s: h.store}),
		TokenManager: h.tokens,
		BcryptCost:   4,
		Dispatcher:   h.dispatcher,
		Clock:        testClock,
	})

	if err := authService.ChangePassword(ctx, session.User.Principal(""), strongPassword, "AnotherPass2@345"); err != nil {
		t.Fatalf("change: %v", err)
	}
	stored := h.store.users[session.User.ID]
	if !stored.IsSuspended {
		t.Fatal("password change must not lift a suspension written in the meantime")
	}
	if err := auth.ComparePassword(stored.PasswordHash, "AnotherPass2@345"); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}
}

func TestTemporaryPasswordKeepsConcurrentSuspension(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	mod := h.seedUser("moria", domain.RoleEmployee)
	bilbo := h.seedUser("bilbo", domain.RoleUser)
	accounts := NewAccountService(AccountDependencies{
		UserRepo:   suspendingUsers{memUsers: memUsers{s: h.store}},
		BcryptCost: 4,
		Dispatcher: h.dispatcher,
		Clock:      testClock,
	})

	issued, err := accounts.IssueTemporaryPassword(ctx, mod, bilbo.UserID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	stored := h.store.users[bilbo.UserID]
	if !stored.IsSuspended || !stored.MustChangePassword {
		t.Fatalf("stored = %+v, want suspended with a temporary password", stored)
	}
	if err := auth.ComparePassword(stored.PasswordHash, issued.TemporaryPassword); err != nil {
		t.Fatalf("temporary password not stored: %v", err)
	}
}

func TestSuspendRacingSuspendIsConflict(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	mod := h.seedUser("moria", domain.RoleEmployee)
	bilbo := h.seedUser("bilbo", domain.RoleUser)
	accounts := NewAccountService(AccountDependencies{
		UserRepo:   suspendingUsers{memUsers: memUsers{s: h.store}},
		BcryptCost: 4,
		Dispatcher: h.dispatcher,
		Clock:      testClock,
	})

	before := len(h.dispatcher.events)
	if _, err := accounts.Suspend(ctx, mod, bilbo.UserID); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if len(h.dispatcher.events) != before {
		t.Fatal("a lost race must not publish")
	}
	if !h.store.users[bilbo.UserID].IsSuspended {
		t.Fatal("the winning suspension must stand")
	}
}
