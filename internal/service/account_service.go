package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
	"github.com/spec-kit/character-gallery/pkg/validator"
)

// AccountService handles staff-side account administration.
type AccountService struct {
	users              repository.UserRepository
	guard              *UniquenessGuard
	bcryptCost         int
	tempPasswordLength int
	now                func() time.Time
	events             eventPublisher
}

// AccountDependencies bundles collaborators for the account service.
type AccountDependencies struct {
	UserRepo           repository.UserRepository
	Guard              *UniquenessGuard
	BcryptCost         int
	TempPasswordLength int
	Dispatcher         events.Dispatcher
	Clock              func() time.Time
}

// NewAccountService constructs the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	now := clockOrDefault(deps.Clock)
	length := deps.TempPasswordLength
	if length < auth.MinTemporaryPasswordLength {
		length = auth.MinTemporaryPasswordLength
	}
	return &AccountService{
		users:              deps.UserRepo,
		guard:              deps.Guard,
		bcryptCost:         deps.BcryptCost,
		tempPasswordLength: length,
		now:                now,
		events:             newEventPublisher(deps.Dispatcher, now),
	}
}

// EmployeeInput describes a new employee account.
type EmployeeInput struct {
	Pseudo string
	Email  string
}

// IssuedCredentials carries a temporary password. It is shown once and never
// stored in clear.
type IssuedCredentials struct {
	User              *domain.User
	TemporaryPassword string
}

// AccountListFilter narrows the account listing.
type AccountListFilter struct {
	Role      *domain.Role
	Suspended *bool
	Search    string
	Limit     int
	Offset    int
}

// CreateEmployee opens an employee account with a temporary password.
func (s *AccountService) CreateEmployee(ctx context.Context, principal *domain.Principal, input EmployeeInput) (*IssuedCredentials, error) {
	if err := auth.Authorize(principal, auth.ActionManageEmployee); err != nil {
		return nil, err
	}
	errs := validator.Pseudo(input.Pseudo)
	errs = append(errs, validator.Email(input.Email)...)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if err := s.guard.CheckAccount(ctx, input.Email, strings.TrimSpace(input.Pseudo)); err != nil {
		return nil, err
	}

	password, hash, err := s.temporaryPassword()
	if err != nil {
		return nil, err
	}
	user := domain.NewEmployee(input.Pseudo, input.Email, hash, s.now())
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	actor := events.ActorFrom(principal)
	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionEmployeeCreated,
		Actor:   actor,
		Target:  userTarget(user),
		Payload: accountPayload(user),
	})
	s.events.publishEvent(ctx, events.Event{
		Type:   domain.ActionTemporaryPasswordIssued,
		Actor:  actor,
		Target: userTarget(user),
	})
	return &IssuedCredentials{User: user, TemporaryPassword: password}, nil
}

func (s *AccountService) temporaryPassword() (string, string, error) {
	password, err := auth.GenerateTemporaryPassword(s.tempPasswordLength)
	if err != nil {
		return "", "", err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", "", err
	}
	return password, hash, nil
}

// Suspend blocks an account. Employees manage users, admins manage employees.
func (s *AccountService) Suspend(ctx context.Context, principal *domain.Principal, id string) (*domain.User, error) {
	return s.manage(ctx, principal, id, domain.ActionUserSuspended, func(u *domain.User) error {
		return u.Suspend(s.now())
	}, s.saveSuspension)
}

// Reactivate lifts a suspension.
func (s *AccountService) Reactivate(ctx context.Context, principal *domain.Principal, id string) (*domain.User, error) {
	return s.manage(ctx, principal, id, domain.ActionUserReactivated, func(u *domain.User) error {
		return u.Reactivate(s.now())
	}, s.saveSuspension)
}

func (s *AccountService) saveSuspension(ctx context.Context, u *domain.User) error {
	return s.users.SetSuspended(ctx, u.ID, u.IsSuspended, u.UpdatedAt)
}

func (s *AccountService) savePassword(ctx context.Context, u *domain.User) error {
	return s.users.UpdatePassword(ctx, u.ID, u.PasswordHash, u.MustChangePassword, u.UpdatedAt)
}

// manage applies transition and persists only the columns save owns, so
// concurrent account changes of a different kind are not overwritten.
func (s *AccountService) manage(ctx context.Context, principal *domain.Principal, id string, action domain.ActivityAction, transition func(*domain.User) error, save func(context.Context, *domain.User) error) (*domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeAccountManagement(principal, user); err != nil {
		return nil, err
	}
	if err := transition(user); err != nil {
		return nil, err
	}
	if err := save(ctx, user); err != nil {
		return nil, err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:    action,
		Actor:   events.ActorFrom(principal),
		Target:  userTarget(user),
		Payload: accountPayload(user),
	})
	return user, nil
}

// IssueTemporaryPassword replaces an account's password with a generated one
// the holder must change at next login.
func (s *AccountService) IssueTemporaryPassword(ctx context.Context, principal *domain.Principal, id string) (*IssuedCredentials, error) {
	var password string
	user, err := s.manage(ctx, principal, id, domain.ActionTemporaryPasswordIssued, func(u *domain.User) error {
		plain, hash, err := s.temporaryPassword()
		if err != nil {
			return err
		}
		password = plain
		u.SetTemporaryPassword(hash, s.now())
		return nil
	}, s.savePassword)
	if err != nil {
		return nil, err
	}
	return &IssuedCredentials{User: user, TemporaryPassword: password}, nil
}

// DeleteAccount removes another account with everything it owns.
func (s *AccountService) DeleteAccount(ctx context.Context, principal *domain.Principal, id string) error {
	if err := auth.Authorize(principal, auth.ActionDeleteAnyAccount); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeAccountDeletion(principal, user); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionUserDeleted,
		Actor:   events.ActorFrom(principal),
		Target:  userTarget(user),
		Payload: accountPayload(user),
	})
	return nil
}

// Get returns an account the caller may manage.
func (s *AccountService) Get(ctx context.Context, principal *domain.Principal, id string) (*domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if principal.Role == domain.RoleAdmin {
		return user, nil
	}
	if err := auth.AuthorizeAccountManagement(principal, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns accounts visible to the caller. Employees only see users.
func (s *AccountService) List(ctx context.Context, principal *domain.Principal, filter AccountListFilter) ([]domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	repoFilter := repository.UserFilter{
		Suspended: filter.Suspended,
		Search:    filter.Search,
		Page:      repository.Page{Limit: filter.Limit, Offset: filter.Offset},
	}
	switch principal.Role {
	case domain.RoleAdmin:
		if filter.Role != nil {
			repoFilter.Roles = []domain.Role{*filter.Role}
		}
	case domain.RoleEmployee:
		if filter.Role != nil && *filter.Role != domain.RoleUser {
			return nil, apperrors.NewForbidden("insufficient permissions")
		}
		repoFilter.Roles = []domain.Role{domain.RoleUser}
	default:
		return nil, apperrors.NewForbidden("insufficient permissions")
	}
	return s.users.List(ctx, repoFilter)
}
