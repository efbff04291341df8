package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/events"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
	"github.com/spec-kit/character-gallery/pkg/validator"
)

// AuthService coordinates registration, login and self-service account flows.
type AuthService struct {
	users      repository.UserRepository
	guard      *UniquenessGuard
	tokenMgr   *auth.TokenManager
	bcryptCost int
	now        func() time.Time
	events     eventPublisher
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	Guard        *UniquenessGuard
	TokenManager *auth.TokenManager
	BcryptCost   int
	Dispatcher   events.Dispatcher
	Clock        func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	now := clockOrDefault(deps.Clock)
	return &AuthService{
		users:      deps.UserRepo,
		guard:      deps.Guard,
		tokenMgr:   deps.TokenManager,
		bcryptCost: deps.BcryptCost,
		now:        now,
		events:     newEventPublisher(deps.Dispatcher, now),
	}
}

// RegisterInput carries a self-registration.
type RegisterInput struct {
	Pseudo   string
	Email    string
	Password string
}

// Session is an issued access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a User account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, clientIP string) (*Session, error) {
	if err := validator.Registration(input.Pseudo, input.Email, input.Password).Err(); err != nil {
		return nil, err
	}
	if err := s.guard.CheckAccount(ctx, input.Email, input.Pseudo); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := domain.NewRegisteredUser(input.Pseudo, input.Email, hash, s.now())
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	principal := user.Principal(clientIP)
	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionUserRegistered,
		Actor:   events.ActorFrom(principal),
		Target:  userTarget(user),
		Payload: accountPayload(user),
	})
	return s.issue(user)
}

// Login verifies credentials. Suspended accounts are refused.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthenticated("invalid credentials")
	}
	if user.IsSuspended {
		return nil, apperrors.NewUnauthenticated("account is suspended")
	}

	s.events.publishEvent(ctx, events.Event{
		Type:   domain.ActionUserLoggedIn,
		Actor:  events.ActorFrom(user.Principal(clientIP)),
		Target: userTarget(user),
	})
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

// Profile returns the caller's account.
func (s *AuthService) Profile(ctx context.Context, principal *domain.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	return s.users.GetByID(ctx, principal.UserID)
}

// ChangePassword verifies the current password before installing a new one.
// It is the only way to clear a temporary password.
func (s *AuthService) ChangePassword(ctx context.Context, principal *domain.Principal, currentPassword, newPassword string) error {
	if principal == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return err
	}

	var errs validator.Errors
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		errs.Add("current_password", "current password is incorrect")
	}
	errs = append(errs, validator.Password(newPassword).Errors...)
	if err := errs.Err(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.ChangePassword(hash, s.now())
	if err := s.users.UpdatePassword(ctx, user.ID, user.PasswordHash, user.MustChangePassword, user.UpdatedAt); err != nil {
		return err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:   domain.ActionPasswordChanged,
		Actor:  events.ActorFrom(principal),
		Target: userTarget(user),
	})
	return nil
}

// DeleteOwnAccount removes the caller's account after password confirmation.
// Characters and comments go with it.
func (s *AuthService) DeleteOwnAccount(ctx context.Context, principal *domain.Principal, password string) error {
	if principal == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		var errs validator.Errors
		errs.Add("password", "password confirmation is incorrect")
		return errs.Err()
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.events.publishEvent(ctx, events.Event{
		Type:    domain.ActionAccountDeleted,
		Actor:   events.ActorFrom(principal),
		Target:  userTarget(user),
		Payload: accountPayload(user),
	})
	return nil
}

// PasswordStrength scores a candidate password without storing anything.
func (s *AuthService) PasswordStrength(password string) validator.PasswordReport {
	return validator.Password(password)
}
