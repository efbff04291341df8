package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

// User is an account: a self-registered member, an employee or an admin.
type User struct {
	ID                 string
	Pseudo             string
	Email              string
	PasswordHash       string
	Role               Role
	IsSuspended        bool
	MustChangePassword bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewRegisteredUser builds a self-registered account with role User.
func NewRegisteredUser(pseudo, email, passwordHash string, now time.Time) *User {
	return newUser(pseudo, email, passwordHash, RoleUser, now)
}

// NewEmployee builds an admin-issued employee account. The initial password
// is temporary, so the employee must change it on first login.
func NewEmployee(pseudo, email, temporaryHash string, now time.Time) *User {
	u := newUser(pseudo, email, "", RoleEmployee, now)
	u.SetTemporaryPassword(temporaryHash, now)
	return u
}

func newUser(pseudo, email, passwordHash string, role Role, now time.Time) *User {
	return &User{
		Pseudo:       strings.TrimSpace(pseudo),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lowercases and trims an address for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Suspend blocks the account. Suspending twice is refused.
func (u *User) Suspend(now time.Time) error {
	if u.IsSuspended {
		return apperrors.NewAlreadySuspended()
	}
	u.IsSuspended = true
	u.UpdatedAt = now
	return nil
}

// Reactivate lifts a suspension. Reactivating an active account is refused.
func (u *User) Reactivate(now time.Time) error {
	if !u.IsSuspended {
		return apperrors.NewNotSuspended()
	}
	u.IsSuspended = false
	u.UpdatedAt = now
	return nil
}

// SetTemporaryPassword installs an admin-issued password that must be
// replaced on next login.
func (u *User) SetTemporaryPassword(hash string, now time.Time) {
	u.PasswordHash = hash
	u.MustChangePassword = true
	u.UpdatedAt = now
}

// ChangePassword installs a password chosen by the user.
func (u *User) ChangePassword(hash string, now time.Time) {
	u.PasswordHash = hash
	u.MustChangePassword = false
	u.UpdatedAt = now
}

// Principal returns the caller identity for this account.
func (u *User) Principal(clientIP string) *Principal {
	return &Principal{
		UserID:             u.ID,
		Pseudo:             u.Pseudo,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
		ClientIP:           clientIP,
	}
}
