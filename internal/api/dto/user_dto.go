package dto

import (
	"time"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Pseudo   string `json:"pseudo"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// DeleteAccountRequest confirms self-deletion.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// PasswordStrengthRequest payload.
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// PasswordStrengthResponse reports a password score without storing it.
type PasswordStrengthResponse struct {
	Score    int                 `json:"score"`
	Label    string              `json:"label"`
	Valid    bool                `json:"valid"`
	Failures map[string][]string `json:"failures,omitempty"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                 string      `json:"id"`
	Pseudo             string      `json:"pseudo"`
	Email              string      `json:"email"`
	Role               domain.Role `json:"role"`
	IsSuspended        bool        `json:"is_suspended"`
	MustChangePassword bool        `json:"must_change_password"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// CreateEmployeeRequest payload.
type CreateEmployeeRequest struct {
	Pseudo string `json:"pseudo"`
	Email  string `json:"email"`
}

// TemporaryPasswordResponse returns an issued password. It is shown once.
type TemporaryPasswordResponse struct {
	User              UserResponse `json:"user"`
	TemporaryPassword string       `json:"temporary_password"`
}
