package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/api/dto"
	"github.com/spec-kit/character-gallery/internal/service"
)

// AuthHandler serves registration, login and self-service account endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.service.Register(c.UserContext(), service.RegisterInput{
		Pseudo:   req.Pseudo,
		Email:    req.Email,
		Password: req.Password,
	}, c.IP())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(session)})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.service.Login(c.UserContext(), req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(session)})
}

// PasswordStrength POST /auth/password-strength.
func (h *AuthHandler) PasswordStrength(c *fiber.Ctx) error {
	var req dto.PasswordStrengthRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	report := h.service.PasswordStrength(req.Password)
	resp := dto.PasswordStrengthResponse{Score: report.Score, Label: report.Label, Valid: report.Valid()}
	if !report.Valid() {
		resp.Failures = map[string][]string{}
		for _, f := range report.Errors {
			resp.Failures[f.Field] = append(resp.Failures[f.Field], f.Message())
		}
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Me GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.service.Profile(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ChangePassword POST /me/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.ChangePassword(c.UserContext(), principal(c), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAccount DELETE /me.
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	var req dto.DeleteAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.service.DeleteOwnAccount(c.UserContext(), principal(c), req.Password); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func authResponse(session *service.Session) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userResponse(session.User),
	}
}
