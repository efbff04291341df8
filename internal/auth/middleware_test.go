package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/domain"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

type stubUsers map[string]*domain.User

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func newTestApp(tm *TokenManager, users stubUsers, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	mw := NewAuthMiddleware(tm, users)
	handlers := append([]fiber.Handler{mw.Handle}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Pseudo)
	})
	app.Get("/me", handlers...)
	return app
}

func tokenFor(t *testing.T, tm *TokenManager, u *domain.User) string {
	t.Helper()
	token, _, err := tm.GenerateToken(u)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	active := &domain.User{ID: "1", Pseudo: "bilbo", Role: domain.RoleUser}
	suspended := &domain.User{ID: "2", Pseudo: "smeagol", Role: domain.RoleUser, IsSuspended: true}
	temp := &domain.User{ID: "3", Pseudo: "gandalf", Role: domain.RoleEmployee, MustChangePassword: true}
	users := stubUsers{"1": active, "2": suspended, "3": temp}
	ghost := &domain.User{ID: "404", Pseudo: "ghost", Role: domain.RoleUser}

	tests := []struct {
		name   string
		header string
		extra  []fiber.Handler
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "bad scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "active", header: "Bearer " + tokenFor(t, tm, active), want: http.StatusOK},
		{name: "suspended", header: "Bearer " + tokenFor(t, tm, suspended), want: http.StatusUnauthorized},
		{name: "deleted account", header: "Bearer " + tokenFor(t, tm, ghost), want: http.StatusUnauthorized},
		{name: "temporary password blocked", header: "Bearer " + tokenFor(t, tm, temp), extra: []fiber.Handler{RequirePasswordFresh()}, want: http.StatusForbidden},
		{name: "temporary password allowed without guard", header: "Bearer " + tokenFor(t, tm, temp), want: http.StatusOK},
		{name: "role refused", header: "Bearer " + tokenFor(t, tm, active), extra: []fiber.Handler{RequireAction(ActionModerate)}, want: http.StatusForbidden},
		{name: "role granted", header: "Bearer " + tokenFor(t, tm, temp), extra: []fiber.Handler{RequireRole(domain.RoleEmployee, domain.RoleAdmin)}, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tm, users, tt.extra...)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
