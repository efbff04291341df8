package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/api/http/handlers"
	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Characters     *handlers.CharactersHandler
	Comments       *handlers.CommentsHandler
	Moderation     *handlers.ModerationHandler
	Accounts       *handlers.AccountsHandler
	Activity       *handlers.ActivityHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")

	// Accounts holding a temporary password may only read their profile
	// and change it.
	signedIn := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}
	fresh := append(append([]fiber.Handler(nil), signedIn...), auth.RequirePasswordFresh())
	optional := []fiber.Handler{cfg.AuthMiddleware.Optional}

	api.Post("/auth/register", cfg.Auth.Register)
	api.Post("/auth/login", cfg.Auth.Login)
	api.Post("/auth/password-strength", cfg.Auth.PasswordStrength)

	api.Get("/me", with(signedIn, cfg.Auth.Me)...)
	api.Post("/me/password", with(signedIn, cfg.Auth.ChangePassword)...)
	api.Delete("/me", with(fresh, cfg.Auth.DeleteAccount)...)
	api.Get("/me/comments", with(fresh, cfg.Comments.ListOwn)...)

	api.Get("/classes", cfg.Characters.Classes)
	api.Get("/gallery", cfg.Characters.Gallery)

	api.Get("/characters", with(fresh, cfg.Characters.ListOwn)...)
	api.Post("/characters", with(fresh, cfg.Characters.Create)...)
	api.Get("/characters/:id", with(optional, cfg.Characters.Get)...)
	api.Put("/characters/:id", with(fresh, cfg.Characters.Update)...)
	api.Delete("/characters/:id", with(fresh, cfg.Characters.Delete)...)
	api.Post("/characters/:id/submit", with(fresh, cfg.Characters.Submit)...)
	api.Post("/characters/:id/share", with(fresh, cfg.Characters.ToggleShare)...)
	api.Get("/characters/:id/comments", with(optional, cfg.Comments.ListForCharacter)...)
	api.Post("/characters/:id/comments", with(fresh, cfg.Comments.Create)...)
	api.Delete("/comments/:id", with(fresh, cfg.Comments.Delete)...)

	moderators := append(append([]fiber.Handler(nil), fresh...), auth.RequireAction(auth.ActionModerate))
	api.Get("/moderation/characters", with(moderators, cfg.Moderation.PendingCharacters)...)
	api.Post("/moderation/characters/:id/approve", with(moderators, cfg.Moderation.ApproveCharacter)...)
	api.Post("/moderation/characters/:id/reject", with(moderators, cfg.Moderation.RejectCharacter)...)
	api.Get("/moderation/comments", with(moderators, cfg.Moderation.PendingComments)...)
	api.Post("/moderation/comments/:id/approve", with(moderators, cfg.Moderation.ApproveComment)...)
	api.Post("/moderation/comments/:id/reject", with(moderators, cfg.Moderation.RejectComment)...)

	staff := append(append([]fiber.Handler(nil), fresh...), auth.RequireRole(domain.RoleEmployee, domain.RoleAdmin))
	api.Get("/accounts", with(staff, cfg.Accounts.List)...)
	api.Post("/accounts/employees", with(staff, cfg.Accounts.CreateEmployee)...)
	api.Get("/accounts/:id", with(staff, cfg.Accounts.Get)...)
	api.Post("/accounts/:id/suspend", with(staff, cfg.Accounts.Suspend)...)
	api.Post("/accounts/:id/reactivate", with(staff, cfg.Accounts.Reactivate)...)
	api.Post("/accounts/:id/temporary-password", with(staff, cfg.Accounts.IssueTemporaryPassword)...)
	api.Delete("/accounts/:id", with(staff, cfg.Accounts.Delete)...)

	auditors := append(append([]fiber.Handler(nil), fresh...), auth.RequireAction(auth.ActionViewActivityLog))
	api.Get("/activity", with(auditors, cfg.Activity.List)...)
}

func with(chain []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, handler)
}
