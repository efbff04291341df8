package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/api/dto"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/service"
)

// AccountsHandler serves staff account administration.
type AccountsHandler struct {
	service *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accountService *service.AccountService) *AccountsHandler {
	return &AccountsHandler{service: accountService}
}

// List GET /accounts.
func (h *AccountsHandler) List(c *fiber.Ctx) error {
	filter := service.AccountListFilter{Search: c.Query("search")}
	if raw := c.Query("role"); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return invalidQuery("role")
		}
		filter.Role = &role
	}
	if raw := c.Query("suspended"); raw != "" {
		suspended, err := strconv.ParseBool(raw)
		if err != nil {
			return invalidQuery("suspended")
		}
		filter.Suspended = &suspended
	}
	page := parsePage(c)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	users, err := h.service.List(c.UserContext(), principal(c), filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /accounts/:id.
func (h *AccountsHandler) Get(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// CreateEmployee POST /accounts/employees.
func (h *AccountsHandler) CreateEmployee(c *fiber.Ctx) error {
	var req dto.CreateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	issued, err := h.service.CreateEmployee(c.UserContext(), principal(c), service.EmployeeInput{
		Pseudo: req.Pseudo,
		Email:  req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issuedResponse(issued)})
}

// Suspend POST /accounts/:id/suspend.
func (h *AccountsHandler) Suspend(c *fiber.Ctx) error {
	user, err := h.service.Suspend(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Reactivate POST /accounts/:id/reactivate.
func (h *AccountsHandler) Reactivate(c *fiber.Ctx) error {
	user, err := h.service.Reactivate(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// IssueTemporaryPassword POST /accounts/:id/temporary-password.
func (h *AccountsHandler) IssueTemporaryPassword(c *fiber.Ctx) error {
	issued, err := h.service.IssueTemporaryPassword(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issuedResponse(issued)})
}

// Delete DELETE /accounts/:id.
func (h *AccountsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteAccount(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func issuedResponse(issued *service.IssuedCredentials) dto.TemporaryPasswordResponse {
	return dto.TemporaryPasswordResponse{
		User:              userResponse(issued.User),
		TemporaryPassword: issued.TemporaryPassword,
	}
}
