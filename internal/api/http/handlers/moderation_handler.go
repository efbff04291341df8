package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/api/dto"
	"github.com/spec-kit/character-gallery/internal/service"
)

// ModerationHandler serves the review queues.
type ModerationHandler struct {
	service *service.ModerationService
}

// NewModerationHandler constructs handler.
func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: moderationService}
}

// PendingCharacters GET /moderation/characters.
func (h *ModerationHandler) PendingCharacters(c *fiber.Ctx) error {
	characters, err := h.service.PendingCharacters(c.UserContext(), principal(c), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": characterList(characters)})
}

// ApproveCharacter POST /moderation/characters/:id/approve.
func (h *ModerationHandler) ApproveCharacter(c *fiber.Ctx) error {
	character, err := h.service.ApproveCharacter(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": characterResponse(character)})
}

// RejectCharacter POST /moderation/characters/:id/reject.
func (h *ModerationHandler) RejectCharacter(c *fiber.Ctx) error {
	var req dto.RejectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	character, err := h.service.RejectCharacter(c.UserContext(), principal(c), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": characterResponse(character)})
}

// PendingComments GET /moderation/comments.
func (h *ModerationHandler) PendingComments(c *fiber.Ctx) error {
	comments, err := h.service.PendingComments(c.UserContext(), principal(c), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentList(comments)})
}

// ApproveComment POST /moderation/comments/:id/approve.
func (h *ModerationHandler) ApproveComment(c *fiber.Ctx) error {
	comment, err := h.service.ApproveComment(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// RejectComment POST /moderation/comments/:id/reject.
func (h *ModerationHandler) RejectComment(c *fiber.Ctx) error {
	var req dto.RejectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.RejectComment(c.UserContext(), principal(c), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}
