package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/api/dto"
	"github.com/spec-kit/character-gallery/internal/service"
)

// CommentsHandler serves review endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// Create POST /characters/:id/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.Create(c.UserContext(), principal(c), c.Params("id"), service.CommentInput{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListForCharacter GET /characters/:id/comments.
func (h *CommentsHandler) ListForCharacter(c *fiber.Ctx) error {
	comments, err := h.service.ListApproved(c.UserContext(), principal(c), c.Params("id"), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentList(comments)})
}

// ListOwn GET /me/comments.
func (h *CommentsHandler) ListOwn(c *fiber.Ctx) error {
	comments, err := h.service.ListOwn(c.UserContext(), principal(c), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentList(comments)})
}

// Delete DELETE /comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
