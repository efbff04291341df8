package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/api/dto"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/service"
)

// CharactersHandler manages owner-side character endpoints and the gallery.
type CharactersHandler struct {
	service *service.CharacterService
}

// NewCharactersHandler constructs handler.
func NewCharactersHandler(characterService *service.CharacterService) *CharactersHandler {
	return &CharactersHandler{service: characterService}
}

// Create POST /characters.
func (h *CharactersHandler) Create(c *fiber.Ctx) error {
	var req dto.CharacterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	character, err := h.service.Create(c.UserContext(), principal(c), characterInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": characterResponse(character)})
}

// ListOwn GET /characters.
func (h *CharactersHandler) ListOwn(c *fiber.Ctx) error {
	filter := service.CharacterListFilter{}
	for _, part := range splitList(c.Query("status")) {
		status, err := domain.ParseCharacterStatus(part)
		if err != nil {
			return invalidQuery("status")
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	page := parsePage(c)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	characters, err := h.service.ListOwn(c.UserContext(), principal(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": characterList(characters)})
}

// Get GET /characters/:id.
func (h *CharactersHandler) Get(c *fiber.Ctx) error {
	character, err := h.service.Get(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": characterResponse(character)})
}

// Update PUT /characters/:id.
func (h *CharactersHandler) Update(c *fiber.Ctx) error {
	var req dto.CharacterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	character, err := h.service.Update(c.UserContext(), principal(c), c.Params("id"), characterInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": characterResponse(character)})
}

// Submit POST /characters/:id/submit.
func (h *CharactersHandler) Submit(c *fiber.Ctx) error {
	character, err := h.service.Submit(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": characterResponse(character)})
}

// ToggleShare POST /characters/:id/share.
func (h *CharactersHandler) ToggleShare(c *fiber.Ctx) error {
	character, err := h.service.ToggleShare(c.UserContext(), principal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": characterResponse(character)})
}

// Delete DELETE /characters/:id.
func (h *CharactersHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Gallery GET /gallery.
func (h *CharactersHandler) Gallery(c *fiber.Ctx) error {
	page := parsePage(c)
	entries, err := h.service.Gallery(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	items := make([]dto.GalleryItemResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.GalleryItemResponse{
			ID:            e.Character.ID,
			Name:          e.Character.Name,
			OwnerID:       e.Character.OwnerID,
			OwnerPseudo:   e.OwnerPseudo,
			ClassName:     e.Character.ClassName,
			Appearance:    appearanceDTO(e.Character.Appearance),
			AverageRating: e.AverageRating,
			ReviewCount:   e.ReviewCount,
			UpdatedAt:     e.Character.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Classes GET /classes.
func (h *CharactersHandler) Classes(c *fiber.Ctx) error {
	classes, err := h.service.Classes(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CharacterClassResponse, 0, len(classes))
	for _, cl := range classes {
		items = append(items, dto.CharacterClassResponse{ID: cl.ID, Name: cl.Name, Description: cl.Description})
	}
	return c.JSON(fiber.Map{"data": items})
}

func characterInput(req dto.CharacterRequest) service.CharacterInput {
	return service.CharacterInput{
		Name:       req.Name,
		ClassID:    req.ClassID,
		Appearance: appearanceFromDTO(req.Appearance),
	}
}
