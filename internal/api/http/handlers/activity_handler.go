package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/api/dto"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/service"
)

// ActivityHandler serves the audit log.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: activityService}
}

// List GET /activity?action=A,B&actor_id=&target_id=&from=&to=.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	query := service.ActivityQuery{
		ActorID:  c.Query("actor_id"),
		TargetID: c.Query("target_id"),
	}
	for _, part := range splitList(c.Query("action")) {
		action, err := domain.ParseActivityAction(part)
		if err != nil {
			return invalidQuery("action")
		}
		query.Actions = append(query.Actions, action)
	}
	var err error
	if query.From, err = parseTime(c, "from"); err != nil {
		return err
	}
	if query.To, err = parseTime(c, "to"); err != nil {
		return err
	}
	page := parsePage(c)
	query.Limit, query.Offset = page.Limit, page.Offset

	entries, err := h.service.List(c.UserContext(), principal(c), query)
	if err != nil {
		return err
	}
	items := make([]dto.ActivityLogResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.ActivityLogResponse{
			ID:          e.ID,
			Timestamp:   e.Timestamp,
			Action:      e.Action,
			ActorID:     e.ActorID,
			ActorPseudo: e.ActorPseudo,
			TargetType:  e.TargetType,
			TargetID:    e.TargetID,
			TargetName:  e.TargetName,
			Details:     e.Details,
			IPAddress:   e.IPAddress,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
