package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/character-gallery/internal/api/dto"
	"github.com/spec-kit/character-gallery/internal/auth"
	"github.com/spec-kit/character-gallery/internal/domain"
	"github.com/spec-kit/character-gallery/internal/repository"
	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

func principal(c *fiber.Ctx) *domain.Principal {
	p, _ := auth.PrincipalFromContext(c)
	return p
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func invalidQuery(name string) error {
	return apperrors.NewDomainError(apperrors.CodeValidationFailed, fiber.StatusBadRequest,
		map[string]any{"parameter": name}, "invalid query parameter %s", name)
}

// parsePage reads page (1-based) and page_size, clamped so the offset
// cannot overflow.
func parsePage(c *fiber.Ctx) repository.Page {
	page := min(parseInt(c.Query("page"), 1), repository.MaxPage)
	pageSize := min(parseInt(c.Query("page_size"), 20), repository.MaxPageSize)
	return repository.Page{Limit: pageSize, Offset: (page - 1) * pageSize}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseTime(c *fiber.Ctx, name string) (*time.Time, error) {
	val := c.Query(name)
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, invalidQuery(name)
	}
	return &t, nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 u.ID,
		Pseudo:             u.Pseudo,
		Email:              u.Email,
		Role:               u.Role,
		IsSuspended:        u.IsSuspended,
		MustChangePassword: u.MustChangePassword,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func appearanceDTO(a domain.Appearance) dto.AppearanceDTO {
	return dto.AppearanceDTO{
		Gender:    a.Gender,
		SkinColor: a.SkinColor,
		HairColor: a.HairColor,
		HairStyle: a.HairStyle,
		EyeColor:  a.EyeColor,
		FaceShape: a.FaceShape,
		BodyType:  a.BodyType,
		Height:    a.Height,
		Accessory: a.Accessory,
	}
}

func appearanceFromDTO(a dto.AppearanceDTO) domain.Appearance {
	return domain.Appearance{
		Gender:    a.Gender,
		SkinColor: a.SkinColor,
		HairColor: a.HairColor,
		HairStyle: a.HairStyle,
		EyeColor:  a.EyeColor,
		FaceShape: a.FaceShape,
		BodyType:  a.BodyType,
		Height:    a.Height,
		Accessory: a.Accessory,
	}
}

func characterResponse(c *domain.Character) dto.CharacterResponse {
	return dto.CharacterResponse{
		ID:              c.ID,
		Name:            c.Name,
		OwnerID:         c.OwnerID,
		ClassID:         c.ClassID,
		ClassName:       c.ClassName,
		Appearance:      appearanceDTO(c.Appearance),
		Status:          c.Status,
		IsShared:        c.IsShared,
		RejectionReason: c.RejectionReason,
		ReviewedAt:      c.ReviewedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func characterList(characters []domain.Character) []dto.CharacterResponse {
	items := make([]dto.CharacterResponse, 0, len(characters))
	for i := range characters {
		items = append(items, characterResponse(&characters[i]))
	}
	return items
}

func commentResponse(c *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:              c.ID,
		CharacterID:     c.CharacterID,
		AuthorID:        c.AuthorID,
		AuthorPseudo:    c.AuthorPseudo,
		Rating:          c.Rating,
		Text:            c.Text,
		Status:          c.Status,
		RejectionReason: c.RejectionReason,
		CommentedAt:     c.CommentedAt,
		ReviewedAt:      c.ReviewedAt,
	}
}

func commentList(comments []domain.Comment) []dto.CommentResponse {
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return items
}
