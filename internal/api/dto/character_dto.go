package dto

import (
	"time"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// AppearanceDTO mirrors the nine appearance attributes.
type AppearanceDTO struct {
	Gender    string `json:"gender"`
	SkinColor string `json:"skin_color"`
	HairColor string `json:"hair_color"`
	HairStyle string `json:"hair_style"`
	EyeColor  string `json:"eye_color"`
	FaceShape string `json:"face_shape"`
	BodyType  string `json:"body_type"`
	Height    string `json:"height"`
	Accessory string `json:"accessory"`
}

// CharacterRequest creates or edits a character.
type CharacterRequest struct {
	Name       string        `json:"name"`
	ClassID    string        `json:"class_id"`
	Appearance AppearanceDTO `json:"appearance"`
}

// CharacterResponse is the flat view of a character.
type CharacterResponse struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	OwnerID         string                 `json:"owner_id"`
	ClassID         string                 `json:"class_id"`
	ClassName       string                 `json:"class_name"`
	Appearance      AppearanceDTO          `json:"appearance"`
	Status          domain.CharacterStatus `json:"status"`
	IsShared        bool                   `json:"is_shared"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time             `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// GalleryItemResponse is a shared character with its review summary.
type GalleryItemResponse struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	OwnerID       string        `json:"owner_id"`
	OwnerPseudo   string        `json:"owner_pseudo"`
	ClassName     string        `json:"class_name"`
	Appearance    AppearanceDTO `json:"appearance"`
	AverageRating float64       `json:"average_rating"`
	ReviewCount   int           `json:"review_count"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CharacterClassResponse is a class catalogue entry.
type CharacterClassResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RejectRequest carries a moderator's reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}
