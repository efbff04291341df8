package dto

import (
	"time"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// CommentRequest posts a review.
type CommentRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// CommentResponse is the flat view of a review.
type CommentResponse struct {
	ID              string               `json:"id"`
	CharacterID     string               `json:"character_id"`
	AuthorID        string               `json:"author_id"`
	AuthorPseudo    string               `json:"author_pseudo"`
	Rating          int                  `json:"rating"`
	Text            string               `json:"text"`
	Status          domain.CommentStatus `json:"status"`
	RejectionReason *string              `json:"rejection_reason,omitempty"`
	CommentedAt     time.Time            `json:"commented_at"`
	ReviewedAt      *time.Time           `json:"reviewed_at,omitempty"`
}
