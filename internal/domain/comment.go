package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
	"github.com/spec-kit/character-gallery/pkg/validator"
)

// CommentStatus enumerates the moderation lifecycle of a review.
type CommentStatus uint8

const (
	CommentPending CommentStatus = iota + 1
	CommentApproved
	CommentRejected
)

func (s CommentStatus) String() string {
	switch s {
	case CommentPending:
		return "PENDING"
	case CommentApproved:
		return "APPROVED"
	case CommentRejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("CommentStatus(%d)", uint8(s))
	}
}

// ParseCommentStatus parses the persisted status name.
func ParseCommentStatus(s string) (CommentStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return CommentPending, nil
	case "APPROVED":
		return CommentApproved, nil
	case "REJECTED":
		return CommentRejected, nil
	default:
		return 0, fmt.Errorf("unknown comment status %q", s)
	}
}

func (s CommentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *CommentStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseCommentStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Comment is a rated review left on a shared character. AuthorPseudo is
// resolved on read.
type Comment struct {
	ID              string
	CharacterID     string
	AuthorID        string
	AuthorPseudo    string
	Rating          int
	Text            string
	Status          CommentStatus
	RejectionReason *string
	ReviewerID      *string
	CommentedAt     time.Time
	ReviewedAt      *time.Time
}

// NewComment creates a pending review.
func NewComment(characterID, authorID string, rating int, text string, now time.Time) (*Comment, error) {
	if err := validator.Comment(rating, text).Err(); err != nil {
		return nil, err
	}
	return &Comment{
		CharacterID: characterID,
		AuthorID:    authorID,
		Rating:      rating,
		Text:        strings.TrimSpace(text),
		Status:      CommentPending,
		CommentedAt: now,
	}, nil
}

// requirePending returns notPending when the comment was already reviewed.
func (c *Comment) requirePending(notPending error) error {
	switch c.Status {
	case CommentPending:
		return nil
	case CommentApproved, CommentRejected:
		return notPending
	default:
		return apperrors.NewInvalidState("comment has unknown status %s", c.Status)
	}
}

// Approve publishes a pending review.
func (c *Comment) Approve(reviewerID string, now time.Time) error {
	if err := c.requirePending(apperrors.NewInvalidTransition("only a pending comment can be approved")); err != nil {
		return err
	}
	c.Status = CommentApproved
	c.markReviewed(reviewerID, now)
	return nil
}

// Reject refuses a pending review. Rejection is final.
func (c *Comment) Reject(reason, reviewerID string, now time.Time) error {
	if err := c.requirePending(apperrors.NewInvalidTransition("only a pending comment can be rejected")); err != nil {
		return err
	}
	if err := validator.RejectionReason(reason).Err(); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(reason)
	c.Status = CommentRejected
	c.RejectionReason = &trimmed
	c.markReviewed(reviewerID, now)
	return nil
}

func (c *Comment) markReviewed(reviewerID string, now time.Time) {
	reviewer := reviewerID
	reviewedAt := now
	c.ReviewerID = &reviewer
	c.ReviewedAt = &reviewedAt
}
