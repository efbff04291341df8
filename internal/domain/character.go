package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
	"github.com/spec-kit/character-gallery/pkg/validator"
)

// CharacterStatus enumerates the moderation lifecycle of a character.
type CharacterStatus uint8

const (
	CharacterDraft CharacterStatus = iota + 1
	CharacterPending
	CharacterApproved
	CharacterRejected
)

func (s CharacterStatus) String() string {
	switch s {
	case CharacterDraft:
		return "DRAFT"
	case CharacterPending:
		return "PENDING"
	case CharacterApproved:
		return "APPROVED"
	case CharacterRejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("CharacterStatus(%d)", uint8(s))
	}
}

// ParseCharacterStatus parses the persisted status name.
func ParseCharacterStatus(s string) (CharacterStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DRAFT":
		return CharacterDraft, nil
	case "PENDING":
		return CharacterPending, nil
	case "APPROVED":
		return CharacterApproved, nil
	case "REJECTED":
		return CharacterRejected, nil
	default:
		return 0, fmt.Errorf("unknown character status %q", s)
	}
}

func (s CharacterStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *CharacterStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseCharacterStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Appearance holds the nine customizable visual attributes.
type Appearance struct {
	Gender    string
	SkinColor string
	HairColor string
	HairStyle string
	EyeColor  string
	FaceShape string
	BodyType  string
	Height    string
	Accessory string
}

// Attributes lists the attributes for validation, in display order.
func (a Appearance) Attributes() []validator.Attribute {
	return []validator.Attribute{
		{Field: "gender", Value: a.Gender},
		{Field: "skin_color", Value: a.SkinColor, Color: true},
		{Field: "hair_color", Value: a.HairColor, Color: true},
		{Field: "hair_style", Value: a.HairStyle},
		{Field: "eye_color", Value: a.EyeColor, Color: true},
		{Field: "face_shape", Value: a.FaceShape},
		{Field: "body_type", Value: a.BodyType},
		{Field: "height", Value: a.Height},
		{Field: "accessory", Value: a.Accessory},
	}
}

func (a Appearance) normalized() Appearance {
	return Appearance{
		Gender:    strings.TrimSpace(a.Gender),
		SkinColor: strings.ToUpper(strings.TrimSpace(a.SkinColor)),
		HairColor: strings.ToUpper(strings.TrimSpace(a.HairColor)),
		HairStyle: strings.TrimSpace(a.HairStyle),
		EyeColor:  strings.ToUpper(strings.TrimSpace(a.EyeColor)),
		FaceShape: strings.TrimSpace(a.FaceShape),
		BodyType:  strings.TrimSpace(a.BodyType),
		Height:    strings.TrimSpace(a.Height),
		Accessory: strings.TrimSpace(a.Accessory),
	}
}

// Character is a user-designed fantasy character.
//
// IsShared is only ever true while Status is CharacterApproved. ClassName is
// resolved from ClassID on read and never persisted. Version is the stored
// row version the character was read at; the store bumps it on every write.
type Character struct {
	ID              string
	Name            string
	OwnerID         string
	ClassID         string
	ClassName       string
	Appearance      Appearance
	Status          CharacterStatus
	IsShared        bool
	RejectionReason *string
	ReviewerID      *string
	ReviewedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int
}

func validateCharacterFields(name string, appearance Appearance) error {
	errs := validator.CharacterName(name)
	errs = append(errs, validator.Appearance(appearance.Attributes())...)
	return errs.Err()
}

// NewCharacter creates a draft owned by ownerID.
func NewCharacter(ownerID, name, classID string, appearance Appearance, now time.Time) (*Character, error) {
	if err := validateCharacterFields(name, appearance); err != nil {
		return nil, err
	}
	return &Character{
		Name:       strings.TrimSpace(name),
		OwnerID:    ownerID,
		ClassID:    classID,
		Appearance: appearance.normalized(),
		Status:     CharacterDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func unknownCharacterStatus(s CharacterStatus) error {
	return apperrors.NewInvalidState("character has unknown status %s", s)
}

// IsPublic reports whether the character appears in the gallery.
func (c *Character) IsPublic() bool {
	return c.Status == CharacterApproved && c.IsShared
}

// SubmitForReview moves a draft or rejected character into the review queue.
func (c *Character) SubmitForReview(now time.Time) error {
	switch c.Status {
	case CharacterDraft, CharacterRejected:
		c.Status = CharacterPending
		c.IsShared = false
		c.clearReview()
		c.UpdatedAt = now
		return nil
	case CharacterPending:
		return apperrors.NewInvalidTransition("character is already awaiting review")
	case CharacterApproved:
		return apperrors.NewInvalidTransition("an approved character cannot be submitted again")
	default:
		return unknownCharacterStatus(c.Status)
	}
}

// Approve accepts a pending character. Sharing is left to the owner.
func (c *Character) Approve(reviewerID string, now time.Time) error {
	switch c.Status {
	case CharacterPending:
		c.Status = CharacterApproved
		c.clearReview()
		c.markReviewed(reviewerID, now)
		return nil
	case CharacterDraft, CharacterApproved, CharacterRejected:
		return apperrors.NewInvalidTransition("only a pending character can be approved")
	default:
		return unknownCharacterStatus(c.Status)
	}
}

// Reject refuses a pending character and records the reason for its owner.
func (c *Character) Reject(reason, reviewerID string, now time.Time) error {
	switch c.Status {
	case CharacterPending:
	case CharacterDraft, CharacterApproved, CharacterRejected:
		return apperrors.NewInvalidTransition("only a pending character can be rejected")
	default:
		return unknownCharacterStatus(c.Status)
	}
	if err := validator.RejectionReason(reason).Err(); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(reason)
	c.Status = CharacterRejected
	c.IsShared = false
	c.RejectionReason = &trimmed
	c.markReviewed(reviewerID, now)
	return nil
}

// ToggleShare publishes or withdraws an approved character from the gallery.
func (c *Character) ToggleShare(now time.Time) error {
	switch c.Status {
	case CharacterApproved:
		c.IsShared = !c.IsShared
		c.UpdatedAt = now
		return nil
	case CharacterDraft, CharacterPending, CharacterRejected:
		return apperrors.NewInvalidState("only an approved character can be shared")
	default:
		return unknownCharacterStatus(c.Status)
	}
}

// UpdateAppearance edits the character. A pending character is frozen.
// Renaming an approved character sends it back to review and unshares it;
// cosmetic edits keep it approved. The returned flag reports that demotion.
func (c *Character) UpdateAppearance(name, classID string, appearance Appearance, now time.Time) (bool, error) {
	switch c.Status {
	case CharacterDraft, CharacterRejected, CharacterApproved:
	case CharacterPending:
		return false, apperrors.NewInvalidState("a character awaiting review cannot be edited")
	default:
		return false, unknownCharacterStatus(c.Status)
	}
	if err := validateCharacterFields(name, appearance); err != nil {
		return false, err
	}

	name = strings.TrimSpace(name)
	demoted := c.Status == CharacterApproved && name != c.Name

	c.Name = name
	c.ClassID = classID
	c.Appearance = appearance.normalized()
	if demoted {
		c.Status = CharacterPending
		c.IsShared = false
		c.clearReview()
	}
	c.UpdatedAt = now
	return demoted, nil
}

func (c *Character) markReviewed(reviewerID string, now time.Time) {
	reviewer := reviewerID
	reviewedAt := now
	c.ReviewerID = &reviewer
	c.ReviewedAt = &reviewedAt
	c.UpdatedAt = now
}

func (c *Character) clearReview() {
	c.RejectionReason = nil
	c.ReviewerID = nil
	c.ReviewedAt = nil
}
