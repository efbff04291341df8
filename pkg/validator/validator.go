package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

const (
	CharacterNameMaxLength = 50
	ArticleTitleMaxLength  = 100
	AppearanceMaxLength    = 50
	CommentTextMinLength   = 10
	CommentTextMaxLength   = 500
	ReasonMinLength        = 10
	ReasonMaxLength        = 500
	RatingMin              = 1
	RatingMax              = 5
	PseudoMinLength        = 3
	PseudoMaxLength        = 30
	PasswordMinLength      = 12
)

// Errors collects field failures in the order they were found.
type Errors []apperrors.FieldViolation

func (v Errors) HasErrors() bool {
	return len(v) > 0
}

func (v *Errors) Add(field, format string, args ...any) {
	*v = append(*v, apperrors.FieldViolation{Field: field, Format: format, Args: args})
}

// Has reports whether field failed at least once.
func (v Errors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Err returns a VALIDATION_FAILED error, or nil when nothing failed.
func (v Errors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperrors.NewFieldValidationError(v)
}

var (
	pseudoRegex   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// CharacterName checks a character display name.
func CharacterName(name string) Errors {
	var errs Errors
	boundedName(&errs, "name", name, CharacterNameMaxLength)
	return errs
}

// ArticleTitle checks a gallery article title.
func ArticleTitle(title string) Errors {
	var errs Errors
	boundedName(&errs, "title", title, ArticleTitleMaxLength)
	return errs
}

func boundedName(errs *Errors, field, value string, max int) {
	value = strings.TrimSpace(value)
	if value == "" {
		errs.Add(field, "%s is required", field)
		return
	}
	if runeLen(value) > max {
		errs.Add(field, "%s must be at most %d characters", field, max)
	}
}

// Attribute is one appearance attribute to check.
type Attribute struct {
	Field string
	Value string
	Color bool
}

// Appearance checks appearance attributes: colours must be #RRGGBB, the rest
// short free-form strings.
func Appearance(attrs []Attribute) Errors {
	var errs Errors
	for _, attr := range attrs {
		value := strings.TrimSpace(attr.Value)
		switch {
		case value == "":
			errs.Add(attr.Field, "%s is required", attr.Field)
		case attr.Color && !hexColorRegex.MatchString(value):
			errs.Add(attr.Field, "%s must be a hex colour like #A1B2C3", attr.Field)
		case runeLen(value) > AppearanceMaxLength:
			errs.Add(attr.Field, "%s must be at most %d characters", attr.Field, AppearanceMaxLength)
		}
	}
	return errs
}

// Rating checks the review score.
func Rating(rating int) Errors {
	var errs Errors
	if rating < RatingMin || rating > RatingMax {
		errs.Add("rating", "rating must be between %d and %d", RatingMin, RatingMax)
	}
	return errs
}

// CommentText checks the review body.
func CommentText(text string) Errors {
	var errs Errors
	boundedText(&errs, "text", text, CommentTextMinLength, CommentTextMaxLength)
	return errs
}

// Comment checks rating and text together.
func Comment(rating int, text string) Errors {
	errs := Rating(rating)
	errs = append(errs, CommentText(text)...)
	return errs
}

// RejectionReason checks a moderator's rejection reason.
func RejectionReason(reason string) Errors {
	var errs Errors
	boundedText(&errs, "reason", reason, ReasonMinLength, ReasonMaxLength)
	return errs
}

func boundedText(errs *Errors, field, value string, min, max int) {
	value = strings.TrimSpace(value)
	if value == "" {
		errs.Add(field, "%s is required", field)
		return
	}
	n := runeLen(value)
	if n < min || n > max {
		errs.Add(field, "%s must be between %d and %d characters", field, min, max)
	}
}

// Pseudo checks a public user handle.
func Pseudo(pseudo string) Errors {
	var errs Errors
	pseudo = strings.TrimSpace(pseudo)
	switch {
	case pseudo == "":
		errs.Add("pseudo", "pseudo is required")
	case runeLen(pseudo) < PseudoMinLength || runeLen(pseudo) > PseudoMaxLength:
		errs.Add("pseudo", "pseudo must be between %d and %d characters", PseudoMinLength, PseudoMaxLength)
	case !pseudoRegex.MatchString(pseudo):
		errs.Add("pseudo", "pseudo can only contain letters, numbers, _ and -")
	}
	return errs
}

// Email checks an e-mail address.
func Email(email string) Errors {
	var errs Errors
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "email is invalid")
	}
	return errs
}

// Registration checks a self-registration or employee creation payload.
func Registration(pseudo, email, password string) Errors {
	errs := Pseudo(pseudo)
	errs = append(errs, Email(email)...)
	errs = append(errs, Password(password).Errors...)
	return errs
}
