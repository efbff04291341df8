package validator

import "unicode"

// Strength labels indexed by score.
const (
	StrengthVeryWeak   = "very weak"
	StrengthWeak       = "weak"
	StrengthMedium     = "medium"
	StrengthStrong     = "strong"
	StrengthVeryStrong = "very strong"
)

const maxPasswordScore = 5

// PasswordReport is the outcome of a password check.
type PasswordReport struct {
	Score  int
	Label  string
	Errors Errors
}

// Valid reports whether every rule passed.
func (r PasswordReport) Valid() bool {
	return !r.Errors.HasErrors()
}

// Password scores a candidate password. The score starts at 5 and each failed
// rule (length, upper, lower, digit, special) costs one point.
func Password(password string) PasswordReport {
	var errs Errors
	score := maxPasswordScore

	if runeLen(password) < PasswordMinLength {
		errs.Add("password", "password must be at least %d characters", PasswordMinLength)
		score--
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}
	if !hasUpper {
		errs.Add("password", "password must contain an uppercase letter")
		score--
	}
	if !hasLower {
		errs.Add("password", "password must contain a lowercase letter")
		score--
	}
	if !hasDigit {
		errs.Add("password", "password must contain a digit")
		score--
	}
	if !hasSpecial {
		errs.Add("password", "password must contain a special character")
		score--
	}
	if score < 0 {
		score = 0
	}
	return PasswordReport{Score: score, Label: StrengthLabel(score), Errors: errs}
}

// StrengthLabel maps a 0-5 score to its label.
func StrengthLabel(score int) string {
	switch {
	case score <= 0:
		return StrengthVeryWeak
	case score == 1:
		return StrengthWeak
	case score == 2:
		return StrengthMedium
	case score == 3:
		return StrengthStrong
	default:
		return StrengthVeryStrong
	}
}
