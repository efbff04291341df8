package domain

// CharacterClass is reference data a character is built on (warrior, mage...).
type CharacterClass struct {
	ID          string
	Name        string
	Description string
}
