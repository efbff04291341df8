package domain

// GalleryEntry is a publicly visible character with its review summary.
type GalleryEntry struct {
	Character     Character
	OwnerPseudo   string
	AverageRating float64
	ReviewCount   int
}
