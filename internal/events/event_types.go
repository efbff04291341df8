package events

import (
	"time"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID    string `json:"user_id,omitempty"`
	Pseudo    string `json:"pseudo,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// ActorFrom builds an Actor from the caller principal. A nil principal
// yields an anonymous actor.
func ActorFrom(principal *domain.Principal) Actor {
	if principal == nil {
		return Actor{}
	}
	return Actor{UserID: principal.UserID, Pseudo: principal.Pseudo, IPAddress: principal.ClientIP}
}

// Target identifies the entity an event is about.
type Target struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Event represents a domain event emitted by services. Its type doubles as
// the audited action.
type Event struct {
	ID        string                `json:"id"`
	Type      domain.ActivityAction `json:"type"`
	Actor     Actor                 `json:"actor"`
	Target    Target                `json:"target"`
	Details   string                `json:"details,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
	Payload   interface{}           `json:"payload,omitempty"`
}

// CharacterPayload accompanies character events.
type CharacterPayload struct {
	OwnerID  string `json:"owner_id"`
	Status   string `json:"status"`
	IsShared bool   `json:"is_shared"`
	Reason   string `json:"reason,omitempty"`
	Demoted  bool   `json:"demoted,omitempty"`
}

// CommentPayload accompanies comment events.
type CommentPayload struct {
	CharacterID string `json:"character_id"`
	AuthorID    string `json:"author_id"`
	Rating      int    `json:"rating"`
	Reason      string `json:"reason,omitempty"`
}

// AccountPayload accompanies account events.
type AccountPayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
