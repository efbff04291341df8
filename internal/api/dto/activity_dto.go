package dto

import (
	"time"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// ActivityLogResponse is one audit entry.
type ActivityLogResponse struct {
	ID          string                `json:"id"`
	Timestamp   time.Time             `json:"timestamp"`
	Action      domain.ActivityAction `json:"action"`
	ActorID     string                `json:"actor_id,omitempty"`
	ActorPseudo string                `json:"actor_pseudo,omitempty"`
	TargetType  string                `json:"target_type,omitempty"`
	TargetID    string                `json:"target_id,omitempty"`
	TargetName  string                `json:"target_name,omitempty"`
	Details     string                `json:"details,omitempty"`
	IPAddress   string                `json:"ip_address,omitempty"`
}
