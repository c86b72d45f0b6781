package audit

import "time"

// Event is one entry of the append-only audit trail.
type Event struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	ActorEmail string         `json:"actorEmail"`
	ActorRole  string         `json:"actorRole"`
	TargetID   string         `json:"targetId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
