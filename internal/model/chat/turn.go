package chat

import "time"

// RoleUser tags turns written by the human side of a conversation.
// Assistant turns are tagged with the responding persona's display name.
const RoleUser = "User"

// Turn is a single role-tagged message in a conversation. Turns are
// immutable once stored.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
