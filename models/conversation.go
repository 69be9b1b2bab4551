package models

import "time"

const (
	ConversationDirect = "direct"
	ConversationGroup  = "group"
)

// Conversation is a direct (two-party) or group messaging context.
// Group conversations carry a name; direct ones never do — the display
// name of a direct conversation is derived from the other participant.
type Conversation struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"conversation_id"`
	Name          string    `gorm:"size:100" json:"name,omitempty"`
	Type          string    `gorm:"size:20;index;not null" json:"type"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`

	Participants []ConversationParticipant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Messages     []Message                 `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
