package models

import "time"

// ConversationParticipant is the durable membership record. A given
// (conversation, user) pair exists at most once.
type ConversationParticipant struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID uint      `gorm:"uniqueIndex:idx_conversation_user;not null" json:"conversation_id"`
	UserID         uint      `gorm:"uniqueIndex:idx_conversation_user;not null" json:"user_id"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
