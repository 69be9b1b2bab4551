package models

import "time"

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// Message is append-only: after the pipeline persists it, only the
// status field may ever change.
type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"message_id"`
	ConversationID uint      `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint      `gorm:"index;not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Timestamp      time.Time `gorm:"index;not null" json:"timestamp"`
	Status         string    `gorm:"size:20;not null" json:"status"`
}
