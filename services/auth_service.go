package services

import (
	"log"

	"chat-app/config"
	"chat-app/models"
)

// IsParticipant is the single authorization predicate guarding every
// join, send and history read. It answers false for conversations that
// do not exist and is deliberately never cached per connection, because
// membership can change while a connection lives.
func IsParticipant(userID, conversationID uint) bool {
	var count int64
	err := config.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		log.Printf("participant lookup failed for user %d conversation %d: %v", userID, conversationID, err)
		return false
	}
	return count > 0
}
