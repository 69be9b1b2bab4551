package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chat-app/config"
	"chat-app/models"
)

// MessagePayload is the new_message event body and the shape history
// reads return. Timestamp is ISO-8601.
type MessagePayload struct {
	MessageID      uint   `json:"message_id"`
	ConversationID uint   `json:"conversation_id"`
	SenderID       uint   `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
	Status         string `json:"status"`
}

func newMessagePayload(m *models.Message, senderUsername string) MessagePayload {
	return MessagePayload{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderUsername: senderUsername,
		Content:        m.Content,
		Timestamp:      m.Timestamp.Format(time.RFC3339Nano),
		Status:         m.Status,
	}
}

// SendMessage runs the full pipeline for one message: validate, check
// the sender's membership, persist the message together with the
// conversation's activity bump in a single transaction, then broadcast
// to the conversation's room. Any rejection returns exactly one error
// with nothing persisted and nothing broadcast, and a broadcast only
// ever happens after a successful commit.
func SendMessage(hub *Hub, sender *models.User, conversationID uint, content string) (*MessagePayload, error) {
	if sender == nil {
		return nil, ErrUnauthenticated
	}
	if conversationID == 0 {
		return nil, fmt.Errorf("%w: conversation_id is required", ErrInvalidInput)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	var conv models.Conversation
	if err := config.DB.First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: conversation does not exist", ErrNotFound)
		}
		return nil, err
	}

	if !IsParticipant(sender.ID, conversationID) {
		return nil, ErrNotAuthorized
	}

	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       sender.ID,
		Content:        content,
		Status:         models.MessageStatusSent,
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		// Lock the conversation row before reading its activity time: a
		// plain read under REPEATABLE READ is a snapshot read that takes
		// no lock, so two concurrent sends could both see the same
		// last_message_at and commit timestamps out of persist order.
		// Timestamps within a conversation must be strictly increasing
		// even when the clock resolution ties. SQLite has no FOR UPDATE;
		// its writers serialize on the database write lock instead.
		q := tx
		if tx.Dialector.Name() != "sqlite" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var current models.Conversation
		if err := q.First(&current, conversationID).Error; err != nil {
			return err
		}
		ts := time.Now()
		if !ts.After(current.LastMessageAt) {
			ts = current.LastMessageAt.Add(time.Microsecond)
		}
		msg.Timestamp = ts

		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("last_message_at", ts).Error
	})
	if err != nil {
		return nil, err
	}

	payload := newMessagePayload(&msg, sender.Username)
	if hub != nil {
		hub.Publish(ConversationRoom(conversationID), Event{Event: "new_message", Data: payload})
	}
	return &payload, nil
}

// ListMessages returns the conversation's persisted messages, oldest
// first, for a participant only.
func ListMessages(userID, conversationID uint) ([]MessagePayload, error) {
	var conv models.Conversation
	if err := config.DB.First(&conv, conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: conversation does not exist", ErrNotFound)
		}
		return nil, err
	}

	if !IsParticipant(userID, conversationID) {
		return nil, ErrNotAuthorized
	}

	var messages []models.Message
	err := config.DB.Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	usernames := make(map[uint]string)
	payloads := make([]MessagePayload, 0, len(messages))
	for i := range messages {
		name, ok := usernames[messages[i].SenderID]
		if !ok {
			var sender models.User
			if err := config.DB.First(&sender, messages[i].SenderID).Error; err == nil {
				name = sender.Username
			}
			usernames[messages[i].SenderID] = name
		}
		payloads = append(payloads, newMessagePayload(&messages[i], name))
	}
	return payloads, nil
}
