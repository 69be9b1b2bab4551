package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"chat-app/config"
	"chat-app/models"
)

// GetOrCreateDirectConversation resolves a one-on-one conversation
// between the requester and the target, creating it only if no direct
// conversation with exactly those two members exists. The second return
// value reports whether a conversation was created by this call.
func GetOrCreateDirectConversation(requesterID, targetID uint) (*models.Conversation, bool, error) {
	if requesterID == targetID {
		return nil, false, fmt.Errorf("%w: cannot create a conversation with yourself", ErrConflict)
	}

	var target models.User
	if err := config.DB.First(&target, targetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, fmt.Errorf("%w: target user does not exist", ErrNotFound)
		}
		return nil, false, err
	}

	existing, err := findDirectConversation(requesterID, targetID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	conv := models.Conversation{
		Type:          models.ConversationDirect,
		LastMessageAt: time.Now(),
	}
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		participants := []models.ConversationParticipant{
			{ConversationID: conv.ID, UserID: requesterID},
			{ConversationID: conv.ID, UserID: targetID},
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &conv, true, nil
}

// findDirectConversation looks for a direct conversation whose member
// set is exactly {userA, userB}. Checking the membership set per
// conversation is what makes this correct: filtering membership rows
// alone cannot tell "both in the same conversation" from "each in some
// conversation", and cannot exclude group conversations that happen to
// contain both users plus others.
func findDirectConversation(userA, userB uint) (*models.Conversation, error) {
	var candidates []models.Conversation
	err := config.DB.
		Joins("JOIN conversation_participants p ON p.conversation_id = conversations.id").
		Where("conversations.type = ? AND p.user_id = ?", models.ConversationDirect, userA).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		var participants []models.ConversationParticipant
		if err := config.DB.Where("conversation_id = ?", candidates[i].ID).Find(&participants).Error; err != nil {
			return nil, err
		}
		if len(participants) != 2 {
			continue
		}
		// The candidate already contains userA, so the set is exactly
		// {userA, userB} iff the second member is userB.
		if participants[0].UserID == userB || participants[1].UserID == userB {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// CreateGroupConversation creates a group conversation with the
// requester plus the given members. All ids must resolve to existing
// users; otherwise nothing is created. Group creation is never
// deduplicated — every valid call makes a new conversation.
func CreateGroupConversation(requesterID uint, name string, memberIDs []uint) (*models.Conversation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group conversations must have a name", ErrInvalidInput)
	}
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("%w: participant ids are required", ErrInvalidInput)
	}

	memberSet := map[uint]struct{}{requesterID: {}}
	for _, id := range memberIDs {
		memberSet[id] = struct{}{}
	}
	if len(memberSet) < 2 {
		return nil, fmt.Errorf("%w: a group needs at least two members", ErrInvalidInput)
	}

	members := make([]uint, 0, len(memberSet))
	for id := range memberSet {
		members = append(members, id)
	}

	conv := models.Conversation{
		Type:          models.ConversationGroup,
		Name:          name,
		LastMessageAt: time.Now(),
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id IN ?", members).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(members) {
			return fmt.Errorf("%w: one or more participants do not exist", ErrNotFound)
		}

		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		participants := make([]models.ConversationParticipant, 0, len(members))
		for _, id := range members {
			participants = append(participants, models.ConversationParticipant{
				ConversationID: conv.ID,
				UserID:         id,
			})
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ConversationSummary is what the conversation list endpoint returns
// per conversation the user participates in.
type ConversationSummary struct {
	ConversationID uint      `json:"conversation_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	LastMessageAt  time.Time `json:"last_message_at"`
	LastMessage    string    `json:"last_message_preview"`
}

// ListConversations returns the user's conversations, most recently
// active first. Direct conversations take the other participant's
// username as their display name.
func ListConversations(userID uint) ([]ConversationSummary, error) {
	var conversations []models.Conversation
	err := config.DB.
		Joins("JOIN conversation_participants p ON p.conversation_id = conversations.id").
		Where("p.user_id = ?", userID).
		Order("conversations.last_message_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for i := range conversations {
		conv := &conversations[i]
		name := conv.Name
		if conv.Type == models.ConversationDirect {
			name = directConversationName(conv.ID, userID)
		}

		var last models.Message
		preview := ""
		err := config.DB.Where("conversation_id = ?", conv.ID).
			Order("timestamp DESC").
			First(&last).Error
		if err == nil {
			preview = last.Content
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		summaries = append(summaries, ConversationSummary{
			ConversationID: conv.ID,
			Name:           name,
			Type:           conv.Type,
			LastMessageAt:  conv.LastMessageAt,
			LastMessage:    preview,
		})
	}
	return summaries, nil
}

func directConversationName(conversationID, userID uint) string {
	var other models.User
	err := config.DB.
		Joins("JOIN conversation_participants p ON p.user_id = users.id").
		Where("p.conversation_id = ? AND p.user_id != ?", conversationID, userID).
		First(&other).Error
	if err != nil {
		return "Unknown User"
	}
	return other.Username
}
