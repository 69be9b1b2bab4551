package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chat-app/middlewares"
	"chat-app/services"
	"chat-app/utils"
)

func GetConversations(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	summaries, err := services.ListConversations(user.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to fetch conversations")
		return
	}
	utils.RespondSuccess(c, summaries, nil)
}

type createConversationInput struct {
	TargetUserID   uint   `json:"target_user_id"`
	GroupName      string `json:"group_name"`
	ParticipantIDs []uint `json:"participant_ids"`
}

// CreateConversation dispatches to the resolver: a target_user_id asks
// for a direct conversation, a group_name plus participant_ids for a
// group one.
func CreateConversation(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var input createConversationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case input.TargetUserID != 0:
		conv, created, err := services.GetOrCreateDirectConversation(user.ID, input.TargetUserID)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		if !created {
			utils.RespondSuccess(c, gin.H{"conversation_id": conv.ID, "created": false}, nil)
			return
		}
		utils.RespondCreated(c, gin.H{"conversation_id": conv.ID, "created": true})

	case input.GroupName != "" || len(input.ParticipantIDs) > 0:
		conv, err := services.CreateGroupConversation(user.ID, input.GroupName, input.ParticipantIDs)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		utils.RespondCreated(c, gin.H{"conversation_id": conv.ID, "name": conv.Name, "created": true})

	default:
		utils.RespondError(c, http.StatusBadRequest,
			"either target_user_id or group_name and participant_ids are required")
	}
}

func GetConversationMessages(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	conversationID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid conversation id")
		return
	}

	messages, err := services.ListMessages(user.ID, uint(conversationID))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, messages, nil)
}
