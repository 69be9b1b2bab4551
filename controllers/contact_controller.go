package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chat-app/config"
	"chat-app/middlewares"
	"chat-app/models"
	"chat-app/utils"
)

func ListContacts(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var contacts []models.Contact
	if err := config.DB.Where("user_id = ?", user.ID).Find(&contacts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to fetch contacts")
		return
	}

	out := make([]gin.H, 0, len(contacts))
	for _, entry := range contacts {
		var contactUser models.User
		if err := config.DB.First(&contactUser, entry.ContactUserID).Error; err != nil {
			continue
		}
		alias := entry.Alias
		if alias == "" {
			alias = contactUser.Username
		}
		out = append(out, gin.H{
			"contact_id": entry.ID,
			"user_id":    contactUser.ID,
			"username":   contactUser.Username,
			"alias":      alias,
		})
	}
	utils.RespondSuccess(c, out, nil)
}

type addContactInput struct {
	Username string `json:"username" binding:"required"`
	Alias    string `json:"alias"`
}

func AddContact(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var input addContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "username of contact is required")
		return
	}

	var contactUser models.User
	if err := config.DB.Where("username = ?", input.Username).First(&contactUser).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "user not found")
		return
	}
	if contactUser.ID == user.ID {
		utils.RespondError(c, http.StatusConflict, "you cannot add yourself as a contact")
		return
	}

	contact := models.Contact{
		UserID:        user.ID,
		ContactUserID: contactUser.ID,
		Alias:         input.Alias,
	}
	if err := config.DB.Create(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, "contact already exists")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "failed to add contact")
		return
	}

	utils.RespondCreated(c, gin.H{
		"contact_id": contact.ID,
		"user_id":    contactUser.ID,
		"username":   contactUser.Username,
		"alias":      contact.Alias,
	})
}

func RemoveContact(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	contactUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	var contact models.Contact
	err = config.DB.Where("user_id = ? AND contact_user_id = ?", user.ID, uint(contactUserID)).First(&contact).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "contact not found")
		return
	}

	if err := config.DB.Delete(&contact).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to remove contact")
		return
	}
	utils.RespondSuccess(c, gin.H{"message": "contact removed"}, nil)
}
