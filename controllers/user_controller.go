package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chat-app/config"
	"chat-app/middlewares"
	"chat-app/models"
	"chat-app/services"
	"chat-app/utils"
)

type credentialsInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	// The unique index on username is the arbiter: a pre-check would
	// race with a concurrent register of the same name.
	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hash),
	}
	if err := config.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, "username already exists")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := services.GenerateToken(user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	utils.RespondCreated(c, gin.H{"user_id": user.ID, "token": token})
}

func Login(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	var user models.User
	if err := config.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := services.GenerateToken(user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	utils.RespondSuccess(c, gin.H{"user_id": user.ID, "token": token}, nil)
}

// Logout acknowledges the request; tokens are stateless, so dropping
// the token client-side is the whole operation.
func Logout(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"message": "logout successful"}, nil)
}

func Status(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	utils.RespondSuccess(c, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
	}, nil)
}
