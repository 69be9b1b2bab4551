package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-app/services"
)

func RespondSuccess(c *gin.Context, data any, meta any) {
	body := gin.H{"code": http.StatusOK, "data": data}
	if meta != nil {
		body["meta"] = meta
	}
	c.JSON(http.StatusOK, body)
}

func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "data": data})
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "error": message})
}

// RespondServiceError maps a service error onto its HTTP status.
func RespondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		RespondError(c, status, "internal server error")
		return
	}
	RespondError(c, status, err.Error())
}
