package handlers

import (
	"errors"
	"net/http"

	"productivity-tracker/backend/internal/services"
	"productivity-tracker/backend/internal/store"

	"github.com/gin-gonic/gin"
)

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist changes"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
	}
}
