package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"story-visualizer/internal/models"
)

// handleServiceError maps domain sentinels onto HTTP statuses. Anything not
// recognized is an internal error and is logged before being masked.
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	switch {
	case errors.Is(err, models.ErrValidation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientBalance), errors.Is(err, models.ErrAlreadyExists):
		statusCode = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, models.ErrProvider), errors.Is(err, models.ErrProviderTimeout):
		logger.Warn("Provider failure surfaced to client", zap.Error(err))
		statusCode = http.StatusInternalServerError
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(statusCode, gin.H{
		"status":  "error",
		"message": err.Error(),
	})
}

func bindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": "Invalid request body: " + err.Error(),
	})
}
