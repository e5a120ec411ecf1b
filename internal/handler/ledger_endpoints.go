package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"story-visualizer/internal/models"
)

// tokenError keeps the token API's contract: an unknown account is an
// authorization failure here, not a missing resource.
func (h *Handler) tokenError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	handleServiceError(c, h.logger, err)
}

func (h *Handler) fundTokens(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	snapshot, err := h.ledger.Fund(c.Request.Context(), req.AccessID, req.Amount)
	if err != nil {
		h.tokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"balance": snapshot,
	})
}

func (h *Handler) deductTokens(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	snapshot, err := h.ledger.Deduct(c.Request.Context(), req.AccessID, req.Amount)
	if err != nil {
		h.tokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"balance": snapshot,
	})
}
