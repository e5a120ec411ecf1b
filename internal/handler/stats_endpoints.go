package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"story-visualizer/internal/models"
)

func (h *Handler) accountStats(c *gin.Context) { h.collectionStats(c, h.stats.AccountStats) }
func (h *Handler) storyStats(c *gin.Context)   { h.collectionStats(c, h.stats.StoryStats) }
func (h *Handler) promptStats(c *gin.Context)  { h.collectionStats(c, h.stats.PromptStats) }

func (h *Handler) collectionStats(c *gin.Context, fetch func(context.Context) (*models.CollectionStats, error)) {
	stats, err := fetch(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	payload := gin.H{
		"status": "success",
		"count":  stats.Count,
	}
	if stats.Count > 0 {
		payload["earliestDate"] = stats.EarliestDate.Format(models.StatsDateFormat)
		payload["latestDate"] = stats.LatestDate.Format(models.StatsDateFormat)
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) allPrompts(c *gin.Context) {
	prompts, err := h.stats.AllPrompts(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"prompts": prompts,
	})
}
