package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) narrateFree(c *gin.Context) {
	var req narrateFreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.generation.NarrateFree(c.Request.Context(),
		req.StoryID, req.ChapterID, req.SceneID, req.Content, req.Language)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"audio_url": result.AudioURL,
	})
}

func (h *Handler) narratePremium(c *gin.Context) {
	var req narratePremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.stories.VerifyOwnership(c.Request.Context(), req.AccessID, req.StoryID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	result, err := h.generation.NarratePremium(c.Request.Context(),
		req.AccessID, req.StoryID, req.ChapterID, req.SceneID, req.Rate, req.VoiceID, req.Content)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"audio_url": result.AudioURL,
		"balance":   result.Balance,
	})
}

func (h *Handler) imageFree(c *gin.Context) {
	var req imageFreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.generation.GenerateImageFree(c.Request.Context(),
		req.StoryID, req.ChapterID, req.SceneID, req.Query)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"image_url": result.ImageURL,
	})
}

func (h *Handler) imagePremium(c *gin.Context) {
	var req imagePremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.stories.VerifyOwnership(c.Request.Context(), req.AccessID, req.StoryID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	result, err := h.generation.GenerateImagePremium(c.Request.Context(),
		req.AccessID, req.StoryID, req.ChapterID, req.SceneID, req.Rate,
		req.Engine, req.Size, req.CustomPrompt)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"image_url": result.ImageURL,
		"balance":   result.Balance,
	})
}

func (h *Handler) listVoices(c *gin.Context) {
	voices, err := h.generation.Voices(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"voices": voices,
	})
}
