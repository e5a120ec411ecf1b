package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"story-visualizer/internal/assetstore"
)

func (h *Handler) initializeStory(c *gin.Context) {
	var req initializeStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.stories.InitializeStory(c.Request.Context(), req.AccessID, req.StoryID, req.ChapterID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"account": account,
	})
}

func (h *Handler) initializeChapter(c *gin.Context) {
	var req initializeChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	chapterID, err := h.stories.InitializeChapter(c.Request.Context(), req.StoryID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"chapter_id": chapterID,
	})
}

func (h *Handler) deleteChapter(c *gin.Context) {
	var req chapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.stories.DeleteChapter(c.Request.Context(), req.StoryID, req.ChapterID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) initializeScene(c *gin.Context) {
	var req chapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sceneID, err := h.stories.InitializeScene(c.Request.Context(), req.StoryID, req.ChapterID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"scene_id": sceneID,
	})
}

func (h *Handler) deleteScene(c *gin.Context) {
	var req sceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.stories.DeleteScene(c.Request.Context(), req.StoryID, req.ChapterID, req.SceneID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) moveSceneLeft(c *gin.Context)  { h.moveScene(c, -1) }
func (h *Handler) moveSceneRight(c *gin.Context) { h.moveScene(c, +1) }

func (h *Handler) moveScene(c *gin.Context, direction int) {
	var req sceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.stories.MoveScene(c.Request.Context(), req.StoryID, req.ChapterID, req.SceneID, direction); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) sceneCount(c *gin.Context) {
	storyID := c.Query("story_id")
	chapterID, err := strconv.Atoi(c.Query("chapter_id"))
	if storyID == "" || err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "story_id and chapter_id query parameters are required",
		})
		return
	}

	count, err := h.stories.SceneCount(c.Request.Context(), storyID, chapterID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  count,
	})
}

func (h *Handler) sceneAssets(c *gin.Context) {
	var req sceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	assets, err := h.stories.SceneAssets(c.Request.Context(), req.StoryID, req.ChapterID, req.SceneID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"assets": assets,
	})
}

func (h *Handler) saveContent(c *gin.Context) { h.saveSceneText(c, assetstore.ContentFile) }
func (h *Handler) savePrompt(c *gin.Context)  { h.saveSceneText(c, assetstore.PromptFile) }

func (h *Handler) saveSceneText(c *gin.Context, filename string) {
	var req sceneTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.stories.SaveSceneText(c.Request.Context(), req.StoryID, req.ChapterID, req.SceneID, filename, req.Content); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) fetchContent(c *gin.Context) { h.fetchSceneText(c, assetstore.ContentFile) }
func (h *Handler) fetchPrompt(c *gin.Context)  { h.fetchSceneText(c, assetstore.PromptFile) }

func (h *Handler) fetchSceneText(c *gin.Context, filename string) {
	var req sceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	text, err := h.stories.FetchSceneText(c.Request.Context(), req.StoryID, req.ChapterID, req.SceneID, filename)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"content": text,
	})
}

func (h *Handler) saveSfx(c *gin.Context) {
	var req sceneSfxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.stories.SaveSfx(c.Request.Context(), req.StoryID, req.ChapterID, req.SceneID, req.Effects); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) fetchSfx(c *gin.Context) {
	var req sceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	effects, err := h.stories.FetchSfx(c.Request.Context(), req.StoryID, req.ChapterID, req.SceneID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"effects": effects,
	})
}
