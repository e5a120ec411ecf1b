package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"story-visualizer/internal/media"
)

func (h *Handler) fetchChapterManifest(c *gin.Context) {
	var req chapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	entries, err := h.scanner.ScanChapter(req.StoryID, req.ChapterID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"scenes": entries,
	})
}

func (h *Handler) fetchStoryManifest(c *gin.Context) {
	var req storyFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	entries, err := h.scanner.ScanStory(req.StoryID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"scenes": entries,
	})
}

func (h *Handler) generateVideoV1(c *gin.Context) {
	h.generateVideo(c, media.VideoOptions{})
}

func (h *Handler) generateVideoV2(c *gin.Context) {
	h.generateVideo(c, media.VideoOptions{WithBackgroundMusic: true, WithSubtitles: true})
}

func (h *Handler) generateVideo(c *gin.Context, opts media.VideoOptions) {
	var req videoGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	outPath, err := h.assembler.AssembleChapterVideo(c.Request.Context(), req.StoryID, req.ChapterID, opts)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"video_url": h.assetURL(outPath),
	})
}

func (h *Handler) createPDF(c *gin.Context) {
	var req createPDFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	outPath, err := h.assembler.AssembleStoryPDF(c.Request.Context(), req.StoryID, req.ColumnNumber)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"pdf_url": h.assetURL(outPath),
	})
}
