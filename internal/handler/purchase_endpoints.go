package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) validatePurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	purchased, err := h.purchases.Validate(c.Request.Context(),
		req.PropertyOf, req.PurchaseBy, req.StoryID, req.ChapterID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"purchased": purchased,
	})
}

func (h *Handler) createPurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.purchases.Purchase(c.Request.Context(),
		req.PropertyOf, req.PurchaseBy, req.StoryID, req.ChapterID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"purchase": record,
	})
}

func (h *Handler) refundPurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.purchases.Refund(c.Request.Context(),
		req.PropertyOf, req.PurchaseBy, req.StoryID, req.ChapterID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"purchase": record,
	})
}

func (h *Handler) listPurchases(c *gin.Context) {
	records, err := h.purchases.Transactions(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"transactions": records,
	})
}
