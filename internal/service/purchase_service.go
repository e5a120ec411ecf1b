package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"story-visualizer/internal/models"
	"story-visualizer/internal/repository"
)

// PurchaseService manages chapter ownership transfer records. A purchase is
// identified by the (property_of, purchase_by, story_id, chapter_id) tuple;
// the same buyer cannot purchase the same chapter twice.
type PurchaseService struct {
	purchases repository.PurchaseRepository
	logger    *zap.Logger
}

func NewPurchaseService(purchases repository.PurchaseRepository, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		logger:    logger.Named("PurchaseService"),
	}
}

func validatePurchaseKey(propertyOf, purchaseBy, storyID, chapterID string) error {
	if propertyOf == "" || purchaseBy == "" || storyID == "" || chapterID == "" {
		return fmt.Errorf("property_of, purchase_by, story_id and chapter_id are required: %w", models.ErrValidation)
	}
	return nil
}

// Validate reports whether the buyer already holds a purchase record for the
// chapter.
func (p *PurchaseService) Validate(ctx context.Context, propertyOf, purchaseBy, storyID, chapterID string) (bool, error) {
	if err := validatePurchaseKey(propertyOf, purchaseBy, storyID, chapterID); err != nil {
		return false, err
	}
	_, err := p.purchases.Find(ctx, propertyOf, purchaseBy, storyID, chapterID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Purchase records the chapter as bought. Duplicate purchases are rejected
// with ErrAlreadyExists.
func (p *PurchaseService) Purchase(ctx context.Context, propertyOf, purchaseBy, storyID, chapterID string) (*models.Purchase, error) {
	if err := validatePurchaseKey(propertyOf, purchaseBy, storyID, chapterID); err != nil {
		return nil, err
	}
	record := &models.Purchase{
		PropertyOf: propertyOf,
		PurchaseBy: purchaseBy,
		StoryID:    storyID,
		ChapterID:  chapterID,
	}
	if err := p.purchases.Create(ctx, record); err != nil {
		return nil, err
	}
	p.logger.Info("Purchase recorded",
		zap.String("purchaseBy", purchaseBy), zap.String("storyID", storyID), zap.String("chapterID", chapterID))
	return record, nil
}

// Refund removes the purchase record and returns the removed record so the
// caller can credit the buyer back.
func (p *PurchaseService) Refund(ctx context.Context, propertyOf, purchaseBy, storyID, chapterID string) (*models.Purchase, error) {
	if err := validatePurchaseKey(propertyOf, purchaseBy, storyID, chapterID); err != nil {
		return nil, err
	}
	record, err := p.purchases.Delete(ctx, propertyOf, purchaseBy, storyID, chapterID)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Purchase refunded",
		zap.String("purchaseBy", purchaseBy), zap.String("storyID", storyID), zap.String("chapterID", chapterID))
	return record, nil
}

// Transactions lists every purchase record.
func (p *PurchaseService) Transactions(ctx context.Context) ([]*models.Purchase, error) {
	return p.purchases.ListAll(ctx)
}
