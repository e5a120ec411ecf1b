package repository

import (
	"context"

	"story-visualizer/internal/models"
)

// AccountRepository is the ledger's backing record store. Implementations must
// make EnsureAccount an atomic upsert and Deduct an atomic guarded decrement;
// a read-then-write sequence is not acceptable for either.
type AccountRepository interface {
	// EnsureAccount finds the account for accessID, creating it with
	// startingPoints when absent. Safe under concurrent first-touch.
	EnsureAccount(ctx context.Context, accessID string, startingPoints int) (*models.Account, error)

	// Fund atomically increments the balance and returns the new one.
	// Returns models.ErrNotFound if the account does not exist.
	Fund(ctx context.Context, accessID string, amount int) (newBalance int, err error)

	// Deduct atomically decrements the balance if and only if the current
	// balance covers amount, returning the new balance. Returns
	// models.ErrInsufficientBalance without mutating anything when it does
	// not, and models.ErrNotFound when the account is absent.
	Deduct(ctx context.Context, accessID string, amount int) (newBalance int, err error)

	Stats(ctx context.Context) (*models.CollectionStats, error)
}

// StoryRepository stores story/chapter initialization records.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error

	// FindFirstByStoryID returns the oldest record for the story_id, which
	// determines ownership. Returns models.ErrNotFound when there is none.
	FindFirstByStoryID(ctx context.Context, storyID string) (*models.Story, error)

	Stats(ctx context.Context) (*models.CollectionStats, error)
}

// PromptRepository is the append-only premium prompt audit log.
type PromptRepository interface {
	Create(ctx context.Context, prompt *models.Prompt) error
	ListAll(ctx context.Context) ([]*models.Prompt, error)
	Stats(ctx context.Context) (*models.CollectionStats, error)
}

// PurchaseRepository stores chapter asset purchase records.
type PurchaseRepository interface {
	// Create inserts a purchase; returns models.ErrAlreadyExists when a
	// record with the same identity tuple is present.
	Create(ctx context.Context, purchase *models.Purchase) error

	Find(ctx context.Context, propertyOf, purchaseBy, storyID, chapterID string) (*models.Purchase, error)

	// Delete removes the record and returns it. Returns models.ErrNotFound
	// when absent.
	Delete(ctx context.Context, propertyOf, purchaseBy, storyID, chapterID string) (*models.Purchase, error)

	ListAll(ctx context.Context) ([]*models.Purchase, error)
}
