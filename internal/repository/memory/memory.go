// Package memory provides in-memory repository implementations with the same
// atomicity semantics as the Postgres ones. They back unit tests and keep the
// concurrency properties of the ledger testable without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"story-visualizer/internal/models"
	"story-visualizer/internal/repository"
)

var (
	_ repository.AccountRepository  = (*AccountRepository)(nil)
	_ repository.StoryRepository    = (*StoryRepository)(nil)
	_ repository.PromptRepository   = (*PromptRepository)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepository)(nil)
)

// AccountRepository keeps accounts in a map guarded by one mutex, so the
// check-then-act of Deduct is a single critical section.
type AccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	nextID   int64
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*models.Account)}
}

func (r *AccountRepository) EnsureAccount(_ context.Context, accessID string, startingPoints int) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if acc, ok := r.accounts[accessID]; ok {
		cp := *acc
		return &cp, nil
	}

	r.nextID++
	now := time.Now()
	acc := &models.Account{
		ID:       r.nextID,
		AccessID: accessID,
		Points:   startingPoints,
		Created:  now,
		Updated:  now,
	}
	r.accounts[accessID] = acc
	cp := *acc
	return &cp, nil
}

func (r *AccountRepository) Fund(_ context.Context, accessID string, amount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[accessID]
	if !ok {
		return 0, models.ErrNotFound
	}
	acc.Points += amount
	acc.Updated = time.Now()
	return acc.Points, nil
}

func (r *AccountRepository) Deduct(_ context.Context, accessID string, amount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[accessID]
	if !ok {
		return 0, models.ErrNotFound
	}
	if acc.Points < amount {
		return acc.Points, models.ErrInsufficientBalance
	}
	acc.Points -= amount
	acc.Updated = time.Now()
	return acc.Points, nil
}

func (r *AccountRepository) Stats(_ context.Context) (*models.CollectionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &models.CollectionStats{Count: int64(len(r.accounts))}
	for _, acc := range r.accounts {
		if stats.EarliestDate.IsZero() || acc.Created.Before(stats.EarliestDate) {
			stats.EarliestDate = acc.Created
		}
		if acc.Created.After(stats.LatestDate) {
			stats.LatestDate = acc.Created
		}
	}
	return stats, nil
}

// StoryRepository keeps story records in insertion order.
type StoryRepository struct {
	mu      sync.Mutex
	stories []*models.Story
	nextID  int64
}

func NewStoryRepository() *StoryRepository {
	return &StoryRepository{}
}

func (r *StoryRepository) Create(_ context.Context, story *models.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	story.ID = r.nextID
	now := time.Now()
	story.Created = now
	story.Updated = now
	cp := *story
	r.stories = append(r.stories, &cp)
	return nil
}

func (r *StoryRepository) FindFirstByStoryID(_ context.Context, storyID string) (*models.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stories {
		if s.StoryID == storyID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *StoryRepository) Stats(_ context.Context) (*models.CollectionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &models.CollectionStats{Count: int64(len(r.stories))}
	for _, s := range r.stories {
		if stats.EarliestDate.IsZero() || s.Created.Before(stats.EarliestDate) {
			stats.EarliestDate = s.Created
		}
		if s.Created.After(stats.LatestDate) {
			stats.LatestDate = s.Created
		}
	}
	return stats, nil
}

// PromptRepository is an append-only slice.
type PromptRepository struct {
	mu      sync.Mutex
	prompts []*models.Prompt
	nextID  int64
}

func NewPromptRepository() *PromptRepository {
	return &PromptRepository{}
}

func (r *PromptRepository) Create(_ context.Context, prompt *models.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	prompt.ID = r.nextID
	now := time.Now()
	prompt.Created = now
	prompt.Updated = now
	cp := *prompt
	r.prompts = append(r.prompts, &cp)
	return nil
}

func (r *PromptRepository) ListAll(_ context.Context) ([]*models.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Prompt, 0, len(r.prompts))
	for _, p := range r.prompts {
		cp := *p
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out, nil
}

func (r *PromptRepository) Stats(_ context.Context) (*models.CollectionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &models.CollectionStats{Count: int64(len(r.prompts))}
	for _, p := range r.prompts {
		if stats.EarliestDate.IsZero() || p.Created.Before(stats.EarliestDate) {
			stats.EarliestDate = p.Created
		}
		if p.Created.After(stats.LatestDate) {
			stats.LatestDate = p.Created
		}
	}
	return stats, nil
}

// PurchaseRepository enforces uniqueness on the purchase identity tuple.
type PurchaseRepository struct {
	mu        sync.Mutex
	purchases []*models.Purchase
	nextID    int64
}

func NewPurchaseRepository() *PurchaseRepository {
	return &PurchaseRepository{}
}

func purchaseKeyMatch(p *models.Purchase, propertyOf, purchaseBy, storyID, chapterID string) bool {
	return p.PropertyOf == propertyOf && p.PurchaseBy == purchaseBy &&
		p.StoryID == storyID && p.ChapterID == chapterID
}

func (r *PurchaseRepository) Create(_ context.Context, purchase *models.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.purchases {
		if purchaseKeyMatch(p, purchase.PropertyOf, purchase.PurchaseBy, purchase.StoryID, purchase.ChapterID) {
			return models.ErrAlreadyExists
		}
	}

	r.nextID++
	purchase.ID = r.nextID
	now := time.Now()
	purchase.Created = now
	purchase.Updated = now
	cp := *purchase
	r.purchases = append(r.purchases, &cp)
	return nil
}

func (r *PurchaseRepository) Find(_ context.Context, propertyOf, purchaseBy, storyID, chapterID string) (*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.purchases {
		if purchaseKeyMatch(p, propertyOf, purchaseBy, storyID, chapterID) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *PurchaseRepository) Delete(_ context.Context, propertyOf, purchaseBy, storyID, chapterID string) (*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.purchases {
		if purchaseKeyMatch(p, propertyOf, purchaseBy, storyID, chapterID) {
			cp := *p
			r.purchases = append(r.purchases[:i], r.purchases[i+1:]...)
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *PurchaseRepository) ListAll(_ context.Context) ([]*models.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Purchase, 0, len(r.purchases))
	for _, p := range r.purchases {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
