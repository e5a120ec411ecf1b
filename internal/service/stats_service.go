package service

import (
	"context"

	"story-visualizer/internal/models"
	"story-visualizer/internal/repository"
)

// StatsService aggregates per-collection counts and date ranges for the
// statistics endpoints.
type StatsService struct {
	accounts repository.AccountRepository
	stories  repository.StoryRepository
	prompts  repository.PromptRepository
}

func NewStatsService(accounts repository.AccountRepository, stories repository.StoryRepository, prompts repository.PromptRepository) *StatsService {
	return &StatsService{accounts: accounts, stories: stories, prompts: prompts}
}

func (s *StatsService) AccountStats(ctx context.Context) (*models.CollectionStats, error) {
	return s.accounts.Stats(ctx)
}

func (s *StatsService) StoryStats(ctx context.Context) (*models.CollectionStats, error) {
	return s.stories.Stats(ctx)
}

func (s *StatsService) PromptStats(ctx context.Context) (*models.CollectionStats, error) {
	return s.prompts.Stats(ctx)
}

// AllPrompts lists every prompt audit record, newest first.
func (s *StatsService) AllPrompts(ctx context.Context) ([]*models.Prompt, error) {
	return s.prompts.ListAll(ctx)
}
