package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"story-visualizer/internal/models"
)

var _ StoryRepository = (*PgStoryRepository)(nil)

type PgStoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPgStoryRepository(db *pgxpool.Pool, logger *zap.Logger) *PgStoryRepository {
	return &PgStoryRepository{db: db, logger: logger.Named("PgStoryRepo")}
}

func (r *PgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	query := `INSERT INTO stories (story_id, chapter_id, access_id, is_published)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, story.StoryID, story.ChapterID, story.AccessID, story.IsPublished).Scan(
		&story.ID, &story.Created, &story.Updated,
	)
	if err != nil {
		r.logger.Error("Failed to create story record", zap.String("storyID", story.StoryID), zap.Error(err))
		return fmt.Errorf("failed to create story record: %w", err)
	}
	return nil
}

func (r *PgStoryRepository) FindFirstByStoryID(ctx context.Context, storyID string) (*models.Story, error) {
	query := `SELECT id, story_id, chapter_id, access_id, is_published, created_at, updated_at
	          FROM stories WHERE story_id = $1 ORDER BY id ASC LIMIT 1`
	var story models.Story
	err := r.db.QueryRow(ctx, query, storyID).Scan(
		&story.ID, &story.StoryID, &story.ChapterID, &story.AccessID,
		&story.IsPublished, &story.Created, &story.Updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to find story record", zap.String("storyID", storyID), zap.Error(err))
		return nil, fmt.Errorf("failed to find story record: %w", err)
	}
	return &story, nil
}

func (r *PgStoryRepository) Stats(ctx context.Context) (*models.CollectionStats, error) {
	return collectionStats(ctx, r.db, "stories")
}
