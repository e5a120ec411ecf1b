package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"story-visualizer/internal/models"
)

var _ PromptRepository = (*PgPromptRepository)(nil)

type PgPromptRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPgPromptRepository(db *pgxpool.Pool, logger *zap.Logger) *PgPromptRepository {
	return &PgPromptRepository{db: db, logger: logger.Named("PgPromptRepo")}
}

func (r *PgPromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	query := `INSERT INTO prompts (prompt_id, story_id, chapter_id, access_id, content)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		prompt.PromptID, prompt.StoryID, prompt.ChapterID, prompt.AccessID, prompt.Content,
	).Scan(&prompt.ID, &prompt.Created, &prompt.Updated)
	if err != nil {
		r.logger.Error("Failed to create prompt record", zap.String("promptID", prompt.PromptID), zap.Error(err))
		return fmt.Errorf("failed to create prompt record: %w", err)
	}
	r.logger.Info("Prompt record created", zap.String("promptID", prompt.PromptID), zap.String("storyID", prompt.StoryID))
	return nil
}

func (r *PgPromptRepository) ListAll(ctx context.Context) ([]*models.Prompt, error) {
	query := `SELECT id, prompt_id, story_id, chapter_id, access_id, content, created_at, updated_at
	          FROM prompts ORDER BY created_at DESC`
	var prompts []*models.Prompt
	if err := pgxscan.Select(ctx, r.db, &prompts, query); err != nil {
		r.logger.Error("Failed to list prompts", zap.Error(err))
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return prompts, nil
}

func (r *PgPromptRepository) Stats(ctx context.Context) (*models.CollectionStats, error) {
	return collectionStats(ctx, r.db, "prompts")
}
