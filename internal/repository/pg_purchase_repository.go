package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"story-visualizer/internal/models"
)

var _ PurchaseRepository = (*PgPurchaseRepository)(nil)

type PgPurchaseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPgPurchaseRepository(db *pgxpool.Pool, logger *zap.Logger) *PgPurchaseRepository {
	return &PgPurchaseRepository{db: db, logger: logger.Named("PgPurchaseRepo")}
}

const purchaseFields = `id, property_of, purchase_by, story_id, chapter_id, created_at, updated_at`

func (r *PgPurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	query := `INSERT INTO purchases (property_of, purchase_by, story_id, chapter_id)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		purchase.PropertyOf, purchase.PurchaseBy, purchase.StoryID, purchase.ChapterID,
	).Scan(&purchase.ID, &purchase.Created, &purchase.Updated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return models.ErrAlreadyExists
		}
		r.logger.Error("Failed to create purchase record", zap.Error(err))
		return fmt.Errorf("failed to create purchase record: %w", err)
	}
	r.logger.Info("Purchase record created",
		zap.String("propertyOf", purchase.PropertyOf), zap.String("purchaseBy", purchase.PurchaseBy))
	return nil
}

func (r *PgPurchaseRepository) Find(ctx context.Context, propertyOf, purchaseBy, storyID, chapterID string) (*models.Purchase, error) {
	query := fmt.Sprintf(`SELECT %s FROM purchases
	          WHERE property_of = $1 AND purchase_by = $2 AND story_id = $3 AND chapter_id = $4`, purchaseFields)
	var p models.Purchase
	err := r.db.QueryRow(ctx, query, propertyOf, purchaseBy, storyID, chapterID).Scan(
		&p.ID, &p.PropertyOf, &p.PurchaseBy, &p.StoryID, &p.ChapterID, &p.Created, &p.Updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to find purchase record", zap.Error(err))
		return nil, fmt.Errorf("failed to find purchase record: %w", err)
	}
	return &p, nil
}

func (r *PgPurchaseRepository) Delete(ctx context.Context, propertyOf, purchaseBy, storyID, chapterID string) (*models.Purchase, error) {
	query := fmt.Sprintf(`DELETE FROM purchases
	          WHERE property_of = $1 AND purchase_by = $2 AND story_id = $3 AND chapter_id = $4
	          RETURNING %s`, purchaseFields)
	var p models.Purchase
	err := r.db.QueryRow(ctx, query, propertyOf, purchaseBy, storyID, chapterID).Scan(
		&p.ID, &p.PropertyOf, &p.PurchaseBy, &p.StoryID, &p.ChapterID, &p.Created, &p.Updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to delete purchase record", zap.Error(err))
		return nil, fmt.Errorf("failed to delete purchase record: %w", err)
	}
	r.logger.Info("Purchase record refunded",
		zap.String("propertyOf", p.PropertyOf), zap.String("purchaseBy", p.PurchaseBy))
	return &p, nil
}

func (r *PgPurchaseRepository) ListAll(ctx context.Context) ([]*models.Purchase, error) {
	query := fmt.Sprintf(`SELECT %s FROM purchases ORDER BY created_at DESC`, purchaseFields)
	var purchases []*models.Purchase
	if err := pgxscan.Select(ctx, r.db, &purchases, query); err != nil {
		r.logger.Error("Failed to list purchases", zap.Error(err))
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}
