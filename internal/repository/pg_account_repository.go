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

var _ AccountRepository = (*PgAccountRepository)(nil)

type PgAccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPgAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *PgAccountRepository {
	return &PgAccountRepository{db: db, logger: logger.Named("PgAccountRepo")}
}

const accountFields = `id, access_id, points, created_at, updated_at`

// EnsureAccount relies on ON CONFLICT DO NOTHING so that two concurrent
// first-touch requests never create two rows for one access_id.
func (r *PgAccountRepository) EnsureAccount(ctx context.Context, accessID string, startingPoints int) (*models.Account, error) {
	insert := `INSERT INTO accounts (access_id, points) VALUES ($1, $2) ON CONFLICT (access_id) DO NOTHING`
	if _, err := r.db.Exec(ctx, insert, accessID, startingPoints); err != nil {
		r.logger.Error("Failed to upsert account", zap.String("accessID", accessID), zap.Error(err))
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE access_id = $1`, accountFields)
	var acc models.Account
	err := r.db.QueryRow(ctx, query, accessID).Scan(
		&acc.ID, &acc.AccessID, &acc.Points, &acc.Created, &acc.Updated,
	)
	if err != nil {
		r.logger.Error("Failed to load account after upsert", zap.String("accessID", accessID), zap.Error(err))
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &acc, nil
}

func (r *PgAccountRepository) Fund(ctx context.Context, accessID string, amount int) (int, error) {
	query := `UPDATE accounts SET points = points + $2, updated_at = NOW() WHERE access_id = $1 RETURNING points`
	var points int
	err := r.db.QueryRow(ctx, query, accessID, amount).Scan(&points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		r.logger.Error("Failed to fund account", zap.String("accessID", accessID), zap.Error(err))
		return 0, fmt.Errorf("failed to fund account: %w", err)
	}
	r.logger.Info("Account funded", zap.String("accessID", accessID), zap.Int("amount", amount), zap.Int("points", points))
	return points, nil
}

// Deduct performs the balance check and the decrement in a single guarded
// UPDATE, so two concurrent deducts can never both pass on a stale balance.
func (r *PgAccountRepository) Deduct(ctx context.Context, accessID string, amount int) (int, error) {
	query := `UPDATE accounts SET points = points - $2, updated_at = NOW()
	          WHERE access_id = $1 AND points >= $2 RETURNING points`
	var points int
	err := r.db.QueryRow(ctx, query, accessID, amount).Scan(&points)
	if err == nil {
		r.logger.Info("Account deducted", zap.String("accessID", accessID), zap.Int("amount", amount), zap.Int("points", points))
		return points, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to deduct from account", zap.String("accessID", accessID), zap.Error(err))
		return 0, fmt.Errorf("failed to deduct from account: %w", err)
	}

	// No row matched: either the account is missing or the balance is short.
	var current int
	err = r.db.QueryRow(ctx, `SELECT points FROM accounts WHERE access_id = $1`, accessID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("failed to inspect account balance: %w", err)
	}
	return current, models.ErrInsufficientBalance
}

func (r *PgAccountRepository) Stats(ctx context.Context) (*models.CollectionStats, error) {
	return collectionStats(ctx, r.db, "accounts")
}
