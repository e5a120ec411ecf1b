package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"story-visualizer/internal/models"
)

// allowed targets for collectionStats; table names never come from user input.
var statsTables = map[string]bool{
	"accounts": true,
	"stories":  true,
	"prompts":  true,
}

func collectionStats(ctx context.Context, db *pgxpool.Pool, table string) (*models.CollectionStats, error) {
	if !statsTables[table] {
		return nil, fmt.Errorf("unknown stats table %q", table)
	}

	query := fmt.Sprintf(`SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM %s`, table)
	var stats models.CollectionStats
	var earliest, latest sql.NullTime
	if err := db.QueryRow(ctx, query).Scan(&stats.Count, &earliest, &latest); err != nil {
		return nil, fmt.Errorf("failed to compute %s stats: %w", table, err)
	}
	if earliest.Valid {
		stats.EarliestDate = earliest.Time
	}
	if latest.Valid {
		stats.LatestDate = latest.Time
	}
	return &stats, nil
}
