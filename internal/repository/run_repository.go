package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/models"
)

const errScanRun = "failed to scan run snapshot: %w"

// PostgresRunRepository implements the write-once RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new run snapshot repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Save persists a run snapshot. Snapshots are keyed by content hash; saving
// the same hash twice is treated as a duplicate, never an overwrite.
func (r *PostgresRunRepository) Save(ctx context.Context, run *models.RunSnapshot) error {
	query := `
		INSERT INTO run_snapshots (id, content_hash, kind, league, input, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.ContentHash, run.Kind, run.League, run.Input, run.Result, run.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to save run snapshot: %w", err)
	}

	return nil
}

// GetByID retrieves a run snapshot by ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RunSnapshot, error) {
	query := `
		SELECT id, content_hash, kind, league, input, result, created_at
		FROM run_snapshots WHERE id = $1
	`
	return r.queryOne(ctx, query, id)
}

// GetByContentHash retrieves a run snapshot by its content hash
func (r *PostgresRunRepository) GetByContentHash(ctx context.Context, hash string) (*models.RunSnapshot, error) {
	query := `
		SELECT id, content_hash, kind, league, input, result, created_at
		FROM run_snapshots WHERE content_hash = $1
	`
	return r.queryOne(ctx, query, hash)
}

// List retrieves the most recent snapshots
func (r *PostgresRunRepository) List(ctx context.Context, limit int) ([]*models.RunSnapshot, error) {
	query := `
		SELECT id, content_hash, kind, league, input, result, created_at
		FROM run_snapshots
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list run snapshots: %w", err)
	}
	defer rows.Close()

	var runs []*models.RunSnapshot
	for rows.Next() {
		run := &models.RunSnapshot{}
		err := rows.Scan(&run.ID, &run.ContentHash, &run.Kind, &run.League, &run.Input, &run.Result, &run.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf(errScanRun, err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// DeleteOlderThan removes snapshots created before the cutoff
func (r *PostgresRunRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.GetPool().Exec(ctx, "DELETE FROM run_snapshots WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired run snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRunRepository) queryOne(ctx context.Context, query string, arg any) (*models.RunSnapshot, error) {
	run := &models.RunSnapshot{}
	err := r.db.GetPool().QueryRow(ctx, query, arg).Scan(
		&run.ID, &run.ContentHash, &run.Kind, &run.League, &run.Input, &run.Result, &run.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run snapshot: %w", err)
	}

	return run, nil
}
