package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/models"
)

const errScanGame = "failed to scan game: %w"

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `
		SELECT id, league, season, date, home_team, away_team, home_score, away_score,
		       status, created_at, updated_at
		FROM games WHERE id = $1
	`

	game := &models.Game{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.League, &game.Season, &game.Date, &game.HomeTeam, &game.AwayTeam,
		&game.HomeScore, &game.AwayScore, &game.Status, &game.CreatedAt, &game.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByQuery retrieves games matching the query ordered by date then id
func (r *PostgresGameRepository) GetByQuery(ctx context.Context, q GameQuery) ([]*models.Game, error) {
	query := `
		SELECT id, league, season, date, home_team, away_team, home_score, away_score,
		       status, created_at, updated_at
		FROM games
		WHERE league = $1
		  AND season = ANY($2)
		  AND ($3::timestamptz IS NULL OR date >= $3)
		  AND ($4::timestamptz IS NULL OR date <= $4)
		ORDER BY date ASC, id ASC
	`

	var start, end *time.Time
	if !q.Start.IsZero() {
		start = &q.Start
	}
	if !q.End.IsZero() {
		end = &q.End
	}

	rows, err := r.db.GetPool().Query(ctx, query, q.League, q.Seasons, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.ID, &game.League, &game.Season, &game.Date, &game.HomeTeam, &game.AwayTeam,
			&game.HomeScore, &game.AwayScore, &game.Status, &game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// GetMostRecentDate returns the latest game date recorded for the league
func (r *PostgresGameRepository) GetMostRecentDate(ctx context.Context, league models.League) (time.Time, error) {
	query := `SELECT MAX(date) FROM games WHERE league = $1`

	var latest *time.Time
	if err := r.db.GetPool().QueryRow(ctx, query, league).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("failed to get most recent game date: %w", err)
	}
	if latest == nil {
		return time.Time{}, models.ErrNotFound
	}
	return *latest, nil
}
