package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/models"
)

const errScanStatLine = "failed to scan stat line: %w"

// PostgresStatRepository implements StatRepository for PostgreSQL
type PostgresStatRepository struct {
	db *database.DB
}

// NewPostgresStatRepository creates a new stat repository
func NewPostgresStatRepository(db *database.DB) StatRepository {
	return &PostgresStatRepository{db: db}
}

// GetTeamLines retrieves team-level box-score lines for the games
func (r *PostgresStatRepository) GetTeamLines(ctx context.Context, gameIDs []uuid.UUID) ([]*models.StatLine, error) {
	query := `
		SELECT game_id, team, NULL::text, stats
		FROM team_stat_lines
		WHERE game_id = ANY($1)
		ORDER BY game_id, team
	`
	return r.queryLines(ctx, query, gameIDs)
}

// GetPlayerLines retrieves player-level lines, optionally filtered by a
// case-insensitive player-name substring.
func (r *PostgresStatRepository) GetPlayerLines(ctx context.Context, gameIDs []uuid.UUID, playerFilter string) ([]*models.StatLine, error) {
	query := `
		SELECT game_id, team, player, stats
		FROM player_stat_lines
		WHERE game_id = ANY($1)
		  AND ($2 = '' OR player ILIKE '%' || $2 || '%')
		ORDER BY game_id, team, player
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameIDs, playerFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to query player stat lines: %w", err)
	}
	defer rows.Close()

	return scanStatLines(rows)
}

// GetKnownStatKeys lists the raw stat keys observed for the league
func (r *PostgresStatRepository) GetKnownStatKeys(ctx context.Context, league models.League) ([]string, error) {
	query := `
		SELECT DISTINCT jsonb_object_keys(s.stats)
		FROM team_stat_lines s
		JOIN games g ON g.id = s.game_id
		WHERE g.league = $1
		ORDER BY 1
	`

	rows, err := r.db.GetPool().Query(ctx, query, league)
	if err != nil {
		return nil, fmt.Errorf("failed to query stat keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan stat key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

func (r *PostgresStatRepository) queryLines(ctx context.Context, query string, gameIDs []uuid.UUID) ([]*models.StatLine, error) {
	rows, err := r.db.GetPool().Query(ctx, query, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query stat lines: %w", err)
	}
	defer rows.Close()

	return scanStatLines(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanStatLines(rows pgxRows) ([]*models.StatLine, error) {
	var lines []*models.StatLine
	for rows.Next() {
		line := &models.StatLine{}
		var raw []byte
		if err := rows.Scan(&line.GameID, &line.Team, &line.Player, &raw); err != nil {
			return nil, fmt.Errorf(errScanStatLine, err)
		}
		if err := json.Unmarshal(raw, &line.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode stats payload: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
