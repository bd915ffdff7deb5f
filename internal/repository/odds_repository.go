package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/theory-engine/internal/database"
	"github.com/yourusername/theory-engine/internal/models"
)

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// GetClosingLines retrieves closing lines for the games in one market
func (r *PostgresOddsRepository) GetClosingLines(ctx context.Context, gameIDs []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error) {
	query := `
		SELECT game_id, market, side, line, price, closed_at
		FROM closing_lines
		WHERE game_id = ANY($1) AND market = $2
		ORDER BY game_id, side
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameIDs, market)
	if err != nil {
		return nil, fmt.Errorf("failed to query closing lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.OddsLine
	for rows.Next() {
		line := &models.OddsLine{}
		err := rows.Scan(&line.GameID, &line.Market, &line.Side, &line.Line, &line.Price, &line.ClosedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closing line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}
