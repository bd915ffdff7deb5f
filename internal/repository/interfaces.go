package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/theory-engine/internal/models"
)

// GameQuery narrows a game lookup. Zero values mean "no constraint".
type GameQuery struct {
	League  models.League
	Seasons []int
	Start   time.Time
	End     time.Time
}

// GameRepository defines read access to historical games
type GameRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetByQuery(ctx context.Context, q GameQuery) ([]*models.Game, error)
	GetMostRecentDate(ctx context.Context, league models.League) (time.Time, error)
}

// StatRepository defines read access to box-score stat lines
type StatRepository interface {
	GetTeamLines(ctx context.Context, gameIDs []uuid.UUID) ([]*models.StatLine, error)
	GetPlayerLines(ctx context.Context, gameIDs []uuid.UUID, playerFilter string) ([]*models.StatLine, error)
	GetKnownStatKeys(ctx context.Context, league models.League) ([]string, error)
}

// OddsRepository defines read access to closing lines
type OddsRepository interface {
	GetClosingLines(ctx context.Context, gameIDs []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error)
}

// RunRepository defines the write-once run snapshot store
type RunRepository interface {
	Save(ctx context.Context, run *models.RunSnapshot) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RunSnapshot, error)
	GetByContentHash(ctx context.Context, hash string) (*models.RunSnapshot, error)
	List(ctx context.Context, limit int) ([]*models.RunSnapshot, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
