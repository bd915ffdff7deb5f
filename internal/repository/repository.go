package repository

import (
	"fmt"

	"github.com/yourusername/theory-engine/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game GameRepository
	Stat StatRepository
	Odds OddsRepository
	Run  RunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Game: NewPostgresGameRepository(db),
		Stat: NewPostgresStatRepository(db),
		Odds: NewPostgresOddsRepository(db),
		Run:  NewPostgresRunRepository(db),
	}, nil
}
