// Package gamestore provides read-only access to the historical game store.
package gamestore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
)

// Store is the read-only Historical Game Store the engine consumes.
// Implementations never mutate anything.
type Store interface {
	Games(ctx context.Context, q repository.GameQuery) ([]*models.Game, error)
	TeamLines(ctx context.Context, gameIDs []uuid.UUID) ([]*models.StatLine, error)
	PlayerLines(ctx context.Context, gameIDs []uuid.UUID, playerFilter string) ([]*models.StatLine, error)
	ClosingLines(ctx context.Context, gameIDs []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error)
	MostRecentDate(ctx context.Context, league models.League) (time.Time, error)
	KnownStatKeys(ctx context.Context, league models.League) ([]string, error)
}

// RepositoryStore adapts the Postgres repositories to the Store interface
type RepositoryStore struct {
	repos *repository.Repositories
}

// NewRepositoryStore creates a store backed by the Postgres repositories
func NewRepositoryStore(repos *repository.Repositories) *RepositoryStore {
	return &RepositoryStore{repos: repos}
}

// Games returns games matching the query
func (s *RepositoryStore) Games(ctx context.Context, q repository.GameQuery) ([]*models.Game, error) {
	return s.repos.Game.GetByQuery(ctx, q)
}

// TeamLines returns team box-score lines for the games
func (s *RepositoryStore) TeamLines(ctx context.Context, gameIDs []uuid.UUID) ([]*models.StatLine, error) {
	return s.repos.Stat.GetTeamLines(ctx, gameIDs)
}

// PlayerLines returns player box-score lines for the games
func (s *RepositoryStore) PlayerLines(ctx context.Context, gameIDs []uuid.UUID, playerFilter string) ([]*models.StatLine, error) {
	return s.repos.Stat.GetPlayerLines(ctx, gameIDs, playerFilter)
}

// ClosingLines returns closing lines for the games in one market
func (s *RepositoryStore) ClosingLines(ctx context.Context, gameIDs []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error) {
	return s.repos.Odds.GetClosingLines(ctx, gameIDs, market)
}

// MostRecentDate returns the latest game date for the league
func (s *RepositoryStore) MostRecentDate(ctx context.Context, league models.League) (time.Time, error) {
	return s.repos.Game.GetMostRecentDate(ctx, league)
}

// KnownStatKeys lists the raw stat keys observed for the league
func (s *RepositoryStore) KnownStatKeys(ctx context.Context, league models.League) ([]string, error) {
	return s.repos.Stat.GetKnownStatKeys(ctx, league)
}
