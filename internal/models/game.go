package models

import (
	"time"

	"github.com/google/uuid"
)

// Game represents a single historical game in the store
type Game struct {
	ID        uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	League    League    `db:"league" json:"league" validate:"required"`
	Season    int       `db:"season" json:"season" validate:"required,gt=1900"`
	Date      time.Time `db:"date" json:"date" validate:"required"`
	HomeTeam  string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string    `db:"away_team" json:"away_team" validate:"required"`
	HomeScore *int      `db:"home_score" json:"home_score"`
	AwayScore *int      `db:"away_score" json:"away_score"`
	Status    string    `db:"status" json:"status" validate:"oneof=scheduled final cancelled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsFinal checks whether the game finished with a recorded score
func (g *Game) IsFinal() bool {
	return g.Status == "final" && g.HomeScore != nil && g.AwayScore != nil
}

// CombinedScore returns home+away score for a final game
func (g *Game) CombinedScore() (float64, bool) {
	if !g.IsFinal() {
		return 0, false
	}
	return float64(*g.HomeScore + *g.AwayScore), true
}

// Margin returns home score minus away score for a final game
func (g *Game) Margin() (float64, bool) {
	if !g.IsFinal() {
		return 0, false
	}
	return float64(*g.HomeScore - *g.AwayScore), true
}

// TeamOf reports whether the named team played in the game and which side
func (g *Game) TeamOf(team string) (MarketSide, bool) {
	switch team {
	case g.HomeTeam:
		return SideHome, true
	case g.AwayTeam:
		return SideAway, true
	}
	return "", false
}

// StatLine represents one box-score row: team-level when Player is nil,
// player-level otherwise. Stats hold raw stat keys for the league.
type StatLine struct {
	GameID uuid.UUID          `db:"game_id" json:"game_id" validate:"required,uuid4"`
	Team   string             `db:"team" json:"team" validate:"required"`
	Player *string            `db:"player" json:"player"`
	Stats  map[string]float64 `db:"stats" json:"stats"`
}

// Stat returns the named raw stat if present
func (s *StatLine) Stat(key string) (float64, bool) {
	v, ok := s.Stats[key]
	return v, ok
}
