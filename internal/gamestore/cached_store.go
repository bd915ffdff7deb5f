package gamestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
)

// CachedStore memoizes game store reads. The store is read-only historical
// data, so staleness only matters for the trailing edge of a season; the TTL
// bounds that. Caching is an optimization: concurrent identical requests that
// miss the cache simply duplicate work.
type CachedStore struct {
	inner      Store
	cache      *cache.Cache
	maxEntries int
}

// NewCachedStore wraps a store with a TTL query cache
func NewCachedStore(inner Store, ttl time.Duration, maxEntries int) *CachedStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &CachedStore{
		inner:      inner,
		cache:      cache.New(ttl, ttl*2),
		maxEntries: maxEntries,
	}
}

func cachedCall[T any](ctx context.Context, s *CachedStore, key string, fn func(context.Context) (T, error)) (T, error) {
	if hit, found := s.cache.Get(key); found {
		if value, ok := hit.(T); ok {
			return value, nil
		}
	}

	value, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if s.cache.ItemCount() >= s.maxEntries {
		s.cache.DeleteExpired()
	}
	s.cache.SetDefault(key, value)
	return value, nil
}

// Games returns games matching the query
func (s *CachedStore) Games(ctx context.Context, q repository.GameQuery) ([]*models.Game, error) {
	key := fmt.Sprintf("games:%s:%s:%d:%d", q.League, seasonsKey(q.Seasons), q.Start.Unix(), q.End.Unix())
	return cachedCall(ctx, s, key, func(ctx context.Context) ([]*models.Game, error) {
		return s.inner.Games(ctx, q)
	})
}

// TeamLines returns team box-score lines for the games
func (s *CachedStore) TeamLines(ctx context.Context, gameIDs []uuid.UUID) ([]*models.StatLine, error) {
	return cachedCall(ctx, s, "team_lines:"+idsKey(gameIDs), func(ctx context.Context) ([]*models.StatLine, error) {
		return s.inner.TeamLines(ctx, gameIDs)
	})
}

// PlayerLines returns player box-score lines for the games
func (s *CachedStore) PlayerLines(ctx context.Context, gameIDs []uuid.UUID, playerFilter string) ([]*models.StatLine, error) {
	key := "player_lines:" + playerFilter + ":" + idsKey(gameIDs)
	return cachedCall(ctx, s, key, func(ctx context.Context) ([]*models.StatLine, error) {
		return s.inner.PlayerLines(ctx, gameIDs, playerFilter)
	})
}

// ClosingLines returns closing lines for the games in one market
func (s *CachedStore) ClosingLines(ctx context.Context, gameIDs []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error) {
	key := "closing_lines:" + string(market) + ":" + idsKey(gameIDs)
	return cachedCall(ctx, s, key, func(ctx context.Context) ([]*models.OddsLine, error) {
		return s.inner.ClosingLines(ctx, gameIDs, market)
	})
}

// MostRecentDate returns the latest game date for the league
func (s *CachedStore) MostRecentDate(ctx context.Context, league models.League) (time.Time, error) {
	return cachedCall(ctx, s, "most_recent:"+string(league), func(ctx context.Context) (time.Time, error) {
		return s.inner.MostRecentDate(ctx, league)
	})
}

// KnownStatKeys lists the raw stat keys observed for the league
func (s *CachedStore) KnownStatKeys(ctx context.Context, league models.League) ([]string, error) {
	return cachedCall(ctx, s, "stat_keys:"+string(league), func(ctx context.Context) ([]string, error) {
		return s.inner.KnownStatKeys(ctx, league)
	})
}

func seasonsKey(seasons []int) string {
	sorted := append([]int{}, seasons...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, s := range sorted {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ",")
}

func idsKey(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
