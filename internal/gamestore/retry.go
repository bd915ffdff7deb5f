package gamestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/theory-engine/internal/metrics"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
)

// RetryConfig bounds the backoff applied at the data-access boundary
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryConfig returns recommended defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     5 * time.Second,
	}
}

// RetryingStore wraps a Store with bounded backoff. Only upstream-dependency
// failures are retried; configuration errors and not-found pass through.
// After the attempt budget is spent the failure surfaces as
// models.ErrStoreUnavailable so callers can distinguish it from a bad request.
type RetryingStore struct {
	inner  Store
	cfg    RetryConfig
	logger *logrus.Logger
}

// NewRetryingStore wraps a store with bounded retry
func NewRetryingStore(inner Store, cfg RetryConfig, logger *logrus.Logger) *RetryingStore {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RetryingStore{inner: inner, cfg: cfg, logger: logger}
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, models.ErrNotFound) {
		return false
	}
	if models.IsConfigError(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func do[T any](ctx context.Context, s *RetryingStore, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	wait := s.cfg.InitialWait
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt < s.cfg.MaxAttempts {
			metrics.RecordStoreRetry()
			s.logger.WithFields(logrus.Fields{
				"operation": op,
				"attempt":   attempt,
				"wait":      wait.String(),
			}).WithError(err).Warn("Game store call failed, retrying")

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
			if wait > s.cfg.MaxWait {
				wait = s.cfg.MaxWait
			}
		}
	}

	return zero, fmt.Errorf("%w: %s failed after %d attempts: %v",
		models.ErrStoreUnavailable, op, s.cfg.MaxAttempts, lastErr)
}

// Games returns games matching the query
func (s *RetryingStore) Games(ctx context.Context, q repository.GameQuery) ([]*models.Game, error) {
	return do(ctx, s, "games", func(ctx context.Context) ([]*models.Game, error) {
		return s.inner.Games(ctx, q)
	})
}

// TeamLines returns team box-score lines for the games
func (s *RetryingStore) TeamLines(ctx context.Context, gameIDs []uuid.UUID) ([]*models.StatLine, error) {
	return do(ctx, s, "team_lines", func(ctx context.Context) ([]*models.StatLine, error) {
		return s.inner.TeamLines(ctx, gameIDs)
	})
}

// PlayerLines returns player box-score lines for the games
func (s *RetryingStore) PlayerLines(ctx context.Context, gameIDs []uuid.UUID, playerFilter string) ([]*models.StatLine, error) {
	return do(ctx, s, "player_lines", func(ctx context.Context) ([]*models.StatLine, error) {
		return s.inner.PlayerLines(ctx, gameIDs, playerFilter)
	})
}

// ClosingLines returns closing lines for the games in one market
func (s *RetryingStore) ClosingLines(ctx context.Context, gameIDs []uuid.UUID, market models.MarketType) ([]*models.OddsLine, error) {
	return do(ctx, s, "closing_lines", func(ctx context.Context) ([]*models.OddsLine, error) {
		return s.inner.ClosingLines(ctx, gameIDs, market)
	})
}

// MostRecentDate returns the latest game date for the league
func (s *RetryingStore) MostRecentDate(ctx context.Context, league models.League) (time.Time, error) {
	return do(ctx, s, "most_recent_date", func(ctx context.Context) (time.Time, error) {
		return s.inner.MostRecentDate(ctx, league)
	})
}

// KnownStatKeys lists the raw stat keys observed for the league
func (s *RetryingStore) KnownStatKeys(ctx context.Context, league models.League) ([]string, error) {
	return do(ctx, s, "known_stat_keys", func(ctx context.Context) ([]string, error) {
		return s.inner.KnownStatKeys(ctx, league)
	})
}
