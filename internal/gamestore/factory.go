package gamestore

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/theory-engine/internal/config"
	"github.com/yourusername/theory-engine/internal/models"
	"github.com/yourusername/theory-engine/internal/repository"
)

// NewFromConfig assembles the configured store backend wrapped with bounded
// retry and, when a TTL is configured, a read-through cache.
func NewFromConfig(cfg config.GameStoreConfig, repos *repository.Repositories, logger *logrus.Logger) (Store, error) {
	var base Store
	switch cfg.Backend {
	case "http":
		httpStore, err := NewHTTPStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		base = httpStore
	case "postgres":
		base = NewRepositoryStore(repos)
	default:
		return nil, models.NewConfigError("game_store.backend", "must be postgres or http")
	}

	retryCfg := DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}
	var store Store = NewRetryingStore(base, retryCfg, logger)

	if cfg.CacheTTLSeconds > 0 {
		store = NewCachedStore(store, time.Duration(cfg.CacheTTLSeconds)*time.Second, cfg.CacheMaxEntries)
	}
	return store, nil
}
