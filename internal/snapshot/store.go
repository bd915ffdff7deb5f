package snapshot

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

// Store wraps the run repository with content hashing and write-once
// semantics. Committing the same input twice returns the original snapshot.
type Store struct {
	repo repository.RunRepository
	log  *logrus.Entry
}

// NewStore creates a snapshot store
func NewStore(repo repository.RunRepository, logger *logrus.Logger) *Store {
	return &Store{
		repo: repo,
		log:  logger.WithField("component", "snapshot"),
	}
}

// Commit hashes the input, serializes the result, and persists the snapshot
// atomically. On a duplicate content hash the existing snapshot is returned
// unchanged.
func (s *Store) Commit(ctx context.Context, kind models.RunKind, league models.League, input, result any) (*models.RunSnapshot, error) {
	hash, err := ContentHash(kind, input)
	if err != nil {
		return nil, err
	}
	inputJSON, err := CanonicalJSON(input)
	if err != nil {
		return nil, err
	}
	resultJSON, err := CanonicalJSON(result)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize run result: %w", err)
	}

	run := &models.RunSnapshot{
		ID:          uuid.New(),
		ContentHash: hash,
		Kind:        kind,
		League:      league,
		Input:       inputJSON,
		Result:      resultJSON,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, run); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			existing, getErr := s.repo.GetByContentHash(ctx, hash)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load existing snapshot %s: %w", hash, getErr)
			}
			s.log.WithField("content_hash", hash).Info("Snapshot already exists, returning original")
			metrics.RecordSnapshotDeduped()
			return existing, nil
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"run_id":       run.ID,
		"kind":         kind,
		"content_hash": hash,
	}).Info("Snapshot committed")
	return run, nil
}

// Get returns one snapshot by id
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.RunSnapshot, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the most recent snapshots
func (s *Store) List(ctx context.Context, limit int) ([]*models.RunSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}

// Sweep deletes snapshots older than the retention window
func (s *Store) Sweep(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.WithField("deleted", deleted).Info("Retention sweep removed expired snapshots")
	}
	return deleted, nil
}
