package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunKind names the operation that produced a snapshot
type RunKind string

const (
	RunAnalyze     RunKind = "analyze"
	RunBuildModel  RunKind = "build_model"
	RunWalkforward RunKind = "walkforward"
)

// RunSnapshot is a write-once, replayable record of one engine run, keyed by
// the content hash of its full reproducible input.
type RunSnapshot struct {
	ID          uuid.UUID       `db:"id" json:"id" validate:"required,uuid4"`
	ContentHash string          `db:"content_hash" json:"content_hash" validate:"required,len=64"`
	Kind        RunKind         `db:"kind" json:"kind" validate:"required,oneof=analyze build_model walkforward"`
	League      League          `db:"league" json:"league"`
	Input       json.RawMessage `db:"input" json:"input"`
	Result      json.RawMessage `db:"result" json:"result"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
