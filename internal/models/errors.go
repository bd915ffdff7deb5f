package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInvalidID        = errors.New("invalid ID format")
	ErrStoreUnavailable = errors.New("historical game store unavailable")
)

// ConfigError is a configuration error rejected before any data access.
// It always names the offending field.
type ConfigError struct {
	Field  string
	Reason string
}

// NewConfigError creates a field-level configuration error
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err is a field-level configuration error
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ReasonCode is a stable machine-readable reason attached to every
// data-insufficiency result. Callers render guidance from the code; the
// human-readable note travels alongside it.
type ReasonCode string

const (
	ReasonInsufficientSample    ReasonCode = "insufficient_sample"
	ReasonNoOddsCoverage        ReasonCode = "no_odds_coverage"
	ReasonTooFewBets            ReasonCode = "too_few_bets"
	ReasonStatTargetNotEligible ReasonCode = "stat_target_not_eligible"
	ReasonNoEligibleFeatures    ReasonCode = "no_eligible_features"
	ReasonModelFitFailed        ReasonCode = "model_fit_failed"
	ReasonNoTriggeredBets       ReasonCode = "no_triggered_bets"
)

// Note pairs a reason code with its human-readable message
type Note struct {
	Code    ReasonCode `json:"code"`
	Message string     `json:"message"`
}

// NewNote builds a note
func NewNote(code ReasonCode, message string) Note {
	return Note{Code: code, Message: message}
}
