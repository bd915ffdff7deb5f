// Package logger provides run-scoped audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RunLogger provides a dedicated audit trail for engine runs.
type RunLogger struct {
	*logrus.Entry
}

// NewRunLogger creates a new run logger.
func NewRunLogger(baseLogger *logrus.Logger) *RunLogger {
	return &RunLogger{
		Entry: baseLogger.WithField("component", "run"),
	}
}

// LogRunStarted logs the start of an engine operation.
func (rl *RunLogger) LogRunStarted(kind, league, contentHash string, sampleHint int) {
	rl.WithFields(logrus.Fields{
		"kind":         kind,
		"league":       league,
		"content_hash": contentHash,
		"sample_hint":  sampleHint,
	}).Info("Run started")
}

// LogCleaning logs the row-admission outcome so every drop is auditable.
func (rl *RunLogger) LogCleaning(rawRows, kept, droppedNull, droppedNonNumeric int) {
	rl.WithFields(logrus.Fields{
		"raw_rows":            rawRows,
		"rows_after_cleaning": kept,
		"dropped_null":        droppedNull,
		"dropped_non_numeric": droppedNonNumeric,
	}).Info("Cohort rows cleaned")
}

// LogFeatureDropped logs one pruned feature with its reason.
func (rl *RunLogger) LogFeatureDropped(feature, reason string) {
	rl.WithFields(logrus.Fields{
		"feature": feature,
		"reason":  reason,
	}).Info("Feature dropped")
}

// LogSnapshotWritten logs a run snapshot commit.
func (rl *RunLogger) LogSnapshotWritten(runID, contentHash string) {
	rl.WithFields(logrus.Fields{
		"run_id":       runID,
		"content_hash": contentHash,
	}).Info("Run snapshot written")
}

// LogInsufficientData logs a structured not-available outcome.
func (rl *RunLogger) LogInsufficientData(stage, code, message string) {
	rl.WithFields(logrus.Fields{
		"stage":   stage,
		"code":    code,
		"message": message,
	}).Warn("Stage returned insufficient data")
}
