package cohort

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/theory-engine/internal/models"
)

func rowWith(features map[string]*float64) *models.CohortRow {
	return &models.CohortRow{Features: features}
}

func ptr(v float64) *float64 { return &v }

func TestCleanDropIfAllNull(t *testing.T) {
	rows := []*models.CohortRow{
		rowWith(map[string]*float64{"a": ptr(1), "b": nil}),
		rowWith(map[string]*float64{"a": nil, "b": nil}),
	}

	kept, summary := Clean(rows, models.CleaningOptions{DropIfAllNull: true})
	assert.Len(t, kept, 1)
	assert.Equal(t, 2, summary.RawRows)
	assert.Equal(t, 1, summary.RowsAfterCleaning)
	assert.Equal(t, 1, summary.DroppedNull)
}

func TestCleanDropIfAnyNull(t *testing.T) {
	rows := []*models.CohortRow{
		rowWith(map[string]*float64{"a": ptr(1), "b": ptr(2)}),
		rowWith(map[string]*float64{"a": ptr(1), "b": nil}),
	}

	kept, summary := Clean(rows, models.CleaningOptions{DropIfAnyNull: true})
	assert.Len(t, kept, 1)
	assert.Equal(t, 1, summary.DroppedNull)
}

func TestCleanDropNonNumeric(t *testing.T) {
	rows := []*models.CohortRow{
		rowWith(map[string]*float64{"a": ptr(math.NaN())}),
		rowWith(map[string]*float64{"a": ptr(math.Inf(1))}),
		rowWith(map[string]*float64{"a": ptr(1)}),
	}

	kept, summary := Clean(rows, models.CleaningOptions{DropIfNonNumeric: true})
	assert.Len(t, kept, 1)
	assert.Equal(t, 2, summary.DroppedNonNumeric)
	assert.Zero(t, summary.DroppedNull)
}

func TestCleanMinNonNullFeatures(t *testing.T) {
	rows := []*models.CohortRow{
		rowWith(map[string]*float64{"a": ptr(1), "b": ptr(2)}),
		rowWith(map[string]*float64{"a": ptr(1), "b": nil}),
	}

	kept, summary := Clean(rows, models.CleaningOptions{MinNonNullFeatures: 2})
	assert.Len(t, kept, 1)
	assert.Equal(t, 1, summary.DroppedNull)
}

func TestCleanNoOptionsKeepsEverything(t *testing.T) {
	rows := []*models.CohortRow{
		rowWith(map[string]*float64{"a": nil}),
		rowWith(map[string]*float64{"a": ptr(1)}),
	}

	kept, summary := Clean(rows, models.CleaningOptions{})
	assert.Len(t, kept, 2)
	assert.Equal(t, 2, summary.RowsAfterCleaning)
}
