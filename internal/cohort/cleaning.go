package cohort

import (
	"math"

	"github.com/yourusername/theory-engine/internal/models"
)

// Clean applies row admission rules before any statistics are computed and
// returns the surviving rows with an auditable summary. Input order is
// preserved.
func Clean(rows []*models.CohortRow, opts models.CleaningOptions) ([]*models.CohortRow, models.CleaningSummary) {
	summary := models.CleaningSummary{RawRows: len(rows)}
	kept := make([]*models.CohortRow, 0, len(rows))

	for _, row := range rows {
		nonNull := 0
		nonNumeric := false
		for _, v := range row.Features {
			if v == nil {
				continue
			}
			if math.IsNaN(*v) || math.IsInf(*v, 0) {
				nonNumeric = true
				continue
			}
			nonNull++
		}

		if opts.DropIfNonNumeric && nonNumeric {
			summary.DroppedNonNumeric++
			continue
		}
		if opts.DropIfAllNull && len(row.Features) > 0 && nonNull == 0 {
			summary.DroppedNull++
			continue
		}
		if opts.DropIfAnyNull && nonNull < len(row.Features) {
			summary.DroppedNull++
			continue
		}
		if opts.MinNonNullFeatures > 0 && nonNull < opts.MinNonNullFeatures {
			summary.DroppedNull++
			continue
		}
		kept = append(kept, row)
	}

	summary.RowsAfterCleaning = len(kept)
	return kept, summary
}
