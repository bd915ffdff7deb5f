package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tapeBet(prob, implied float64, spreadAbs *float64, won bool, pnl float64) Bet {
	w := won
	return Bet{Prob: prob, Implied: implied, SpreadAbs: spreadAbs, Won: &w, PnL: pnl, Stake: 1}
}

func TestBuildSlicesBuckets(t *testing.T) {
	seven := 7.0
	two := 2.0
	tape := []Bet{
		tapeBet(0.62, 0.52, &seven, true, 0.9),
		tapeBet(0.62, 0.52, &seven, false, -1),
		tapeBet(0.53, 0.45, &two, true, 1.1),
	}

	slices := buildSlices(tape)

	find := func(dim, bucket string) *Slice {
		for i := range slices {
			if slices[i].Dimension == dim && slices[i].Bucket == bucket {
				return &slices[i]
			}
		}
		return nil
	}

	band := find("confidence_band", "conf_0.10-0.20")
	require.NotNil(t, band)
	assert.Equal(t, 2, band.Bets)
	assert.Equal(t, 0.5, band.HitRate)

	low := find("confidence_band", "conf_0.00-0.05")
	require.NotNil(t, low)
	assert.Equal(t, 1, low.Bets)

	assert.NotNil(t, find("spread_bucket", "spread_7-10"))
	assert.NotNil(t, find("spread_bucket", "spread_0-3"))

	fav := find("fav_dog", "favorite")
	require.NotNil(t, fav)
	assert.Equal(t, 2, fav.Bets)
	dog := find("fav_dog", "underdog")
	require.NotNil(t, dog)
	assert.Equal(t, 1, dog.Bets)
}

func TestSliceRedZoneFlags(t *testing.T) {
	losing := summarize("fav_dog", "favorite", []Bet{
		tapeBet(0.6, 0.55, nil, false, -1),
		tapeBet(0.6, 0.55, nil, true, 0.9),
	})
	assert.True(t, losing.RedZone, "negative ROI marks the bucket red")

	trailing := summarize("fav_dog", "favorite", []Bet{
		tapeBet(0.6, 0.70, nil, true, 1.6),
		tapeBet(0.6, 0.70, nil, false, -1),
	})
	assert.True(t, trailing.RedZone, "hit rate under the implied rate marks the bucket red")

	healthy := summarize("fav_dog", "favorite", []Bet{
		tapeBet(0.6, 0.52, nil, true, 0.9),
		tapeBet(0.6, 0.52, nil, true, 0.9),
	})
	assert.False(t, healthy.RedZone)
}

func TestSlicesAreDeterministicallyOrdered(t *testing.T) {
	seven := 7.0
	tape := []Bet{
		tapeBet(0.62, 0.52, &seven, true, 0.9),
		tapeBet(0.53, 0.45, nil, true, 1.1),
	}
	first := buildSlices(tape)
	second := buildSlices(tape)
	assert.Equal(t, first, second)
}
