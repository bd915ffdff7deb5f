package simulate

import (
	"fmt"
	"sort"
)

// Slice is aggregate performance for one bucket of the tape. RedZone flags a
// bucket whose ROI is negative or whose hit rate trails the implied rate.
type Slice struct {
	Dimension  string  `json:"dimension"`
	Bucket     string  `json:"bucket"`
	Bets       int     `json:"bets"`
	HitRate    float64 `json:"hit_rate"`
	ROIUnits   float64 `json:"roi_units"`
	AvgImplied float64 `json:"avg_implied"`
	RedZone    bool    `json:"red_zone"`
}

// buildSlices groups the tape by confidence band, spread bucket, and
// favorite/underdog, flagging red-zone buckets.
func buildSlices(tape []Bet) []Slice {
	dims := map[string]func(Bet) (string, bool){
		"confidence_band": confidenceBucket,
		"spread_bucket":   spreadBucket,
		"fav_dog":         favDogBucket,
	}

	var slices []Slice
	for dim, bucketOf := range dims {
		byBucket := make(map[string][]Bet)
		for _, bet := range tape {
			if bucket, ok := bucketOf(bet); ok {
				byBucket[bucket] = append(byBucket[bucket], bet)
			}
		}
		for bucket, bets := range byBucket {
			slices = append(slices, summarize(dim, bucket, bets))
		}
	}

	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Dimension != slices[j].Dimension {
			return slices[i].Dimension < slices[j].Dimension
		}
		return slices[i].Bucket < slices[j].Bucket
	})
	return slices
}

func summarize(dim, bucket string, bets []Bet) Slice {
	s := Slice{Dimension: dim, Bucket: bucket}
	var pnl, impliedSum float64
	var decided, wins, priced int
	for _, bet := range bets {
		s.Bets++
		pnl += bet.PnL
		if bet.Implied > 0 {
			impliedSum += bet.Implied
			priced++
		}
		if bet.Won == nil {
			continue
		}
		decided++
		if *bet.Won {
			wins++
		}
	}
	if decided > 0 {
		s.HitRate = float64(wins) / float64(decided)
		s.ROIUnits = pnl / float64(decided)
	}
	if priced > 0 {
		s.AvgImplied = impliedSum / float64(priced)
	}
	s.RedZone = s.ROIUnits < 0 || (priced > 0 && decided > 0 && s.HitRate < s.AvgImplied)
	return s
}

func confidenceBucket(bet Bet) (string, bool) {
	conf := bet.Prob - 0.5
	if conf < 0 {
		conf = -conf
	}
	switch {
	case conf < 0.05:
		return "conf_0.00-0.05", true
	case conf < 0.10:
		return "conf_0.05-0.10", true
	case conf < 0.20:
		return "conf_0.10-0.20", true
	default:
		return "conf_0.20+", true
	}
}

func spreadBucket(bet Bet) (string, bool) {
	if bet.SpreadAbs == nil {
		return "", false
	}
	abs := *bet.SpreadAbs
	switch {
	case abs <= 3:
		return "spread_0-3", true
	case abs <= 6.5:
		return "spread_3.5-6.5", true
	case abs <= 10:
		return "spread_7-10", true
	default:
		return "spread_10.5+", true
	}
}

func favDogBucket(bet Bet) (string, bool) {
	if bet.Implied == 0 {
		return "", false
	}
	switch {
	case bet.Implied > 0.5:
		return "favorite", true
	case bet.Implied < 0.5:
		return "underdog", true
	default:
		return "pickem", true
	}
}

// String renders the slice compactly for console reports
func (s Slice) String() string {
	return fmt.Sprintf("%s/%s: %d bets, hit %.1f%%, roi %+.3f", s.Dimension, s.Bucket, s.Bets, s.HitRate*100, s.ROIUnits)
}
