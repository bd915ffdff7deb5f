package models

import "time"

// WalkforwardWindow bounds the rolling train/test windows
type WalkforwardWindow struct {
	TrainDays int `json:"train_days" validate:"required,gte=30,lte=730"`
	TestDays  int `json:"test_days" validate:"required,gte=3,lte=90"`
	StepDays  int `json:"step_days" validate:"required,gte=3,lte=90"`
}

// WalkforwardSlice records out-of-sample performance for one test window
type WalkforwardSlice struct {
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	SampleSize      int       `json:"sample_size"`
	HitRate         float64   `json:"hit_rate"`
	ROIUnits        float64   `json:"roi_units"`
	EdgeAvg         float64   `json:"edge_avg"`
	OddsCoveragePct float64   `json:"odds_coverage_pct"`
}
