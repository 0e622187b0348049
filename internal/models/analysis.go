package models

import "time"

// Trend classifies the direction of a metric's recent movement
type Trend string

const (
	TrendStable     Trend = "stable"
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

// UsageStats holds aggregate statistics over a history window
type UsageStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Avg     float64 `json:"avg"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"`
	Current float64 `json:"current"`
	Samples int     `json:"samples"`
}

// Prediction is a linear trend forecast. Predicted is nil when the
// history is too short to extrapolate.
type Prediction struct {
	Predicted  *float64 `json:"predicted"`
	Confidence float64  `json:"confidence"`
	Trend      Trend    `json:"trend"`
}

// Report bundles statistics, forecasts and anomalies for every
// monitored metric at one point in time
type Report struct {
	Timestamp   time.Time             `json:"timestamp"`
	Resources   map[Metric]UsageStats `json:"resources"`
	Predictions map[Metric]Prediction `json:"predictions"`
	Anomalies   map[Metric][]Sample   `json:"anomalies"`
}
