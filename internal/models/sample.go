package models

import "time"

// Sample is a single (timestamp, value) observation of a metric.
// Values are percentages. Samples are immutable once recorded.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MemoryDetails holds absolute memory numbers in GB
type MemoryDetails struct {
	UsedGB  float64 `json:"used_gb"`
	TotalGB float64 `json:"total_gb"`
}

// DiskDetails holds absolute disk numbers in GB
type DiskDetails struct {
	UsedGB  float64 `json:"used_gb"`
	TotalGB float64 `json:"total_gb"`
}
