package models

import (
	"fmt"
	"time"
)

// criticalOverrun is the fraction of the threshold by which a value must
// overshoot for the alert to be flagged critical.
const criticalOverrun = 0.20

// Alert records one threshold crossing. It is never mutated after
// creation; resolution only removes it from the active set.
type Alert struct {
	Timestamp    time.Time `json:"timestamp"`
	ResourceType Metric    `json:"resource_type"`
	Value        float64   `json:"value"`
	Threshold    float64   `json:"threshold"`
	Message      string    `json:"message"`
	IsCritical   bool      `json:"is_critical"`
}

// NewAlert builds an alert for a threshold crossing. Criticality is
// derived once, at creation time: the overrun must exceed 20% of the
// threshold.
func NewAlert(ts time.Time, resource Metric, value, threshold float64) Alert {
	return Alert{
		Timestamp:    ts,
		ResourceType: resource,
		Value:        value,
		Threshold:    threshold,
		Message:      fmt.Sprintf("%s usage (%.1f%%) exceeded threshold (%.1f%%)", resource, value, threshold),
		IsCritical:   (value-threshold)/threshold > criticalOverrun,
	}
}
