package models

import "time"

// ResourceSnapshot is a point-in-time view of system resources, built
// from the latest sample of each metric history plus detail lookups.
// Network, GPU and temperature are omitted when not monitored/available.
type ResourceSnapshot struct {
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	DiskUsage   float64 `json:"disk_usage"`

	MemoryUsedGB  float64 `json:"memory_used_gb"`
	MemoryTotalGB float64 `json:"memory_total_gb"`
	DiskUsedGB    float64 `json:"disk_used_gb"`
	DiskTotalGB   float64 `json:"disk_total_gb"`

	NetworkUsage *float64 `json:"network_usage,omitempty"`
	GPUUsage     *float64 `json:"gpu_usage,omitempty"`
	CPUTemp      *float64 `json:"cpu_temp,omitempty"`

	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// Usage returns the snapshot's value for a metric. The second result is
// false for metrics that were not monitored when the snapshot was built.
func (s ResourceSnapshot) Usage(metric Metric) (float64, bool) {
	switch metric {
	case MetricCPU:
		return s.CPUUsage, true
	case MetricMemory:
		return s.MemoryUsage, true
	case MetricDisk:
		return s.DiskUsage, true
	case MetricNetwork:
		if s.NetworkUsage != nil {
			return *s.NetworkUsage, true
		}
	case MetricGPU:
		if s.GPUUsage != nil {
			return *s.GPUUsage, true
		}
	}
	return 0, false
}
