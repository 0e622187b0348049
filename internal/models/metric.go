package models

// Metric identifies one monitored resource dimension
type Metric string

const (
	MetricCPU     Metric = "cpu"
	MetricMemory  Metric = "memory"
	MetricDisk    Metric = "disk"
	MetricNetwork Metric = "network"
	MetricGPU     Metric = "gpu"
)

// AllMetrics lists every metric in evaluation order.
// Sampling and alert checks always walk this order.
var AllMetrics = []Metric{MetricCPU, MetricMemory, MetricDisk, MetricNetwork, MetricGPU}

// ParseMetric validates a metric name from an external caller
func ParseMetric(s string) (Metric, bool) {
	switch Metric(s) {
	case MetricCPU, MetricMemory, MetricDisk, MetricNetwork, MetricGPU:
		return Metric(s), true
	}
	return "", false
}

func (m Metric) String() string {
	return string(m)
}
