package services

import (
	"math"
	"sort"
	"time"

	"pehredar/internal/config"
	"pehredar/internal/models"
)

const (
	defaultAnalysisPeriod = 5 * time.Minute

	// the forecast assumes this nominal spacing between samples
	nominalSampleSpacing = 5.0 // minutes

	defaultForecastMinutes   = 30
	defaultAnomalyMultiplier = 2.0

	// a trend flatter than this is reported as stable
	stableTrendBand = 0.5

	// confidence saturates at this many samples
	fullConfidenceSamples = 20.0

	// confidence drops to zero at this standard deviation
	confidenceStdDevCeiling = 20.0
)

// Analyzer derives statistics, forecasts and anomalies from a history
// slice. All operations are pure given identical input; the only state
// is the configured default analysis window.
type Analyzer struct {
	defaultPeriod time.Duration
	now           func() time.Time
}

// NewAnalyzer creates an analyzer configured from the provider
func NewAnalyzer(cfg config.Provider) *Analyzer {
	minutes := cfg.GetInt("app.analysis_period", int(defaultAnalysisPeriod/time.Minute))
	return &Analyzer{
		defaultPeriod: time.Duration(minutes) * time.Minute,
		now:           time.Now,
	}
}

// AnalyzeUsage computes aggregate statistics over the samples newer
// than now minus period. A zero period selects the configured default
// window. An empty or fully filtered history yields all-zero stats.
func (a *Analyzer) AnalyzeUsage(history []models.Sample, period time.Duration) models.UsageStats {
	if period <= 0 {
		period = a.defaultPeriod
	}

	cutoff := a.now().Add(-period)
	values := make([]float64, 0, len(history))
	for _, sample := range history {
		if !sample.Timestamp.Before(cutoff) {
			values = append(values, sample.Value)
		}
	}

	if len(values) == 0 {
		return models.UsageStats{}
	}

	minValue, maxValue := values[0], values[0]
	for _, v := range values {
		if v < minValue {
			minValue = v
		}
		if v > maxValue {
			maxValue = v
		}
	}

	return models.UsageStats{
		Min:     minValue,
		Max:     maxValue,
		Avg:     mean(values),
		Median:  median(values),
		StdDev:  sampleStdDev(values),
		Current: values[len(values)-1],
		Samples: len(values),
	}
}

// PredictUsage extrapolates the average consecutive difference out to
// minutesAhead, assuming the nominal inter-sample spacing. Fewer than
// two samples yield no prediction and a stable trend.
func (a *Analyzer) PredictUsage(history []models.Sample, minutesAhead int) models.Prediction {
	if len(history) < 2 {
		return models.Prediction{Trend: models.TrendStable}
	}

	values := make([]float64, len(history))
	for i, sample := range history {
		values[i] = sample.Value
	}

	diffs := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs = append(diffs, values[i]-values[i-1])
	}
	avgDiff := mean(diffs)

	predicted := values[len(values)-1] + avgDiff*(float64(minutesAhead)/nominalSampleSpacing)
	predicted = math.Max(0, math.Min(100, predicted))

	trend := models.TrendStable
	switch {
	case math.Abs(avgDiff) < stableTrendBand:
		trend = models.TrendStable
	case avgDiff > 0:
		trend = models.TrendIncreasing
	default:
		trend = models.TrendDecreasing
	}

	// more samples and lower volatility raise confidence
	stdDev := sampleStdDev(values)
	samplesFactor := math.Min(1.0, float64(len(values))/fullConfidenceSamples)
	stdDevFactor := math.Max(0.0, 1.0-stdDev/confidenceStdDevCeiling)

	return models.Prediction{
		Predicted:  &predicted,
		Confidence: samplesFactor * stdDevFactor * 100,
		Trend:      trend,
	}
}

// DetectAnomalies flags samples whose value deviates from the mean by
// more than multiplier standard deviations. Fewer than ten samples is
// not enough signal and yields nothing; a non-positive multiplier
// selects the default of 2.
func (a *Analyzer) DetectAnomalies(history []models.Sample, multiplier float64) []models.Sample {
	if len(history) < 10 {
		return nil
	}
	if multiplier <= 0 {
		multiplier = defaultAnomalyMultiplier
	}

	values := make([]float64, len(history))
	for i, sample := range history {
		values[i] = sample.Value
	}

	avg := mean(values)
	limit := sampleStdDev(values) * multiplier

	var anomalies []models.Sample
	for _, sample := range history {
		if math.Abs(sample.Value-avg) > limit {
			anomalies = append(anomalies, sample)
		}
	}
	return anomalies
}

// GenerateReport bundles statistics, forecast and anomalies for every
// metric's history, stamped with the report time
func (a *Analyzer) GenerateReport(histories map[models.Metric][]models.Sample) models.Report {
	report := models.Report{
		Timestamp:   a.now(),
		Resources:   make(map[models.Metric]models.UsageStats, len(models.AllMetrics)),
		Predictions: make(map[models.Metric]models.Prediction, len(models.AllMetrics)),
		Anomalies:   make(map[models.Metric][]models.Sample, len(models.AllMetrics)),
	}

	for _, metric := range models.AllMetrics {
		history := histories[metric]
		report.Resources[metric] = a.AnalyzeUsage(history, 0)
		report.Predictions[metric] = a.PredictUsage(history, defaultForecastMinutes)

		anomalies := a.DetectAnomalies(history, 0)
		if anomalies == nil {
			anomalies = []models.Sample{}
		}
		report.Anomalies[metric] = anomalies
	}
	return report
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// sampleStdDev is the n-1 standard deviation; it is zero for fewer
// than two values
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}

	avg := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - avg
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
