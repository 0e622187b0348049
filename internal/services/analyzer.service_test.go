package services

import (
	"testing"
	"time"

	"pehredar/internal/config"
	"pehredar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) (*Analyzer, time.Time) {
	t.Helper()
	analyzer := NewAnalyzer(config.New())
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	analyzer.now = func() time.Time { return now }
	return analyzer, now
}

// historyEndingAt builds samples spaced ten seconds apart, the last one
// at the given time
func historyEndingAt(end time.Time, values ...float64) []models.Sample {
	history := make([]models.Sample, len(values))
	for i, v := range values {
		history[i] = models.Sample{
			Timestamp: end.Add(-time.Duration(len(values)-1-i) * 10 * time.Second),
			Value:     v,
		}
	}
	return history
}

func TestAnalyzeUsageEmptyHistory(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	stats := analyzer.AnalyzeUsage(nil, 0)

	assert.Equal(t, models.UsageStats{}, stats)
}

func TestAnalyzeUsageFullyFilteredHistory(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)
	history := historyEndingAt(now.Add(-time.Hour), 10, 20, 30)

	stats := analyzer.AnalyzeUsage(history, 5*time.Minute)

	assert.Equal(t, models.UsageStats{}, stats)
}

func TestAnalyzeUsageStatistics(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)
	history := historyEndingAt(now, 10, 20, 30, 40)

	stats := analyzer.AnalyzeUsage(history, 0)

	assert.Equal(t, 10.0, stats.Min)
	assert.Equal(t, 40.0, stats.Max)
	assert.Equal(t, 25.0, stats.Avg)
	assert.Equal(t, 25.0, stats.Median)
	assert.Equal(t, 40.0, stats.Current)
	assert.Equal(t, 4, stats.Samples)
	assert.InDelta(t, 12.909, stats.StdDev, 0.001)
}

func TestAnalyzeUsageOddMedianAndWindow(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)
	// the first two samples fall outside a one-minute window
	history := []models.Sample{
		{Timestamp: now.Add(-3 * time.Minute), Value: 99},
		{Timestamp: now.Add(-2 * time.Minute), Value: 98},
		{Timestamp: now.Add(-40 * time.Second), Value: 10},
		{Timestamp: now.Add(-20 * time.Second), Value: 30},
		{Timestamp: now, Value: 20},
	}

	stats := analyzer.AnalyzeUsage(history, time.Minute)

	assert.Equal(t, 3, stats.Samples)
	assert.Equal(t, 20.0, stats.Median)
	assert.Equal(t, 20.0, stats.Current)
}

func TestAnalyzeUsageSingleSampleHasZeroStdDev(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)

	stats := analyzer.AnalyzeUsage(historyEndingAt(now, 42), 0)

	assert.Equal(t, 1, stats.Samples)
	assert.Zero(t, stats.StdDev)
}

func TestPredictUsageNeedsTwoSamples(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)

	for _, history := range [][]models.Sample{nil, historyEndingAt(now, 50)} {
		prediction := analyzer.PredictUsage(history, 30)
		assert.Nil(t, prediction.Predicted)
		assert.Zero(t, prediction.Confidence)
		assert.Equal(t, models.TrendStable, prediction.Trend)
	}
}

func TestPredictUsageIncreasingTrend(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)
	history := historyEndingAt(now, 10, 20, 30)

	prediction := analyzer.PredictUsage(history, 5)

	require.NotNil(t, prediction.Predicted)
	// average diff 10 over one nominal spacing
	assert.InDelta(t, 40.0, *prediction.Predicted, 0.001)
	assert.Equal(t, models.TrendIncreasing, prediction.Trend)
	// 3 of 20 samples, std dev 10 of 20
	assert.InDelta(t, 7.5, prediction.Confidence, 0.001)
}

func TestPredictUsageDecreasingTrend(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)

	prediction := analyzer.PredictUsage(historyEndingAt(now, 30, 20, 10), 5)

	require.NotNil(t, prediction.Predicted)
	assert.InDelta(t, 0.0, *prediction.Predicted, 0.001)
	assert.Equal(t, models.TrendDecreasing, prediction.Trend)
}

func TestPredictUsageStableTrend(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)

	prediction := analyzer.PredictUsage(historyEndingAt(now, 50, 50.2, 50.4), 30)

	assert.Equal(t, models.TrendStable, prediction.Trend)
}

func TestPredictUsageClampsToHundred(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)

	prediction := analyzer.PredictUsage(historyEndingAt(now, 90, 95, 100), 30)

	require.NotNil(t, prediction.Predicted)
	assert.Equal(t, 100.0, *prediction.Predicted)
}

func TestDetectAnomaliesNeedsTenSamples(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)
	history := historyEndingAt(now, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	assert.Empty(t, analyzer.DetectAnomalies(history, 2.0))
}

func TestDetectAnomaliesFlagsOutlier(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)
	values := []float64{50, 50, 50, 50, 50, 100, 50, 50, 50, 50, 50, 50}
	history := historyEndingAt(now, values...)

	anomalies := analyzer.DetectAnomalies(history, 2.0)

	require.Len(t, anomalies, 1)
	assert.Equal(t, 100.0, anomalies[0].Value)
}

func TestDetectAnomaliesUniformSeries(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)
	values := make([]float64, 15)
	for i := range values {
		values[i] = 60
	}

	assert.Empty(t, analyzer.DetectAnomalies(historyEndingAt(now, values...), 2.0))
}

func TestGenerateReportCoversAllMetrics(t *testing.T) {
	analyzer, now := newTestAnalyzer(t)
	histories := map[models.Metric][]models.Sample{
		models.MetricCPU:    historyEndingAt(now, 10, 20, 30),
		models.MetricMemory: historyEndingAt(now, 40, 40, 40),
	}

	report := analyzer.GenerateReport(histories)

	assert.Equal(t, now, report.Timestamp)
	for _, metric := range models.AllMetrics {
		_, hasStats := report.Resources[metric]
		_, hasPrediction := report.Predictions[metric]
		anomalies, hasAnomalies := report.Anomalies[metric]
		assert.True(t, hasStats, metric)
		assert.True(t, hasPrediction, metric)
		assert.True(t, hasAnomalies, metric)
		assert.NotNil(t, anomalies, metric)
	}
	assert.Equal(t, 3, report.Resources[models.MetricCPU].Samples)
	assert.Zero(t, report.Resources[models.MetricDisk].Samples)
}
