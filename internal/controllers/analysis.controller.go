package controllers

import (
	"net/http"
	"strconv"
	"time"

	"pehredar/internal/models"
	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
)

// AnalysisController serves statistics, forecasts and anomaly reports
// derived from the sampler's histories
type AnalysisController struct {
	sampler  *services.Sampler
	analyzer *services.Analyzer
}

// NewAnalysisController wires the controller to a sampler and analyzer
func NewAnalysisController(sampler *services.Sampler, analyzer *services.Analyzer) *AnalysisController {
	return &AnalysisController{sampler: sampler, analyzer: analyzer}
}

// GetUsage returns aggregate statistics for one metric
// Query params: metric=cpu|..., period=5m|1h (default: configured window)
func (ac *AnalysisController) GetUsage(c *gin.Context) {
	metric, ok := models.ParseMetric(c.DefaultQuery("metric", "cpu"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metric"})
		return
	}

	var period time.Duration
	if raw := c.Query("period"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period format"})
			return
		}
		period = parsed
	}

	stats := ac.analyzer.AnalyzeUsage(ac.sampler.History(metric), period)
	c.JSON(http.StatusOK, gin.H{
		"metric": metric,
		"stats":  stats,
	})
}

// GetPrediction returns a linear trend forecast for one metric
// Query params: metric=cpu|..., minutes=30
func (ac *AnalysisController) GetPrediction(c *gin.Context) {
	metric, ok := models.ParseMetric(c.DefaultQuery("metric", "cpu"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metric"})
		return
	}

	minutes, err := strconv.Atoi(c.DefaultQuery("minutes", "30"))
	if err != nil || minutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minutes value"})
		return
	}

	prediction := ac.analyzer.PredictUsage(ac.sampler.History(metric), minutes)
	c.JSON(http.StatusOK, gin.H{
		"metric":     metric,
		"minutes":    minutes,
		"prediction": prediction,
	})
}

// GetAnomalies returns samples deviating from the mean beyond the
// multiplier times the standard deviation
// Query params: metric=cpu|..., multiplier=2.0
func (ac *AnalysisController) GetAnomalies(c *gin.Context) {
	metric, ok := models.ParseMetric(c.DefaultQuery("metric", "cpu"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metric"})
		return
	}

	multiplier, err := strconv.ParseFloat(c.DefaultQuery("multiplier", "2.0"), 64)
	if err != nil || multiplier <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multiplier value"})
		return
	}

	anomalies := ac.analyzer.DetectAnomalies(ac.sampler.History(metric), multiplier)
	if anomalies == nil {
		anomalies = []models.Sample{}
	}
	c.JSON(http.StatusOK, gin.H{
		"metric":    metric,
		"anomalies": anomalies,
		"count":     len(anomalies),
	})
}

// GetReport returns the full stats/forecast/anomaly bundle for every metric
func (ac *AnalysisController) GetReport(c *gin.Context) {
	histories := make(map[models.Metric][]models.Sample, len(models.AllMetrics))
	for _, metric := range models.AllMetrics {
		histories[metric] = ac.sampler.History(metric)
	}
	c.JSON(http.StatusOK, ac.analyzer.GenerateReport(histories))
}
