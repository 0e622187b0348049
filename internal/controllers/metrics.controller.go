package controllers

import (
	"net/http"

	"pehredar/internal/models"
	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
)

// MetricsController serves current and historical resource data
type MetricsController struct {
	sampler *services.Sampler
}

// NewMetricsController wires the controller to a sampler
func NewMetricsController(sampler *services.Sampler) *MetricsController {
	return &MetricsController{sampler: sampler}
}

// GetSnapshot returns the current resource snapshot
func (mc *MetricsController) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, mc.sampler.Snapshot())
}

// GetHistory returns the bounded sample history for one metric
// Query params: metric=cpu|memory|disk|network|gpu (default: cpu)
func (mc *MetricsController) GetHistory(c *gin.Context) {
	metric, ok := models.ParseMetric(c.DefaultQuery("metric", "cpu"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metric"})
		return
	}

	samples := mc.sampler.History(metric)
	c.JSON(http.StatusOK, gin.H{
		"metric":  metric,
		"samples": samples,
		"count":   len(samples),
	})
}

// ResetHistory clears all metric histories
func (mc *MetricsController) ResetHistory(c *gin.Context) {
	mc.sampler.ResetHistory()
	c.JSON(http.StatusOK, gin.H{"status": "history reset"})
}
