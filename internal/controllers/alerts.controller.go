package controllers

import (
	"net/http"

	"pehredar/internal/models"
	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
)

// AlertsController exposes the alert manager's public surface
type AlertsController struct {
	manager *services.AlertManager
}

// NewAlertsController wires the controller to an alert manager
func NewAlertsController(manager *services.AlertManager) *AlertsController {
	return &AlertsController{manager: manager}
}

// GetAlerts returns the active alert set
func (ac *AlertsController) GetAlerts(c *gin.Context) {
	alerts := ac.manager.GetActiveAlerts()
	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// GetThresholds returns the current per-resource thresholds
func (ac *AlertsController) GetThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"thresholds": ac.manager.GetThresholds()})
}

type thresholdRequest struct {
	Resource string   `json:"resource" binding:"required"`
	Value    *float64 `json:"value" binding:"required"`
}

// SetThreshold updates one resource threshold
// Body: {"resource": "cpu", "value": 85}
func (ac *AlertsController) SetThreshold(c *gin.Context) {
	var req thresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.manager.SetThreshold(models.Metric(req.Resource), *req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource":  req.Resource,
		"threshold": *req.Value,
	})
}

// ClearAlerts empties the active alert set
func (ac *AlertsController) ClearAlerts(c *gin.Context) {
	ac.manager.ClearAlerts()
	c.JSON(http.StatusOK, gin.H{"status": "alerts cleared"})
}
