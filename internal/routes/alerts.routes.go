package routes

import (
	"pehredar/internal/controllers"
	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterAlertRoutes(r *gin.Engine, manager *services.AlertManager) {
	ac := controllers.NewAlertsController(manager)

	alerts := r.Group("/alerts")
	{
		alerts.GET("/", ac.GetAlerts)
		alerts.GET("/thresholds", ac.GetThresholds)
		alerts.PUT("/thresholds", ac.SetThreshold)
		alerts.POST("/clear", ac.ClearAlerts)
	}
}
