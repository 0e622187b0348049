package routes

import (
	"pehredar/internal/controllers"
	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterMetricRoutes(r *gin.Engine, sampler *services.Sampler) {
	mc := controllers.NewMetricsController(sampler)

	metrics := r.Group("/metrics")
	{
		metrics.GET("/", mc.GetSnapshot)
		metrics.GET("/history", mc.GetHistory)
		metrics.POST("/history/reset", mc.ResetHistory)
	}
}
