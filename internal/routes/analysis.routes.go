package routes

import (
	"pehredar/internal/controllers"
	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterAnalysisRoutes(r *gin.Engine, sampler *services.Sampler, analyzer *services.Analyzer) {
	ac := controllers.NewAnalysisController(sampler, analyzer)

	analysis := r.Group("/analysis")
	{
		analysis.GET("/usage", ac.GetUsage)
		analysis.GET("/prediction", ac.GetPrediction)
		analysis.GET("/anomalies", ac.GetAnomalies)
		analysis.GET("/report", ac.GetReport)
	}
}
