package routes

import (
	"pehredar/internal/controllers"
	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterStreamRoutes registers the websocket endpoint for live
// snapshot and alert pushes
func RegisterStreamRoutes(r *gin.Engine, hub *services.StreamHub) {
	sc := controllers.NewStreamController(hub)
	r.GET("/ws", sc.HandleStream)
}
