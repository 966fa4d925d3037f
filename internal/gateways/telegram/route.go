package telegram

import "github.com/gin-gonic/gin"

func RegisterRoutes(e *gin.Engine, d *Dispatcher) {
	e.POST("/webhook/:token", d.HandleWebhook)
}
