package router

import (
	"donorbot/internal/app/health"
	tggateway "donorbot/internal/gateways/telegram"
	"donorbot/internal/gateways/websocket"
	"donorbot/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(logger *zap.Logger) *Router {
	engine := gin.New()
	engine.Use(middleware.CORSMiddleware())
	engine.Use(middleware.LoggerMiddleware(logger))
	engine.Use(gin.Recovery())
	return &Router{Engine: engine}
}

func (r *Router) RegisterHealthRoutes(handler health.Handler) {
	health.RegisterRoutes(r.Engine.Group("/api"), handler)
}

func (r *Router) RegisterWebhookRoutes(dispatcher *tggateway.Dispatcher) {
	tggateway.RegisterRoutes(r.Engine, dispatcher)
}

func (r *Router) RegisterFeedRoutes(hub *websocket.Hub) {
	websocket.RegisterRoutes(r.Engine.Group("/api"), hub)
}
