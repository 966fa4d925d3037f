package app

import (
	"context"

	"donorbot/internal/app/faq"
	"donorbot/internal/app/health"
	"donorbot/internal/app/propagation"
	"donorbot/internal/app/relay"
	"donorbot/internal/app/session"
	"donorbot/internal/app/thread"
	"donorbot/internal/config"
	"donorbot/internal/db"
	tggateway "donorbot/internal/gateways/telegram"
	"donorbot/internal/gateways/websocket"
	"donorbot/internal/providers/redis"
	"donorbot/internal/providers/telegram"
	"donorbot/internal/router"
	"donorbot/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Application struct {
	Router *router.Router
	Store  *db.Manager
}

func Bootstrap(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	manager := db.NewManager(func() (*gorm.DB, error) {
		return db.Connect(cfg, logger)
	}, cfg.ReconnectAttempts, cfg.ReconnectBaseDelay, logger)

	conn, err := manager.Conn(context.Background())
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, logger); err != nil {
		return nil, err
	}

	redisProvider := redis.NewRedisProvider(cfg.RedisURL, logger, cfg.RedisTTL)

	bot, err := telegram.NewBot(cfg.BotToken, logger)
	if err != nil {
		return nil, err
	}

	faqService, err := faq.Load(cfg.FAQPath)
	if err != nil {
		return nil, err
	}

	eventBus := utils.NewEventBus()

	threadRepo := thread.NewRepository(manager)
	sessionRepo := session.NewRepository(manager)

	sessionService := session.NewService(sessionRepo, redisProvider, logger)
	relayService := relay.NewService(threadRepo, bot, eventBus, logger, cfg.ManagerChatID)
	propagationService := propagation.NewService(threadRepo, bot, eventBus, logger, cfg.ManagerChatID)

	hub := websocket.NewHub(logger, eventBus)
	go hub.Run()

	dispatcher := tggateway.NewDispatcher(cfg, bot, relayService, propagationService, faqService, sessionService, logger)

	healthHandler := health.NewHandler(&utils.HealthChecker{
		Store: manager,
		Redis: redisProvider.Client,
	})

	r := router.NewRouter(logger)
	r.RegisterHealthRoutes(healthHandler)
	r.RegisterWebhookRoutes(dispatcher)
	r.RegisterFeedRoutes(hub)

	if cfg.WebhookBaseURL != "" {
		if err := bot.SetWebhook(cfg.WebhookBaseURL, "/webhook/"+cfg.BotToken); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("WEBHOOK_BASE_URL is not set, skipping webhook registration")
	}

	if cfg.ManagerChatID == 0 {
		logger.Warn("MANAGER_GROUP_CHAT_ID is not set, unmatched questions will be rejected")
	}

	return &Application{
		Router: r,
		Store:  manager,
	}, nil
}
