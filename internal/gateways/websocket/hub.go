package websocket

import (
	"crypto/rand"
	"encoding/base64"

	"donorbot/internal/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	ID   string
}

func generateClientID() string {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "xxxxx"
	}
	return base64.URLEncoding.EncodeToString(bytes)
}

// Hub fans relay and propagation events out to connected staff
// dashboards so thread activity can be watched live.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     <-chan utils.Event
	logger     *zap.SugaredLogger
}

func NewHub(logger *zap.Logger, eventBus *utils.EventBus) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     eventBus.SubscribeCh(),
		logger:     logger.Sugar(),
	}
}

func (h *Hub) Run() {
	h.logger.Info("Event feed hub started")

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Infow("Feed client connected",
				"client_id", client.ID,
				"clients_count", len(h.clients),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.logger.Infow("Feed client disconnected",
					"client_id", client.ID,
					"clients_count", len(h.clients),
				)
			}

		case event := <-h.events:
			for client := range h.clients {
				if err := client.conn.WriteJSON(event); err != nil {
					h.logger.Warnw("Failed to push event to feed client",
						"client_id", client.ID,
						"error", err,
					)
					client.conn.Close()
					delete(h.clients, client)
				}
			}
		}
	}
}
