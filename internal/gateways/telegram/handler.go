package telegram

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"
)

// HandleWebhook receives update callbacks from the Bot API. The bot
// token doubles as the URL path secret, the same scheme the webhook was
// registered with.
func (d *Dispatcher) HandleWebhook(c *gin.Context) {
	if c.Param("token") != d.webhookToken {
		c.Status(http.StatusUnauthorized)
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		d.logger.Warnw("Failed to decode webhook update", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	d.Dispatch(c.Request.Context(), &update)

	// Always acknowledge: the transport must not redeliver an update
	// whose processing failed locally.
	c.Status(http.StatusOK)
}
