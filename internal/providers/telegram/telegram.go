package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// API is the slice of the Bot API the engines need. Keeping it narrow
// lets tests substitute a scripted double.
type API interface {
	BotID() int64
	SendMessage(chatID int64, text string) (int, error)
	SendReply(chatID int64, replyToMessageID int, text string) (int, error)
	SendHTML(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, rows [][]string) error
	EditMessage(chatID int64, messageID int, text string) error
	DeleteMessage(chatID int64, messageID int) error
	CanDeleteMessages(chatID, userID int64) (bool, error)
}

type Bot struct {
	api    *tgbotapi.BotAPI
	logger *zap.SugaredLogger
}

func NewBot(token string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}

	logger.Info("Telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("bot_id", api.Self.ID),
	)

	return &Bot{
		api:    api,
		logger: logger.Sugar(),
	}, nil
}

func (b *Bot) BotID() int64 {
	return b.api.Self.ID
}

func (b *Bot) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) SendReply(chatID int64, replyToMessageID int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyToMessageID
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) SendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendKeyboard(chatID int64, text string, rows [][]string) error {
	keyboard := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		keyboard = append(keyboard, buttons)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(keyboard...)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) EditMessage(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) DeleteMessage(chatID int64, messageID int) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (b *Bot) CanDeleteMessages(chatID, userID int64) (bool, error) {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, err
	}
	if member.Status == "creator" {
		return true, nil
	}
	return member.Status == "administrator" && member.CanDeleteMessages, nil
}

// SetWebhook registers the externally reachable callback URL. The path
// contains the bot token, so only the base URL is logged.
func (b *Bot) SetWebhook(baseURL, path string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return err
	}
	if _, err := b.api.Request(wh); err != nil {
		return err
	}
	b.logger.Infow("Webhook registered", "base_url", baseURL)
	return nil
}
