package telegram

import (
	"context"
	"errors"

	"donorbot/internal/app/faq"
	"donorbot/internal/app/propagation"
	"donorbot/internal/app/relay"
	"donorbot/internal/app/session"
	"donorbot/internal/config"
	"donorbot/internal/db"
	"donorbot/internal/providers/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	backLabel = "⬅️ Назад"
	askLabel  = "Свой вопрос❓"

	askPromptText    = "Напишите вопрос в строке ниже и в ближайшее время организатор ответит Вам"
	menuPromptText   = "Выберите интересующий Вас вопрос:"
	noOperatorsText  = "В настоящее время нет доступных менеджеров. Пожалуйста, попробуйте позже."
	storeDownText    = "❌ Сервис временно недоступен. Пожалуйста, попробуйте позже."
	relayFailedText  = "❌ Произошла ошибка при пересылке вопроса менеджеру. Пожалуйста, попробуйте позже."
	delUsageText     = "Команда /del должна быть ответом на сообщение с ответом пользователю."
	delNoRightsText  = "У вас нет прав на удаление сообщений."
	delNotFoundText  = "Сообщение не найдено среди отслеживаемых ответов."
	delDoneText      = "Ответ удалён у пользователя."
	delFailedText    = "Не удалось удалить ответ у пользователя."
)

// Dispatcher routes inbound bot updates: private-chat traffic walks the
// FAQ menu or gets relayed to the manager group, manager-group traffic
// drives reply propagation. A failed event is logged and dropped so it
// never blocks the next one.
type Dispatcher struct {
	api           telegram.API
	relaySvc      relay.Service
	propSvc       propagation.Service
	faqSvc        faq.Service
	sessionSvc    session.Service
	logger        *zap.SugaredLogger
	managerChatID int64
	webhookToken  string
}

func NewDispatcher(
	cfg *config.Config,
	api telegram.API,
	relaySvc relay.Service,
	propSvc propagation.Service,
	faqSvc faq.Service,
	sessionSvc session.Service,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		api:           api,
		relaySvc:      relaySvc,
		propSvc:       propSvc,
		faqSvc:        faqSvc,
		sessionSvc:    sessionSvc,
		logger:        logger.Sugar(),
		managerChatID: cfg.ManagerChatID,
		webhookToken:  cfg.BotToken,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.EditedMessage != nil:
		d.handleEdited(ctx, update.EditedMessage)
	case update.Message != nil:
		d.handleMessage(ctx, update.Message)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil {
		return
	}
	if m.Chat.ID == d.managerChatID {
		d.handleGroupMessage(ctx, m)
		return
	}
	d.handlePrivateMessage(ctx, m)
}

func (d *Dispatcher) handleGroupMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil {
		return
	}

	if m.IsCommand() && m.Command() == "del" {
		d.handleDeleteCommand(ctx, m)
		return
	}

	// Only replies to the bot's own forwards are manager answers;
	// everything else is ordinary group chatter.
	if m.ReplyToMessage == nil || m.ReplyToMessage.From == nil ||
		m.ReplyToMessage.From.ID != d.api.BotID() || m.Text == "" {
		return
	}

	err := d.propSvc.PropagateNewReply(ctx, m.ReplyToMessage.MessageID, m.MessageID, m.Text)
	if err != nil {
		if errors.Is(err, propagation.ErrNotFound) {
			d.logger.Warnw("Reply to an untracked message, dropping",
				"group_message_id", m.ReplyToMessage.MessageID,
			)
			return
		}
		d.logger.Errorw("Failed to propagate manager reply",
			"group_reply_id", m.MessageID,
			"error", err,
		)
	}
}

func (d *Dispatcher) handleDeleteCommand(ctx context.Context, m *tgbotapi.Message) {
	if m.ReplyToMessage == nil {
		d.reply(m.Chat.ID, m.MessageID, delUsageText)
		return
	}

	err := d.propSvc.PropagateDelete(ctx, m.From.ID, m.ReplyToMessage.MessageID)
	switch {
	case err == nil:
		d.reply(m.Chat.ID, m.MessageID, delDoneText)
	case errors.Is(err, propagation.ErrInsufficientPrivilege):
		d.reply(m.Chat.ID, m.MessageID, delNoRightsText)
	case errors.Is(err, propagation.ErrNotFound):
		d.reply(m.Chat.ID, m.MessageID, delNotFoundText)
	default:
		d.logger.Errorw("Failed to propagate delete",
			"group_reply_id", m.ReplyToMessage.MessageID,
			"error", err,
		)
		d.reply(m.Chat.ID, m.MessageID, delFailedText)
	}
}

func (d *Dispatcher) handleEdited(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil || m.Chat.ID != d.managerChatID || m.Text == "" {
		return
	}

	err := d.propSvc.PropagateEdit(ctx, m.MessageID, m.Text)
	if err != nil {
		if errors.Is(err, propagation.ErrNotFound) {
			d.logger.Debugw("Edit of an untracked message, dropping", "group_reply_id", m.MessageID)
			return
		}
		d.logger.Errorw("Failed to propagate edit",
			"group_reply_id", m.MessageID,
			"error", err,
		)
	}
}

func (d *Dispatcher) handlePrivateMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.IsCommand() {
		if m.Command() == "start" {
			d.handleStart(ctx, m)
		}
		return
	}
	if m.Text == "" {
		return
	}

	sess, err := d.sessionSvc.Get(ctx, m.Chat.ID)
	if err != nil {
		// Menu state is a convenience; without it the message is
		// treated as a root-level choice.
		d.logger.Warnw("Failed to load session, walking menu from root",
			"chat_id", m.Chat.ID,
			"error", err,
		)
		sess = &session.Session{ChatID: m.Chat.ID}
	}

	switch m.Text {
	case askLabel:
		if err := d.sessionSvc.SetAwaiting(ctx, m.Chat.ID, true); err != nil {
			d.logger.Warnw("Failed to persist awaiting flag", "chat_id", m.Chat.ID, "error", err)
		}
		d.send(m.Chat.ID, askPromptText)
		return
	case backLabel:
		d.handleBack(ctx, m, sess)
		return
	}

	if sess.AwaitingQuestion {
		if err := d.sessionSvc.SetAwaiting(ctx, m.Chat.ID, false); err != nil {
			d.logger.Warnw("Failed to clear awaiting flag", "chat_id", m.Chat.ID, "error", err)
		}
		d.relayQuestion(ctx, m)
		return
	}

	branch, ok := d.faqSvc.Resolve(sess.Path())
	if !ok {
		branch = d.faqSvc.Root()
		if err := d.sessionSvc.SetPath(ctx, m.Chat.ID, nil); err != nil {
			d.logger.Warnw("Failed to reset stale menu path", "chat_id", m.Chat.ID, "error", err)
		}
		sess.SetPath(nil)
	}

	node, found := branch.Find(m.Text)
	if !found {
		d.relayQuestion(ctx, m)
		return
	}

	switch n := node.(type) {
	case faq.Leaf:
		answer, _ := d.faqSvc.Answer(n.AnswerKey)
		if err := d.api.SendHTML(m.Chat.ID, answer); err != nil {
			d.logger.Errorw("Failed to send FAQ answer", "chat_id", m.Chat.ID, "error", err)
		}
		d.logger.Infow("FAQ question answered",
			"chat_id", m.Chat.ID,
			"question", m.Text,
		)
	case *faq.Branch:
		path := append(sess.Path(), m.Text)
		if err := d.sessionSvc.SetPath(ctx, m.Chat.ID, path); err != nil {
			d.logger.Warnw("Failed to persist menu path", "chat_id", m.Chat.ID, "error", err)
		}
		if n.SelfAnswer != "" {
			if answer, ok := d.faqSvc.Answer(n.SelfAnswer); ok {
				if err := d.api.SendHTML(m.Chat.ID, answer); err != nil {
					d.logger.Errorw("Failed to send FAQ answer", "chat_id", m.Chat.ID, "error", err)
				}
			}
		}
		d.sendMenu(m.Chat.ID, menuPromptText, n, false)
	}
}

func (d *Dispatcher) handleStart(ctx context.Context, m *tgbotapi.Message) {
	username := ""
	if m.From != nil {
		username = m.From.UserName
	}
	d.logger.Infow("User started the bot", "chat_id", m.Chat.ID, "username", username)

	if err := d.sessionSvc.Reset(ctx, m.Chat.ID); err != nil {
		d.logger.Warnw("Failed to reset session", "chat_id", m.Chat.ID, "error", err)
	}
	d.sendMenu(m.Chat.ID, d.faqSvc.Greeting(), d.faqSvc.Root(), true)
}

func (d *Dispatcher) handleBack(ctx context.Context, m *tgbotapi.Message, sess *session.Session) {
	path := sess.Path()
	if len(path) > 0 {
		path = path[:len(path)-1]
	}
	if err := d.sessionSvc.SetPath(ctx, m.Chat.ID, path); err != nil {
		d.logger.Warnw("Failed to persist menu path", "chat_id", m.Chat.ID, "error", err)
	}

	branch, ok := d.faqSvc.Resolve(path)
	if !ok {
		branch = d.faqSvc.Root()
		path = nil
	}
	d.sendMenu(m.Chat.ID, menuPromptText, branch, len(path) == 0)
}

func (d *Dispatcher) relayQuestion(ctx context.Context, m *tgbotapi.Message) {
	username := ""
	if m.From != nil {
		username = m.From.UserName
	}

	err := d.relaySvc.Relay(ctx, m.Chat.ID, m.MessageID, username, m.Text)
	switch {
	case err == nil:
	case errors.Is(err, relay.ErrNoOperators):
		d.send(m.Chat.ID, noOperatorsText)
	case errors.Is(err, db.ErrStoreUnavailable):
		d.send(m.Chat.ID, storeDownText)
	default:
		d.send(m.Chat.ID, relayFailedText)
	}
}

func (d *Dispatcher) sendMenu(chatID int64, text string, branch *faq.Branch, atRoot bool) {
	rows := make([][]string, 0, len(branch.Entries)+2)
	for _, label := range branch.Labels() {
		rows = append(rows, []string{label})
	}
	rows = append(rows, []string{askLabel})
	if !atRoot {
		rows = append(rows, []string{backLabel})
	}

	if err := d.api.SendKeyboard(chatID, text, rows); err != nil {
		d.logger.Errorw("Failed to send menu keyboard", "chat_id", chatID, "error", err)
	}
}

func (d *Dispatcher) send(chatID int64, text string) {
	if _, err := d.api.SendMessage(chatID, text); err != nil {
		d.logger.Errorw("Failed to send message", "chat_id", chatID, "error", err)
	}
}

func (d *Dispatcher) reply(chatID int64, replyTo int, text string) {
	if _, err := d.api.SendReply(chatID, replyTo, text); err != nil {
		d.logger.Errorw("Failed to send reply", "chat_id", chatID, "error", err)
	}
}
