package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donorbot/internal/app/thread"
	"donorbot/internal/providers/telegram"
	"donorbot/internal/utils"

	"go.uber.org/zap"
)

var (
	// ErrNoOperators means the manager group is not configured; the
	// question never leaves the process and nothing is stored.
	ErrNoOperators = errors.New("manager group not configured")

	// ErrSendFailed wraps transport failures toward the manager group.
	ErrSendFailed = errors.New("failed to forward question")
)

const ackText = "✅ Ваш вопрос передан. Ожидайте ответа."

type Service interface {
	Relay(ctx context.Context, userChatID int64, userMessageID int, username, content string) error
}

type service struct {
	repo          thread.Repository
	api           telegram.API
	eventBus      *utils.EventBus
	logger        *zap.SugaredLogger
	managerChatID int64
}

func NewService(
	repo thread.Repository,
	api telegram.API,
	eventBus *utils.EventBus,
	logger *zap.Logger,
	managerChatID int64,
) Service {
	return &service{
		repo:          repo,
		api:           api,
		eventBus:      eventBus,
		logger:        logger.Sugar(),
		managerChatID: managerChatID,
	}
}

// Relay forwards an unmatched question to the manager group and records
// the link between the original and the forwarded copy. If the record
// step fails the forwarded copy is torn down again, so a success always
// means exactly one durable row and exactly one acknowledgment.
func (s *service) Relay(ctx context.Context, userChatID int64, userMessageID int, username, content string) error {
	if s.managerChatID == 0 {
		s.logger.Warnw("Manager group chat ID is not configured, dropping question",
			"user_chat_id", userChatID,
		)
		return ErrNoOperators
	}

	groupMessageID, err := s.api.SendMessage(s.managerChatID, formatForward(username, content))
	if err != nil {
		s.logger.Errorw("Failed to forward question to manager group",
			"user_chat_id", userChatID,
			"manager_chat_id", s.managerChatID,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	messageID, err := s.repo.RecordForward(ctx, userChatID, userMessageID, groupMessageID)
	if err != nil {
		// The copy already sits in the manager group with no traceable
		// record; remove it so no orphan survives.
		if delErr := s.api.DeleteMessage(s.managerChatID, groupMessageID); delErr != nil {
			s.logger.Errorw("Failed to remove orphaned forward from manager group",
				"group_message_id", groupMessageID,
				"error", delErr,
			)
		}
		s.logger.Errorw("Failed to record forwarded question",
			"user_chat_id", userChatID,
			"group_message_id", groupMessageID,
			"error", err,
		)
		return err
	}

	if _, err := s.api.SendReply(userChatID, userMessageID, ackText); err != nil {
		// The thread is tracked; a lost acknowledgment is not worth
		// failing the relay over.
		s.logger.Warnw("Failed to acknowledge relayed question",
			"user_chat_id", userChatID,
			"error", err,
		)
	}

	s.logger.Infow("Question relayed to manager group",
		"user_chat_id", userChatID,
		"user_message_id", userMessageID,
		"group_message_id", groupMessageID,
		"message_id", messageID,
	)

	s.eventBus.Publish(utils.EventQuestionRelayed, map[string]interface{}{
		"message_id":       messageID,
		"user_chat_id":     userChatID,
		"group_message_id": groupMessageID,
		"username":         username,
		"timestamp":        time.Now().UTC().Unix(),
	})

	return nil
}

func formatForward(username, content string) string {
	if username == "" {
		return fmt.Sprintf("От анонимного пользователя:\n%s", content)
	}
	return fmt.Sprintf("От @%s:\n%s", username, content)
}
