package propagation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donorbot/internal/app/thread"
	"donorbot/internal/providers/telegram"
	"donorbot/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the referenced message or reply was never
	// tracked; the event either predates tracking or was never relayed.
	ErrNotFound = errors.New("no tracked record for message")

	// ErrInsufficientPrivilege means the invoking account may not
	// delete messages in the manager group.
	ErrInsufficientPrivilege = errors.New("insufficient privilege to delete")

	// ErrSendFailed wraps transport failures toward the user's chat.
	ErrSendFailed = errors.New("failed to mirror action to user")
)

type Service interface {
	PropagateNewReply(ctx context.Context, groupMessageID, groupReplyID int, content string) error
	PropagateEdit(ctx context.Context, groupReplyID int, newContent string) error
	PropagateDelete(ctx context.Context, actorID int64, groupReplyID int) error
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

// PropagateNewReply mirrors a manager's reply onto the originating
// user's chat as a reply to their question, then records the pairing.
func (s *service) PropagateNewReply(ctx context.Context, groupMessageID, groupReplyID int, content string) error {
	message, err := s.repo.LookupByGroupMessageID(ctx, groupMessageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: group_message_id=%d", ErrNotFound, groupMessageID)
		}
		return err
	}

	chatReplyID, err := s.api.SendReply(message.UserChatID, message.UserMessageID, content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	replyID, err := s.repo.RecordReply(ctx, message.ID, groupReplyID, chatReplyID, content)
	if err != nil {
		// Mirrored copy with no record would make later edits and
		// deletions untraceable; tear it down again.
		if delErr := s.api.DeleteMessage(message.UserChatID, chatReplyID); delErr != nil {
			s.logger.Errorw("Failed to remove unrecorded mirrored reply",
				"user_chat_id", message.UserChatID,
				"chat_reply_id", chatReplyID,
				"error", delErr,
			)
		}
		return err
	}

	s.logger.Infow("Manager reply mirrored to user",
		"reply_id", replyID,
		"user_chat_id", message.UserChatID,
		"group_reply_id", groupReplyID,
	)

	s.eventBus.Publish(utils.EventReplyPropagated, map[string]interface{}{
		"reply_id":       replyID,
		"message_id":     message.ID,
		"user_chat_id":   message.UserChatID,
		"group_reply_id": groupReplyID,
		"timestamp":      time.Now().UTC().Unix(),
	})

	return nil
}

// PropagateEdit mirrors a manager-side edit onto the user's copy.
// Replies already marked deleted are immutable downstream.
func (s *service) PropagateEdit(ctx context.Context, groupReplyID int, newContent string) error {
	reply, ownerChatID, _, err := s.repo.LookupReplyByGroupReplyID(ctx, groupReplyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: group_reply_id=%d", ErrNotFound, groupReplyID)
		}
		return err
	}

	if reply.IsDeleted {
		s.logger.Debugw("Ignoring edit of a deleted reply", "group_reply_id", groupReplyID)
		return nil
	}

	if err := s.api.EditMessage(ownerChatID, reply.ChatReplyID, newContent); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	editedAt := time.Now().UTC()
	if err := s.repo.UpdateReplyContent(ctx, groupReplyID, newContent, editedAt); err != nil {
		return err
	}

	s.logger.Infow("Manager edit mirrored to user",
		"user_chat_id", ownerChatID,
		"group_reply_id", groupReplyID,
	)

	s.eventBus.Publish(utils.EventReplyEdited, map[string]interface{}{
		"group_reply_id": groupReplyID,
		"user_chat_id":   ownerChatID,
		"timestamp":      editedAt.Unix(),
	})

	return nil
}

// PropagateDelete removes the mirrored copy from the user's chat. Only
// accounts that can delete messages in the manager group may trigger
// it; a second delete of the same reply is a no-op.
func (s *service) PropagateDelete(ctx context.Context, actorID int64, groupReplyID int) error {
	allowed, err := s.api.CanDeleteMessages(s.managerChatID, actorID)
	if err != nil {
		return fmt.Errorf("failed to check delete rights: %w", err)
	}
	if !allowed {
		return ErrInsufficientPrivilege
	}

	reply, ownerChatID, _, err := s.repo.LookupReplyByGroupReplyID(ctx, groupReplyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: group_reply_id=%d", ErrNotFound, groupReplyID)
		}
		return err
	}

	if reply.IsDeleted {
		s.logger.Debugw("Reply already deleted, nothing to do", "group_reply_id", groupReplyID)
		return nil
	}

	if err := s.api.DeleteMessage(ownerChatID, reply.ChatReplyID); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if err := s.repo.MarkReplyDeleted(ctx, groupReplyID); err != nil {
		return err
	}

	s.logger.Infow("Manager reply deleted on user side",
		"user_chat_id", ownerChatID,
		"group_reply_id", groupReplyID,
	)

	s.eventBus.Publish(utils.EventReplyDeleted, map[string]interface{}{
		"group_reply_id": groupReplyID,
		"user_chat_id":   ownerChatID,
		"timestamp":      time.Now().UTC().Unix(),
	})

	return nil
}
