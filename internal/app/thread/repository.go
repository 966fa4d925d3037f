package thread

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrDuplicateForward means the group message ID is already recorded:
// the same forwarded copy cannot belong to two questions.
var ErrDuplicateForward = errors.New("forwarded message already recorded")

// ConnSource hands out a live database handle, reconnecting underneath
// when needed (see internal/db.Manager).
type ConnSource interface {
	Conn(ctx context.Context) (*gorm.DB, error)
}

type Repository interface {
	RecordForward(ctx context.Context, userChatID int64, userMessageID, groupMessageID int) (uint64, error)
	LookupByGroupMessageID(ctx context.Context, groupMessageID int) (*Message, error)
	RecordReply(ctx context.Context, messageID uint64, groupReplyID, chatReplyID int, content string) (uint64, error)
	LookupReplyByGroupReplyID(ctx context.Context, groupReplyID int) (*Reply, int64, int, error)
	MarkReplyDeleted(ctx context.Context, groupReplyID int) error
	UpdateReplyContent(ctx context.Context, groupReplyID int, content string, editedAt time.Time) error
}

type repository struct {
	src ConnSource
}

func NewRepository(src ConnSource) Repository {
	return &repository{src: src}
}

func (r *repository) RecordForward(ctx context.Context, userChatID int64, userMessageID, groupMessageID int) (uint64, error) {
	conn, err := r.src.Conn(ctx)
	if err != nil {
		return 0, err
	}

	message := &Message{
		UserChatID:     userChatID,
		UserMessageID:  userMessageID,
		GroupMessageID: groupMessageID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := conn.WithContext(ctx).Create(message).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicateForward
		}
		return 0, err
	}
	return message.ID, nil
}

func (r *repository) LookupByGroupMessageID(ctx context.Context, groupMessageID int) (*Message, error) {
	conn, err := r.src.Conn(ctx)
	if err != nil {
		return nil, err
	}

	var message Message
	err = conn.WithContext(ctx).Where("group_message_id = ?", groupMessageID).First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repository) RecordReply(ctx context.Context, messageID uint64, groupReplyID, chatReplyID int, content string) (uint64, error) {
	conn, err := r.src.Conn(ctx)
	if err != nil {
		return 0, err
	}

	reply := &Reply{
		MessageID:    messageID,
		GroupReplyID: groupReplyID,
		ChatReplyID:  chatReplyID,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
	}
	if err := conn.WithContext(ctx).Create(reply).Error; err != nil {
		return 0, err
	}
	return reply.ID, nil
}

// LookupReplyByGroupReplyID resolves a manager-side reply back to the
// originating user: it returns the reply together with the owning
// message's chat and message IDs.
func (r *repository) LookupReplyByGroupReplyID(ctx context.Context, groupReplyID int) (*Reply, int64, int, error) {
	conn, err := r.src.Conn(ctx)
	if err != nil {
		return nil, 0, 0, err
	}

	var reply Reply
	err = conn.WithContext(ctx).Where("group_reply_id = ?", groupReplyID).First(&reply).Error
	if err != nil {
		return nil, 0, 0, err
	}

	var message Message
	err = conn.WithContext(ctx).First(&message, reply.MessageID).Error
	if err != nil {
		return nil, 0, 0, err
	}

	return &reply, message.UserChatID, message.UserMessageID, nil
}

func (r *repository) MarkReplyDeleted(ctx context.Context, groupReplyID int) error {
	conn, err := r.src.Conn(ctx)
	if err != nil {
		return err
	}

	result := conn.WithContext(ctx).Model(&Reply{}).
		Where("group_reply_id = ?", groupReplyID).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) UpdateReplyContent(ctx context.Context, groupReplyID int, content string, editedAt time.Time) error {
	conn, err := r.src.Conn(ctx)
	if err != nil {
		return err
	}

	result := conn.WithContext(ctx).Model(&Reply{}).
		Where("group_reply_id = ?", groupReplyID).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": editedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
