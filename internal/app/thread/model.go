package thread

import "time"

// Message links a user's question to its forwarded copy in the manager
// group. Rows are insert-only; they disappear only when replies cascade.
type Message struct {
	ID             uint64    `json:"id" gorm:"primaryKey"`
	UserChatID     int64     `json:"user_chat_id" gorm:"index"`
	UserMessageID  int       `json:"user_message_id"`
	GroupMessageID int       `json:"group_message_id" gorm:"uniqueIndex"`
	CreatedAt      time.Time `json:"created_at"`

	Replies []Reply `json:"replies,omitempty" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// Reply is one manager answer and its mirrored copy in the user's chat.
// Edits and deletions mutate the row in place; is_deleted is a soft flag
// so repeated delete events stay idempotent.
type Reply struct {
	ID           uint64     `json:"id" gorm:"primaryKey"`
	MessageID    uint64     `json:"message_id" gorm:"index"`
	GroupReplyID int        `json:"group_reply_id" gorm:"uniqueIndex"`
	ChatReplyID  int        `json:"chat_reply_id"`
	Content      string     `json:"content"`
	IsDeleted    bool       `json:"is_deleted" gorm:"default:false"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
