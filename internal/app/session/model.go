package session

import (
	"strings"
	"time"
)

// Session is the per-chat menu navigation state. It lives in the
// database so a restart does not dump users back to the root menu.
type Session struct {
	ID               uint64    `json:"id" gorm:"primaryKey"`
	ChatID           int64     `json:"chat_id" gorm:"uniqueIndex"`
	MenuPath         string    `json:"menu_path"`
	AwaitingQuestion bool      `json:"awaiting_question" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const pathSeparator = "\x1f"

func (s *Session) Path() []string {
	if s.MenuPath == "" {
		return nil
	}
	return strings.Split(s.MenuPath, pathSeparator)
}

func (s *Session) SetPath(path []string) {
	s.MenuPath = strings.Join(path, pathSeparator)
}
