package session

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConnSource interface {
	Conn(ctx context.Context) (*gorm.DB, error)
}

type Repository interface {
	GetByChatID(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

type repository struct {
	src ConnSource
}

func NewRepository(src ConnSource) Repository {
	return &repository{src: src}
}

func (r *repository) GetByChatID(ctx context.Context, chatID int64) (*Session, error) {
	conn, err := r.src.Conn(ctx)
	if err != nil {
		return nil, err
	}

	var s Session
	err = conn.WithContext(ctx).Where("chat_id = ?", chatID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Save(ctx context.Context, s *Session) error {
	conn, err := r.src.Conn(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	return conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"menu_path", "awaiting_question", "updated_at"}),
	}).Create(s).Error
}
