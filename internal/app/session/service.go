package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"donorbot/internal/providers/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	SetPath(ctx context.Context, chatID int64, path []string) error
	SetAwaiting(ctx context.Context, chatID int64, awaiting bool) error
	Reset(ctx context.Context, chatID int64) error
}

type service struct {
	repo   Repository
	redisP *redis.RedisProvider
	logger *zap.SugaredLogger
}

// NewService wires the durable session store with an optional redis
// read cache; a nil provider disables caching.
func NewService(repo Repository, redisP *redis.RedisProvider, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		redisP: redisP,
		logger: logger.Sugar(),
	}
}

func cacheKey(chatID int64) string {
	return fmt.Sprintf("session:chat:%d", chatID)
}

// Get returns the chat's session, creating a fresh root-level one for
// chats seen for the first time.
func (s *service) Get(ctx context.Context, chatID int64) (*Session, error) {
	if s.redisP != nil {
		if cached, err := s.redisP.Get(ctx, cacheKey(chatID)).Result(); err == nil && cached != "" {
			var sess Session
			if json.Unmarshal([]byte(cached), &sess) == nil {
				return &sess, nil
			}
		}
	}

	sess, err := s.repo.GetByChatID(ctx, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sess = &Session{ChatID: chatID}
		if err := s.repo.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	s.cache(ctx, sess)
	return sess, nil
}

func (s *service) SetPath(ctx context.Context, chatID int64, path []string) error {
	sess, err := s.Get(ctx, chatID)
	if err != nil {
		return err
	}
	sess.SetPath(path)
	return s.save(ctx, sess)
}

func (s *service) SetAwaiting(ctx context.Context, chatID int64, awaiting bool) error {
	sess, err := s.Get(ctx, chatID)
	if err != nil {
		return err
	}
	sess.AwaitingQuestion = awaiting
	return s.save(ctx, sess)
}

func (s *service) Reset(ctx context.Context, chatID int64) error {
	sess, err := s.Get(ctx, chatID)
	if err != nil {
		return err
	}
	sess.MenuPath = ""
	sess.AwaitingQuestion = false
	return s.save(ctx, sess)
}

func (s *service) save(ctx context.Context, sess *Session) error {
	if err := s.repo.Save(ctx, sess); err != nil {
		return err
	}
	s.cache(ctx, sess)
	return nil
}

func (s *service) cache(ctx context.Context, sess *Session) {
	if s.redisP == nil {
		return
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return
	}
	if err := s.redisP.SetEX(ctx, cacheKey(sess.ChatID), data, 0).Err(); err != nil {
		s.logger.Debugw("Failed to cache session", "chat_id", sess.ChatID, "error", err)
	}
}
