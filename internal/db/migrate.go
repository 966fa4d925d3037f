package db

import (
	"donorbot/internal/app/session"
	"donorbot/internal/app/thread"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Migrate(conn *gorm.DB, logger *zap.Logger) error {
	if err := conn.AutoMigrate(
		&thread.Message{},
		&thread.Reply{},
		&session.Session{},
	); err != nil {
		return err
	}

	logger.Info("Database schema is up to date")
	return nil
}
