package database

import (
	"github.com/xpanvictor/xarvis-voice/internal/repository/conversation"
	"gorm.io/gorm"
)

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&conversation.MessageEntity{},
	)
}
