package conversation

import (
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"gorm.io/gorm"
)

// MessageEntity is one stored utterance or reply of a voice session.
type MessageEntity struct {
	ID        uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	SessionID string    `gorm:"column:session_id;type:varchar(64);not null;index:idx_session_created,priority:1"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text"`

	CreatedAt time.Time      `gorm:"autoCreateTime(3);index:idx_session_created,priority:2"`
	DeletedAt gorm.DeletedAt `gorm:"index"` // For soft delete
}

func (MessageEntity) TableName() string {
	return "voice_messages"
}

func (me *MessageEntity) FromDomain(sessionID string, m assistant.Message) {
	me.ID = uuid.New()
	me.SessionID = sessionID
	me.Role = string(m.Role)
	me.Content = m.Content
	me.CreatedAt = m.CreatedAt
	if me.CreatedAt.IsZero() {
		me.CreatedAt = time.Now()
	}
}

func (me *MessageEntity) ToDomain() assistant.Message {
	return assistant.Message{
		Role:      assistant.Role(me.Role),
		Content:   me.Content,
		CreatedAt: me.CreatedAt,
	}
}
