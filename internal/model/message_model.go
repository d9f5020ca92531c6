package model

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_messages_conversation_position,priority:1"`
	Sender         string    `gorm:"type:varchar(10);not null;check:chk_messages_sender,sender IN ('user','bot')"`
	Text           string    `gorm:"type:text;not null"`
	Position       int       `gorm:"not null;uniqueIndex:idx_messages_conversation_position,priority:2"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
