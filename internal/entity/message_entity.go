package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageSender string

const (
	MessageSenderUser MessageSender = "user"
	MessageSenderBot  MessageSender = "bot"
)

func (s MessageSender) Valid() bool {
	return s == MessageSenderUser || s == MessageSenderBot
}

// Message is immutable once created. Position is 1-based and gapless within a conversation.
type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Sender         MessageSender
	Text           string
	Position       int
	CreatedAt      time.Time
}
