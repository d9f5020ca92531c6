package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	MessageCount int
	CreatedAt    time.Time

	// Messages in position order. Nil when the conversation was loaded without them.
	Messages []*Message
}
