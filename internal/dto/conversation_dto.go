package dto

import (
	"time"

	"genie-chat-be/internal/entity"

	"github.com/google/uuid"
)

// Field names follow the mobile client (`_id`, `user`, `conversation`).

type ConversationResponse struct {
	Id        uuid.UUID          `json:"_id"`
	User      uuid.UUID          `json:"user"`
	CreatedAt time.Time          `json:"createdAt"`
	Messages  []*MessageResponse `json:"messages"`
}

type MessageResponse struct {
	Id           uuid.UUID `json:"_id"`
	Conversation uuid.UUID `json:"conversation"`
	Sender       string    `json:"sender"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateMessageRequest struct {
	Text   string `json:"text" validate:"required"`
	Sender string `json:"sender" validate:"required,oneof=user bot"`
}

func NewMessageResponse(m *entity.Message) *MessageResponse {
	return &MessageResponse{
		Id:           m.Id,
		Conversation: m.ConversationId,
		Sender:       string(m.Sender),
		Text:         m.Text,
		CreatedAt:    m.CreatedAt,
	}
}

// NewConversationResponse always renders messages as a list, never null.
func NewConversationResponse(c *entity.Conversation) *ConversationResponse {
	messages := make([]*MessageResponse, 0, len(c.Messages))
	for _, m := range c.Messages {
		messages = append(messages, NewMessageResponse(m))
	}
	return &ConversationResponse{
		Id:        c.Id,
		User:      c.UserId,
		CreatedAt: c.CreatedAt,
		Messages:  messages,
	}
}
