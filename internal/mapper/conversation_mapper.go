package mapper

import (
	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/model"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Conversation Mappers

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var messages []*entity.Message
	if c.Messages != nil {
		messages = make([]*entity.Message, len(c.Messages))
		for i := range c.Messages {
			messages[i] = m.MessageToEntity(&c.Messages[i])
		}
	}

	return &entity.Conversation{
		Id:           c.Id,
		UserId:       c.UserId,
		MessageCount: c.MessageCount,
		CreatedAt:    c.CreatedAt,
		Messages:     messages,
	}
}

// ConversationToModel maps the conversation row only; messages are written separately.
func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	return &model.Conversation{
		Id:           c.Id,
		UserId:       c.UserId,
		MessageCount: c.MessageCount,
		CreatedAt:    c.CreatedAt,
	}
}

// Message Mappers

func (m *ConversationMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Sender:         entity.MessageSender(msg.Sender),
		Text:           msg.Text,
		Position:       msg.Position,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ConversationMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:             msg.Id,
		ConversationId: msg.ConversationId,
		Sender:         string(msg.Sender),
		Text:           msg.Text,
		Position:       msg.Position,
		CreatedAt:      msg.CreatedAt,
	}
}
