package contract

import (
	"context"

	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// NextPosition bumps the message counter of a conversation owned by userId and returns
	// the position reserved for the next message. Returns 0 when no such conversation exists.
	NextPosition(ctx context.Context, id uuid.UUID, userId uuid.UUID) (int, error)
}
