package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/pkg/serverutils"
	"genie-chat-be/internal/repository/memory"
	"genie-chat-be/internal/repository/unitofwork"
	"genie-chat-be/pkg/events"

	"github.com/google/uuid"
)

type IMessageService interface {
	Append(ctx context.Context, userId uuid.UUID, conversationId string, req *dto.CreateMessageRequest) (*dto.MessageResponse, error)
}

type messageService struct {
	uowFactory     unitofwork.RepositoryFactory
	ownership      *memory.OwnershipCache
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	ownership *memory.OwnershipCache,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IMessageService {
	return &messageService{
		uowFactory:     uowFactory,
		ownership:      ownership,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Append stores a message at the end of a conversation owned by the user. Reserving the
// position and inserting the row share one transaction, so a missing or foreign conversation
// leaves nothing behind.
func (s *messageService) Append(ctx context.Context, userId uuid.UUID, conversationId string, req *dto.CreateMessageRequest) (*dto.MessageResponse, error) {
	if err := serverutils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text must not be blank", ErrValidation)
	}

	id, err := uuid.Parse(conversationId)
	if err != nil {
		return nil, ErrNotFound
	}
	if owner, ok := s.ownership.Owner(id); ok && owner != userId {
		return nil, ErrNotFound
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	position, err := uow.ConversationRepository().NextPosition(ctx, id, userId)
	if err != nil {
		return nil, fmt.Errorf("reserve message position: %w", err)
	}
	if position == 0 {
		return nil, ErrNotFound
	}

	message := &entity.Message{
		Id:             uuid.New(),
		ConversationId: id,
		Sender:         entity.MessageSender(req.Sender),
		Text:           req.Text,
		Position:       position,
		CreatedAt:      time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.ownership.Remember(id, userId)

	if err := s.eventPublisher.Publish(ctx, events.NewEvent(events.TypeMessageCreated, map[string]interface{}{
		events.PayloadUserID:         userId.String(),
		events.PayloadConversationID: id.String(),
		events.PayloadMessageID:      message.Id.String(),
		events.PayloadSender:         string(message.Sender),
		events.PayloadText:           message.Text,
		events.PayloadPosition:       message.Position,
	})); err != nil {
		s.logger.Warn("MESSAGE", "Failed to publish event", map[string]interface{}{"error": err.Error()})
	}

	return dto.NewMessageResponse(message), nil
}
