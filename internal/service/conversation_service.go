package service

import (
	"context"
	"fmt"
	"time"

	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/repository/memory"
	"genie-chat-be/internal/repository/scope"
	"genie-chat-be/internal/repository/specification"
	"genie-chat-be/internal/repository/unitofwork"
	"genie-chat-be/pkg/events"

	"github.com/google/uuid"
)

// GreetingText is the bot message every new conversation starts with.
const GreetingText = "Merhaba ben Genie 🤖😊, size nasıl yardımcı olabilirim?"

type IConversationService interface {
	Create(ctx context.Context, userId uuid.UUID) (*dto.ConversationResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
	Get(ctx context.Context, userId uuid.UUID, conversationId string) (*dto.ConversationResponse, error)
}

type conversationService struct {
	uowFactory     unitofwork.RepositoryFactory
	ownership      *memory.OwnershipCache
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	ownership *memory.OwnershipCache,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory:     uowFactory,
		ownership:      ownership,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Create persists the conversation and its greeting atomically. The response is the bare
// conversation; the greeting shows up on the next read.
func (s *conversationService) Create(ctx context.Context, userId uuid.UUID) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	position, err := uow.ConversationRepository().NextPosition(ctx, conversation.Id, userId)
	if err != nil {
		return nil, fmt.Errorf("reserve greeting position: %w", err)
	}
	if position == 0 {
		return nil, fmt.Errorf("conversation %s vanished inside its own transaction", conversation.Id)
	}

	greeting := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Sender:         entity.MessageSenderBot,
		Text:           GreetingText,
		Position:       position,
		CreatedAt:      time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, greeting); err != nil {
		return nil, fmt.Errorf("create greeting: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.ownership.Remember(conversation.Id, userId)
	s.publish(ctx, events.TypeConversationCreated, map[string]interface{}{
		events.PayloadUserID:         userId.String(),
		events.PayloadConversationID: conversation.Id.String(),
	})

	conversation.Messages = nil
	return dto.NewConversationResponse(conversation), nil
}

func (s *conversationService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.WithMessages{},
		specification.Scope(scope.OrderByCreatedAsc),
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		res = append(res, dto.NewConversationResponse(c))
	}
	return res, nil
}

func (s *conversationService) Get(ctx context.Context, userId uuid.UUID, conversationId string) (*dto.ConversationResponse, error) {
	id, err := uuid.Parse(conversationId)
	if err != nil {
		return nil, ErrNotFound
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
		specification.WithMessages{},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrNotFound
	}

	s.ownership.Remember(conversation.Id, userId)
	return dto.NewConversationResponse(conversation), nil
}

func (s *conversationService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("CONVERSATION", "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}
