// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService writes completion log entries published by the completion service.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.CompletionLogMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal completion log", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never becomes valid
		return
	}

	userId, err := uuid.Parse(payload.UserId)
	if err != nil {
		cs.logger.Error("CONSUMER", "Completion log without user", map[string]interface{}{"user_id": payload.UserId})
		msg.Ack()
		return
	}

	log := &entity.CompletionLog{
		Id:            uuid.New(),
		UserId:        userId,
		Provider:      payload.Provider,
		PromptChars:   payload.PromptChars,
		ResponseChars: payload.ResponseChars,
		Citations:     payload.Citations,
		Status:        payload.Status,
		Error:         payload.Error,
		LatencyMs:     payload.LatencyMs,
		CreatedAt:     time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CompletionLogRepository().Create(ctx, log); err != nil {
		cs.logger.Error("CONSUMER", "Failed to store completion log", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	msg.Ack()
}
