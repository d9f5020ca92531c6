package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/pkg/serverutils"
	"genie-chat-be/pkg/events"
	"genie-chat-be/pkg/llm"

	"github.com/google/uuid"
)

const DefaultSystemPrompt = "You are Genie, a helpful assistant. Answer using the provided documents when they are relevant."

type ICompletionService interface {
	Query(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error)
}

type completionService struct {
	provider       llm.LLMProvider
	systemPrompt   string
	logPublisher   IPublisherService
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewCompletionService(
	provider llm.LLMProvider,
	systemPrompt string,
	logPublisher IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) ICompletionService {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &completionService{
		provider:       provider,
		systemPrompt:   systemPrompt,
		logPublisher:   logPublisher,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Query forwards one prompt to the provider and returns the answer without citation markers.
func (s *completionService) Query(ctx context.Context, userId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	if err := serverutils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.publish(ctx, events.TypeCompletionStarted, map[string]interface{}{
		events.PayloadUserID: userId.String(),
	})

	start := time.Now()
	raw, err := s.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: s.systemPrompt},
		{Role: llm.RoleUser, Content: req.Message},
	})
	latency := time.Since(start)

	s.publish(ctx, events.TypeCompletionFinished, map[string]interface{}{
		events.PayloadUserID:  userId.String(),
		events.PayloadSuccess: err == nil,
	})

	if err != nil {
		s.logger.Error("COMPLETION", "Provider call failed", map[string]interface{}{
			"provider":   s.provider.Name(),
			"latency_ms": latency.Milliseconds(),
			"error":      err.Error(),
		})
		s.audit(ctx, dto.CompletionLogMessage{
			UserId:      userId.String(),
			Provider:    s.provider.Name(),
			PromptChars: len([]rune(req.Message)),
			Status:      entity.CompletionStatusFailed,
			Error:       err.Error(),
			LatencyMs:   latency.Milliseconds(),
		})
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	text, citations := llm.StripCitations(raw)

	s.audit(ctx, dto.CompletionLogMessage{
		UserId:        userId.String(),
		Provider:      s.provider.Name(),
		PromptChars:   len([]rune(req.Message)),
		ResponseChars: len([]rune(text)),
		Citations:     citations,
		Status:        entity.CompletionStatusOK,
		LatencyMs:     latency.Milliseconds(),
	})

	return &dto.QueryResponse{Response: text}, nil
}

func (s *completionService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.eventPublisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Warn("COMPLETION", "Failed to publish event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

// audit is best effort; a lost log entry never fails the query.
func (s *completionService) audit(ctx context.Context, entry dto.CompletionLogMessage) {
	if s.logPublisher == nil {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.logPublisher.Publish(ctx, payload); err != nil {
		s.logger.Warn("COMPLETION", "Failed to publish completion log", map[string]interface{}{"error": err.Error()})
	}
}
