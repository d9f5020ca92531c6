package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/pkg/events"
	"genie-chat-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *capturePublisher) Publish(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *capturePublisher) last(t *testing.T) dto.CompletionLogMessage {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.payloads)
	var msg dto.CompletionLogMessage
	require.NoError(t, json.Unmarshal(c.payloads[len(c.payloads)-1], &msg))
	return msg
}

func TestQueryStripsCitations(t *testing.T) {
	provider := &fakeLLM{reply: "Answer[doc1][doc2]."}
	audit := &capturePublisher{}
	pub := &recordingPublisher{}
	svc := NewCompletionService(provider, "be brief", audit, pub, logger.NewNopLogger())
	userId := uuid.New()

	res, err := svc.Query(context.Background(), userId, &dto.QueryRequest{Message: "Hisse?"})
	require.NoError(t, err)
	assert.Equal(t, "Answer.", res.Response)

	require.Len(t, provider.history, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "be brief"}, provider.history[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Hisse?"}, provider.history[1])

	assert.Equal(t, []string{events.TypeCompletionStarted, events.TypeCompletionFinished}, pub.Types())

	entry := audit.last(t)
	assert.Equal(t, userId.String(), entry.UserId)
	assert.Equal(t, entity.CompletionStatusOK, entry.Status)
	assert.Equal(t, []string{"[doc1]", "[doc2]"}, entry.Citations)
	assert.Equal(t, len("Answer."), entry.ResponseChars)
}

func TestQueryDefaultSystemPrompt(t *testing.T) {
	provider := &fakeLLM{reply: "ok"}
	svc := NewCompletionService(provider, "", nil, &recordingPublisher{}, logger.NewNopLogger())

	_, err := svc.Query(context.Background(), uuid.New(), &dto.QueryRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemPrompt, provider.history[0].Content)
}

func TestQueryUpstreamFailure(t *testing.T) {
	audit := &capturePublisher{}
	pub := &recordingPublisher{}
	svc := NewCompletionService(&fakeLLM{err: errProviderDown}, "", audit, pub, logger.NewNopLogger())

	_, err := svc.Query(context.Background(), uuid.New(), &dto.QueryRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorContains(t, err, "provider down")

	assert.Equal(t, []string{events.TypeCompletionStarted, events.TypeCompletionFinished}, pub.Types())
	entry := audit.last(t)
	assert.Equal(t, entity.CompletionStatusFailed, entry.Status)
	assert.Equal(t, "provider down", entry.Error)
}

func TestQueryRejectsEmptyPrompt(t *testing.T) {
	provider := &fakeLLM{reply: "never"}
	svc := NewCompletionService(provider, "", nil, &recordingPublisher{}, logger.NewNopLogger())

	_, err := svc.Query(context.Background(), uuid.New(), &dto.QueryRequest{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, provider.history)
}
