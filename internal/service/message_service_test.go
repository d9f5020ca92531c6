package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"genie-chat-be/internal/dto"
	"genie-chat-be/internal/repository/specification"
	"genie-chat-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendMessagesKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := f.createUser(t, "a@example.com")

	conv, err := f.conversations().Create(ctx, userId)
	require.NoError(t, err)

	svc := f.messages()
	const n = 5
	for i := 0; i < n; i++ {
		sender := "user"
		if i%2 == 1 {
			sender = "bot"
		}
		msg, err := svc.Append(ctx, userId, conv.Id.String(), &dto.CreateMessageRequest{
			Text:   fmt.Sprintf("message %d", i),
			Sender: sender,
		})
		require.NoError(t, err)
		assert.Equal(t, conv.Id, msg.Conversation)
		assert.Equal(t, sender, msg.Sender)
	}

	fetched, err := f.conversations().Get(ctx, userId, conv.Id.String())
	require.NoError(t, err)
	require.Len(t, fetched.Messages, n+1)
	assert.Equal(t, GreetingText, fetched.Messages[0].Text)
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("message %d", i), fetched.Messages[i+1].Text)
	}

	assert.Contains(t, f.events.Types(), events.TypeMessageCreated)
}

func TestAppendMessagePreservesTextVerbatim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := f.createUser(t, "a@example.com")
	conv, err := f.conversations().Create(ctx, userId)
	require.NoError(t, err)

	text := "  Hisse fiyatı?  🤖\n"
	msg, err := f.messages().Append(ctx, userId, conv.Id.String(), &dto.CreateMessageRequest{Text: text, Sender: "user"})
	require.NoError(t, err)
	assert.Equal(t, text, msg.Text)
}

func TestAppendMessageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := f.createUser(t, "a@example.com")
	conv, err := f.conversations().Create(ctx, userId)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  dto.CreateMessageRequest
	}{
		{"empty text", dto.CreateMessageRequest{Text: "", Sender: "user"}},
		{"blank text", dto.CreateMessageRequest{Text: "   ", Sender: "user"}},
		{"missing sender", dto.CreateMessageRequest{Text: "hi"}},
		{"unknown sender", dto.CreateMessageRequest{Text: "hi", Sender: "system"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.messages().Append(ctx, userId, conv.Id.String(), &tc.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAppendToForeignConversationWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner@example.com")
	intruder := f.createUser(t, "intruder@example.com")
	conv, err := f.conversations().Create(ctx, owner)
	require.NoError(t, err)

	// Fresh service so the ownership cache cannot short-circuit the database check.
	svc := NewMessageService(f.uowFactory, newFixture(t).ownership, f.events, f.logger)

	_, err = svc.Append(ctx, intruder, conv.Id.String(), &dto.CreateMessageRequest{Text: "hi", Sender: "user"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Append(ctx, owner, uuid.NewString(), &dto.CreateMessageRequest{Text: "hi", Sender: "user"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Append(ctx, owner, "bogus", &dto.CreateMessageRequest{Text: "hi", Sender: "user"})
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := f.uowFactory.NewUnitOfWork(ctx).MessageRepository().Count(ctx, specification.ByConversationID{ConversationID: conv.Id})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestAppendRejectedByOwnershipCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner@example.com")
	intruder := f.createUser(t, "intruder@example.com")
	conv, err := f.conversations().Create(ctx, owner)
	require.NoError(t, err)

	owned, ok := f.ownership.Owner(conv.Id)
	require.True(t, ok)
	assert.Equal(t, owner, owned)

	_, err = f.messages().Append(ctx, intruder, conv.Id.String(), &dto.CreateMessageRequest{Text: "hi", Sender: "user"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentAppendsGetDistinctPositions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := f.createUser(t, "a@example.com")
	conv, err := f.conversations().Create(ctx, userId)
	require.NoError(t, err)

	svc := f.messages()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Append(ctx, userId, conv.Id.String(), &dto.CreateMessageRequest{Text: fmt.Sprintf("m%d", i), Sender: "user"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	messages, err := f.uowFactory.NewUnitOfWork(ctx).MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conv.Id},
		specification.OrderBy{Field: "position"},
	)
	require.NoError(t, err)
	require.Len(t, messages, 9)
	for i, m := range messages {
		assert.Equal(t, i+1, m.Position)
	}
}
