package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"genie-chat-be/internal/entity"
	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/internal/pkg/testutil"
	"genie-chat-be/internal/repository/memory"
	"genie-chat-be/internal/repository/unitofwork"
	"genie-chat-be/pkg/events"
	"genie-chat-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

type fakeLLM struct {
	reply   string
	err     error
	history []llm.Message
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.history = history
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

var errProviderDown = errors.New("provider down")

type fixture struct {
	uowFactory unitofwork.RepositoryFactory
	ownership  *memory.OwnershipCache
	events     *recordingPublisher
	logger     logger.ILogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		uowFactory: unitofwork.NewRepositoryFactory(testutil.NewTestDB(t)),
		ownership:  memory.NewOwnershipCache(time.Minute),
		events:     &recordingPublisher{},
		logger:     logger.NewNopLogger(),
	}
}

func (f *fixture) createUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	user := &entity.User{
		Id:           uuid.New(),
		FullName:     "Test User",
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, f.uowFactory.NewUnitOfWork(ctx).UserRepository().Create(ctx, user))
	return user.Id
}

func (f *fixture) conversations() IConversationService {
	return NewConversationService(f.uowFactory, f.ownership, f.events, f.logger)
}

func (f *fixture) messages() IMessageService {
	return NewMessageService(f.uowFactory, f.ownership, f.events, f.logger)
}
