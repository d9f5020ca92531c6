package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type State string

const (
	StateUninitialized   State = "uninitialized"
	StateLoading         State = "loading"
	StateReady           State = "ready"
	StateSending         State = "sending"
	StateUnauthenticated State = "unauthenticated"
)

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrNotReady        = errors.New("session is not ready")
)

// Logger matches the server's structured logger so both can share one implementation.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
}

// Snapshot is a copy of the session state handed to observers.
type Snapshot struct {
	State          State
	ConversationID string
	Messages       []Message
	Input          string
	Typing         bool
	Err            error
}

type Observer func(Snapshot)

// Session drives one chat screen. Operations are serialised; observers run synchronously
// on every transition and must not call back into the Session.
type Session struct {
	mu        sync.Mutex
	api       *APIClient
	store     Storage
	logger    Logger
	observers []Observer

	state          State
	conversationID string
	messages       []Message
	input          string
	typing         bool
	lastErr        error
}

func NewSession(api *APIClient, store Storage, log Logger) *Session {
	return &Session{
		api:    api,
		store:  store,
		logger: log,
		state:  StateUninitialized,
	}
}

func (s *Session) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
	s.emit()
}

func (s *Session) Signup(ctx context.Context, fullName, email, password string) error {
	return s.api.Signup(ctx, fullName, email, password)
}

// Login stores the token and re-arms the one-shot disclaimer.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.store.Set(KeyUserToken, token); err != nil {
		return err
	}
	if err := s.store.Delete(KeySeenModal); err != nil {
		return err
	}
	s.api.SetToken(token)
	s.lastErr = nil
	s.transition(StateUninitialized)
	return nil
}

func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(KeyUserToken); err != nil {
		return err
	}
	s.api.SetToken("")
	s.conversationID = ""
	s.messages = nil
	s.transition(StateUnauthenticated)
	return nil
}

// ShouldShowDisclaimer reports whether the disclaimer has not been acknowledged since login.
func (s *Session) ShouldShowDisclaimer() bool {
	_, seen, err := s.store.Get(KeySeenModal)
	return err == nil && !seen
}

func (s *Session) AcknowledgeDisclaimer() error {
	return s.store.Set(KeySeenModal, "true")
}

// Open loads conversationID, or the user's first conversation when it is empty,
// creating one if the user has none.
func (s *Session) Open(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok, err := s.store.Get(KeyUserToken)
	if err != nil {
		return err
	}
	if !ok || token == "" {
		s.transition(StateUnauthenticated)
		return ErrUnauthenticated
	}
	s.api.SetToken(token)
	s.lastErr = nil
	s.transition(StateLoading)

	conversation, err := s.resolve(ctx, conversationID)
	if err != nil {
		return s.fail(err, StateUninitialized, "Failed to load conversation")
	}

	s.conversationID = conversation.ID
	s.messages = append([]Message(nil), conversation.Messages...)
	s.transition(StateReady)
	return nil
}

func (s *Session) resolve(ctx context.Context, conversationID string) (*Conversation, error) {
	if conversationID != "" {
		return s.api.GetConversation(ctx, conversationID)
	}

	list, err := s.api.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return &list[0], nil
	}

	created, err := s.api.CreateConversation(ctx)
	if err != nil {
		return nil, err
	}
	return s.api.GetConversation(ctx, created.ID)
}

// NewConversation starts a fresh conversation and makes it the active one.
func (s *Session) NewConversation(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return ErrNotReady
	}
	s.lastErr = nil
	s.transition(StateLoading)

	created, err := s.api.CreateConversation(ctx)
	if err != nil {
		return s.fail(err, StateReady, "Failed to create conversation")
	}
	conversation, err := s.api.GetConversation(ctx, created.ID)
	if err != nil {
		return s.fail(err, StateReady, "Failed to load conversation")
	}

	s.conversationID = conversation.ID
	s.messages = append([]Message(nil), conversation.Messages...)
	s.transition(StateReady)
	return nil
}

// Send posts text as the user, asks for a completion and posts the answer as the bot.
// Blank text is ignored. Optimistic messages stay in place when a later step fails.
func (s *Session) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return ErrNotReady
	}

	s.lastErr = nil
	s.input = ""
	s.messages = append(s.messages, Message{
		Conversation: s.conversationID,
		Sender:       SenderUser,
		Text:         text,
		CreatedAt:    time.Now(),
	})
	s.transition(StateSending)

	if _, err := s.api.AppendMessage(ctx, s.conversationID, SenderUser, text); err != nil {
		return s.fail(err, StateReady, "Failed to save user message")
	}

	s.typing = true
	s.emit()
	reply, err := s.api.Query(ctx, text)
	s.typing = false
	if err != nil {
		return s.fail(err, StateReady, "Completion failed")
	}

	s.messages = append(s.messages, Message{
		Conversation: s.conversationID,
		Sender:       SenderBot,
		Text:         reply,
		CreatedAt:    time.Now(),
	})
	s.emit()

	if _, err := s.api.AppendMessage(ctx, s.conversationID, SenderBot, reply); err != nil {
		return s.fail(err, StateReady, "Failed to save bot message")
	}

	s.transition(StateReady)
	return nil
}

// fail moves to Unauthenticated on a 401, otherwise logs and settles in fallback.
func (s *Session) fail(err error, fallback State, message string) error {
	s.lastErr = err
	if errors.Is(err, ErrUnauthorized) {
		s.transition(StateUnauthenticated)
		return err
	}
	s.logger.Error("SESSION", message, map[string]interface{}{
		"conversation_id": s.conversationID,
		"error":           err.Error(),
	})
	s.transition(fallback)
	return err
}

func (s *Session) transition(next State) {
	s.state = next
	s.emit()
}

func (s *Session) emit() {
	snap := s.snapshot()
	for _, o := range s.observers {
		o(snap)
	}
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		State:          s.state,
		ConversationID: s.conversationID,
		Messages:       append([]Message(nil), s.messages...),
		Input:          s.input,
		Typing:         s.typing,
		Err:            s.lastErr,
	}
}
