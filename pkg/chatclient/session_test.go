package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeting = "Merhaba ben Genie"

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}

// fakeAPI is a minimal in-memory Genie server accepting a single token.
type fakeAPI struct {
	mu            sync.Mutex
	token         string
	conversations []*Conversation
	reply         string
	queryStatus   int
	appended      []Message
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	f := &fakeAPI{token: "good-token", reply: "Paris."}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	writeJSON := func(status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	if r.URL.Path == "/users/login" {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(http.StatusOK, map[string]string{"token": f.token})
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+f.token {
		writeJSON(http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/conversations":
		list := make([]*Conversation, len(f.conversations))
		copy(list, f.conversations)
		writeJSON(http.StatusOK, list)
	case r.Method == http.MethodPost && r.URL.Path == "/conversations":
		c := &Conversation{ID: uuid.NewString(), CreatedAt: time.Now()}
		c.Messages = []Message{{ID: uuid.NewString(), Conversation: c.ID, Sender: SenderBot, Text: greeting}}
		f.conversations = append(f.conversations, c)
		writeJSON(http.StatusCreated, Conversation{ID: c.ID, CreatedAt: c.CreatedAt, Messages: []Message{}})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/conversations/"):
		if c := f.find(strings.TrimPrefix(r.URL.Path, "/conversations/")); c != nil {
			writeJSON(http.StatusOK, c)
			return
		}
		writeJSON(http.StatusNotFound, map[string]string{"message": "Conversation not found"})
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/messages/"):
		c := f.find(strings.TrimPrefix(r.URL.Path, "/messages/"))
		if c == nil {
			writeJSON(http.StatusNotFound, map[string]string{"message": "Conversation not found"})
			return
		}
		var m Message
		_ = json.NewDecoder(r.Body).Decode(&m)
		m.ID, m.Conversation = uuid.NewString(), c.ID
		c.Messages = append(c.Messages, m)
		f.appended = append(f.appended, m)
		writeJSON(http.StatusCreated, m)
	case r.Method == http.MethodPost && r.URL.Path == "/openai/query":
		if f.queryStatus != 0 {
			writeJSON(f.queryStatus, map[string]string{"message": "Completion failed"})
			return
		}
		writeJSON(http.StatusOK, map[string]string{"response": f.reply})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) find(id string) *Conversation {
	for _, c := range f.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (f *fakeAPI) failQueries(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryStatus = status
}

func (f *fakeAPI) conversationIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.conversations))
	for i, c := range f.conversations {
		ids[i] = c.ID
	}
	return ids
}

func (f *fakeAPI) senders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.appended))
	for i, m := range f.appended {
		out[i] = m.Sender
	}
	return out
}

func newLoggedInSession(t *testing.T) (*Session, *fakeAPI, *MemoryStorage) {
	t.Helper()
	f, srv := newFakeAPI(t)
	store := NewMemoryStorage()
	require.NoError(t, store.Set(KeyUserToken, f.token))
	return NewSession(NewAPIClient(srv.URL), store, nopLogger{}), f, store
}

func TestOpenWithoutToken(t *testing.T) {
	_, srv := newFakeAPI(t)
	s := NewSession(NewAPIClient(srv.URL), NewMemoryStorage(), nopLogger{})

	err := s.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, StateUnauthenticated, s.Snapshot().State)
}

func TestOpenCreatesFirstConversation(t *testing.T) {
	s, f, _ := newLoggedInSession(t)

	var states []State
	s.Subscribe(func(snap Snapshot) { states = append(states, snap.State) })

	require.NoError(t, s.Open(context.Background(), ""))

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	ids := f.conversationIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, ids[0], snap.ConversationID)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, greeting, snap.Messages[0].Text)
	assert.Equal(t, []State{StateLoading, StateReady}, states)
}

func TestOpenSelectsFirstExistingOrRequested(t *testing.T) {
	s, f, _ := newLoggedInSession(t)
	api := s.api
	api.SetToken(f.token)
	first, err := api.CreateConversation(context.Background())
	require.NoError(t, err)
	second, err := api.CreateConversation(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Open(context.Background(), ""))
	assert.Equal(t, first.ID, s.Snapshot().ConversationID)

	require.NoError(t, s.Open(context.Background(), second.ID))
	assert.Equal(t, second.ID, s.Snapshot().ConversationID)
	assert.Len(t, f.conversationIDs(), 2)
}

func TestSendRoundTrip(t *testing.T) {
	s, f, _ := newLoggedInSession(t)
	require.NoError(t, s.Open(context.Background(), ""))

	var typingSeen bool
	s.Subscribe(func(snap Snapshot) {
		if snap.Typing {
			typingSeen = true
			assert.Equal(t, StateSending, snap.State)
		}
	})

	s.SetInput("Capital of France?")
	require.NoError(t, s.Send(context.Background(), "Capital of France?"))

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.False(t, snap.Typing)
	assert.Empty(t, snap.Input)
	assert.True(t, typingSeen)

	require.Len(t, snap.Messages, 3)
	assert.Equal(t, SenderUser, snap.Messages[1].Sender)
	assert.Equal(t, "Capital of France?", snap.Messages[1].Text)
	assert.Equal(t, SenderBot, snap.Messages[2].Sender)
	assert.Equal(t, "Paris.", snap.Messages[2].Text)

	assert.Equal(t, []string{SenderUser, SenderBot}, f.senders())
}

func TestSendIgnoresBlankText(t *testing.T) {
	s, f, _ := newLoggedInSession(t)
	require.NoError(t, s.Open(context.Background(), ""))

	require.NoError(t, s.Send(context.Background(), "   \n\t"))
	assert.Len(t, s.Snapshot().Messages, 1)
	assert.Empty(t, f.senders())
}

func TestSendRequiresReadySession(t *testing.T) {
	s, _, _ := newLoggedInSession(t)
	assert.ErrorIs(t, s.Send(context.Background(), "hi"), ErrNotReady)
}

func TestSendCompletionFailureKeepsOptimisticMessage(t *testing.T) {
	s, f, _ := newLoggedInSession(t)
	require.NoError(t, s.Open(context.Background(), ""))
	f.failQueries(http.StatusInternalServerError)

	err := s.Send(context.Background(), "hi")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Completion failed", apiErr.Message)

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.False(t, snap.Typing)
	assert.Equal(t, err, snap.Err)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "hi", snap.Messages[1].Text)
	assert.Equal(t, []string{SenderUser}, f.senders())
}

func TestUnauthorizedMidFlow(t *testing.T) {
	s, f, _ := newLoggedInSession(t)
	require.NoError(t, s.Open(context.Background(), ""))
	f.failQueries(http.StatusUnauthorized)

	err := s.Send(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, StateUnauthenticated, s.Snapshot().State)
}

func TestNewConversationReplacesActive(t *testing.T) {
	s, f, _ := newLoggedInSession(t)
	require.NoError(t, s.Open(context.Background(), ""))
	before := s.Snapshot().ConversationID

	require.NoError(t, s.NewConversation(context.Background()))

	snap := s.Snapshot()
	assert.NotEqual(t, before, snap.ConversationID)
	assert.Equal(t, StateReady, snap.State)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, greeting, snap.Messages[0].Text)
	assert.Len(t, f.conversationIDs(), 2)
}

func TestLoginAndLogout(t *testing.T) {
	f, srv := newFakeAPI(t)
	store := NewMemoryStorage()
	require.NoError(t, store.Set(KeySeenModal, "true"))
	s := NewSession(NewAPIClient(srv.URL), store, nopLogger{})

	err := s.Login(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, s.ShouldShowDisclaimer())

	require.NoError(t, s.Login(context.Background(), "ada@example.com", "secret"))
	token, ok, _ := store.Get(KeyUserToken)
	assert.True(t, ok)
	assert.Equal(t, f.token, token)
	assert.True(t, s.ShouldShowDisclaimer())

	require.NoError(t, s.AcknowledgeDisclaimer())
	assert.False(t, s.ShouldShowDisclaimer())

	require.NoError(t, s.Logout())
	_, ok, _ = store.Get(KeyUserToken)
	assert.False(t, ok)
	assert.Equal(t, StateUnauthenticated, s.Snapshot().State)
	assert.ErrorIs(t, s.Open(context.Background(), ""), ErrUnauthenticated)
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	store := NewFileStorage(path)

	_, ok, err := store.Get(KeyUserToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(KeyUserToken, "abc"))
	require.NoError(t, store.Set(KeySeenModal, "true"))

	reopened := NewFileStorage(path)
	v, ok, err := reopened.Get(KeyUserToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, reopened.Delete(KeyUserToken))
	require.NoError(t, reopened.Delete("missing"))
	_, ok, _ = store.Get(KeyUserToken)
	assert.False(t, ok)
	_, ok, _ = store.Get(KeySeenModal)
	assert.True(t, ok)
}
