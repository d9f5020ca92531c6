// Package chatclient is a client for the Genie chat API plus the chat session state
// machine used by terminal and mobile front-ends.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

// APIError is any non-2xx answer from the API. A 401 also matches ErrUnauthorized.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type Message struct {
	ID           string    `json:"_id"`
	Conversation string    `json:"conversation"`
	Sender       string    `json:"sender"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Conversation struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
}

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type APIClient struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewAPIClient uses http.DefaultClient; completions are not given a custom timeout.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
}

func (c *APIClient) SetToken(token string) {
	c.token = token
}

func (c *APIClient) Signup(ctx context.Context, fullName, email, password string) error {
	body := map[string]string{"fullName": fullName, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/users/signup", body, nil)
}

func (c *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	var res struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/login", body, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

func (c *APIClient) ListConversations(ctx context.Context) ([]Conversation, error) {
	var res []Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *APIClient) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var res Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations/"+id, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *APIClient) CreateConversation(ctx context.Context) (*Conversation, error) {
	var res Conversation
	if err := c.do(ctx, http.MethodPost, "/conversations", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *APIClient) AppendMessage(ctx context.Context, conversationID, sender, text string) (*Message, error) {
	var res Message
	body := map[string]string{"sender": sender, "text": text}
	if err := c.do(ctx, http.MethodPost, "/messages/"+conversationID, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Query asks the completion proxy and returns the answer with citation markers removed.
func (c *APIClient) Query(ctx context.Context, message string) (string, error) {
	var res struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/openai/query", map[string]string{"message": message}, &res); err != nil {
		return "", err
	}
	return res.Response, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
		var errBody struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &errBody) == nil && errBody.Message != "" {
			apiErr.Message = errBody.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
