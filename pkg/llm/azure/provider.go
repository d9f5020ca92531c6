package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"genie-chat-be/pkg/llm"
)

const (
	ProviderName      = "azure"
	DefaultAPIVersion = "2023-08-01-preview"
	dataSourceType    = "AzureCognitiveSearch"
)

// SearchDataSource is the retrieval index the service consults before answering.
type SearchDataSource struct {
	Endpoint              string
	Key                   string
	IndexName             string
	SemanticConfiguration string
}

type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	DataSource *SearchDataSource
	Defaults   llm.Options
}

// Provider calls the Azure OpenAI "extensions" chat completions API, which grounds the answer
// on a search index and annotates it with [docN] markers.
type Provider struct {
	cfg    Config
	Client *http.Client
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(cfg Config) *Provider {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Defaults.Model == "" {
		cfg.Defaults.Model = cfg.Deployment
	}
	return &Provider{
		cfg:    cfg,
		Client: &http.Client{},
	}
}

// Request Payload Structure

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        float64       `json:"top_p"`
	Messages    []llm.Message `json:"messages"`
	DataSources []dataSource  `json:"dataSources,omitempty"`
}

type dataSource struct {
	Type       string               `json:"type"`
	Parameters dataSourceParameters `json:"parameters"`
}

type dataSourceParameters struct {
	Endpoint              string `json:"endpoint"`
	Key                   string `json:"key"`
	IndexName             string `json:"indexName"`
	QueryType             string `json:"query_type,omitempty"`
	SemanticConfiguration string `json:"semanticConfiguration,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) URL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/extensions/chat/completions?api-version=%s",
		strings.TrimRight(p.cfg.Endpoint, "/"),
		url.PathEscape(p.cfg.Deployment),
		url.QueryEscape(p.cfg.APIVersion),
	)
}

func (p *Provider) buildRequest(history []llm.Message, opts llm.Options) chatRequest {
	reqBody := chatRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
		Messages:    history,
	}

	if ds := p.cfg.DataSource; ds != nil {
		params := dataSourceParameters{
			Endpoint:              ds.Endpoint,
			Key:                   ds.Key,
			IndexName:             ds.IndexName,
			SemanticConfiguration: ds.SemanticConfiguration,
		}
		if ds.SemanticConfiguration != "" {
			params.QueryType = "semantic"
		}
		reqBody.DataSources = []dataSource{{Type: dataSourceType, Parameters: params}}
	}

	return reqBody
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(p.cfg.Defaults, options...)

	jsonData, err := json.Marshal(p.buildRequest(history, opts))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL(), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.cfg.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("azure api error (status %d): %s", resp.StatusCode, truncate(string(bodyBytes), 512))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("azure api returned error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from azure api")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
