package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"genie-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewProvider(Config{
		Endpoint:   srv.URL + "/",
		APIKey:     "secret-key",
		Deployment: "gpt-35",
		DataSource: &SearchDataSource{
			Endpoint:              "https://search.example",
			Key:                   "search-key",
			IndexName:             "market-index",
			SemanticConfiguration: "Config",
		},
		Defaults: llm.Options{Temperature: 0.7, TopP: 0.95, MaxTokens: 4096},
	})
}

func TestChatSendsExtensionsRequest(t *testing.T) {
	var captured map[string]interface{}
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/deployments/gpt-35/extensions/chat/completions", r.URL.Path)
		assert.Equal(t, "2023-08-01-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret-key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hisse [doc1] yükseldi."}}]}`))
	})

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "You are Genie"},
		{Role: llm.RoleUser, Content: "Hello?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hisse [doc1] yükseldi.", out)

	assert.Equal(t, "gpt-35", captured["model"])
	assert.InDelta(t, 0.7, captured["temperature"], 1e-9)
	assert.InDelta(t, 0.95, captured["top_p"], 1e-9)
	assert.EqualValues(t, 4096, captured["max_tokens"])

	msgs := captured["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])

	sources := captured["dataSources"].([]interface{})
	require.Len(t, sources, 1)
	source := sources[0].(map[string]interface{})
	assert.Equal(t, "AzureCognitiveSearch", source["type"])
	params := source["parameters"].(map[string]interface{})
	assert.Equal(t, "market-index", params["indexName"])
	assert.Equal(t, "semantic", params["query_type"])
	assert.Equal(t, "Config", params["semanticConfiguration"])
}

func TestChatUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non 2xx", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"error object", http.StatusOK, `{"error":{"message":"content filtered"}}`},
		{"garbage", http.StatusOK, `not json`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := p.Generate(context.Background(), "hi")
			assert.Error(t, err)
		})
	}
}

func TestProviderWithoutDataSource(t *testing.T) {
	p := NewProvider(Config{Endpoint: "https://x.example", Deployment: "d"})
	req := p.buildRequest([]llm.Message{{Role: llm.RoleUser, Content: "q"}}, llm.Options{})
	assert.Empty(t, req.DataSources)
	assert.Equal(t, ProviderName, p.Name())
	assert.Equal(t, "https://x.example/openai/deployments/d/extensions/chat/completions?api-version=2023-08-01-preview", p.URL())
}
