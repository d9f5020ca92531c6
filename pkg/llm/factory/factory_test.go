package factory

import (
	"testing"

	"genie-chat-be/pkg/llm/azure"
	"genie-chat-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Config{Azure: azure.Config{Endpoint: "https://a.example", Deployment: "d"}})
	require.NoError(t, err)
	assert.Equal(t, azure.ProviderName, p.Name())

	p, err = NewLLMProvider(Config{Provider: "ollama", OllamaModel: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, ollama.ProviderName, p.Name())

	_, err = NewLLMProvider(Config{Provider: "azure"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Config{Provider: "gemini"})
	assert.ErrorContains(t, err, "unsupported")
}
