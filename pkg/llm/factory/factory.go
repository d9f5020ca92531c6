package factory

import (
	"fmt"

	"genie-chat-be/pkg/llm"
	"genie-chat-be/pkg/llm/azure"
	"genie-chat-be/pkg/llm/ollama"
)

type Config struct {
	Provider string // "azure" (default) or "ollama"

	Azure azure.Config

	OllamaBaseURL string
	OllamaModel   string

	Defaults llm.Options
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case azure.ProviderName, "":
		if cfg.Azure.Endpoint == "" || cfg.Azure.Deployment == "" {
			return nil, fmt.Errorf("azure provider requires endpoint and deployment")
		}
		azureCfg := cfg.Azure
		azureCfg.Defaults = cfg.Defaults
		return azure.NewProvider(azureCfg), nil
	case ollama.ProviderName:
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.OllamaModel, cfg.Defaults), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
