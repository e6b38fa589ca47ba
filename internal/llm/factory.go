package llm

import (
	"context"
	"fmt"

	"github.com/sant0-9/policygen/internal/config"
)

// keyed are the OpenAI-compatible hosted backends; all of them refuse to
// start without a key.
var keyed = map[string]func(apiKey, model string) *OpenAIProvider{
	"openai":     NewOpenAIProvider,
	"groq":       NewGroqProvider,
	"openrouter": NewOpenRouterProvider,
}

// NewProvider builds the generator backend selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	if newCompat, ok := keyed[cfg.Provider]; ok {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s requires an API key", cfg.Provider)
		}
		return newCompat(cfg.APIKey, cfg.Model), nil
	}

	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic requires an API key")
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "azure":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("azure requires an API key")
		}
		return NewAzureProvider(cfg.BaseURL, cfg.APIKey, cfg.AzureDeployment)
	case "ollama":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "custom":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom provider requires base_url")
		}
		return NewCustomProvider(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	}
	return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
}
