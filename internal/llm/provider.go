package llm

import (
	"fmt"
	"time"
)

const hfRouterURL = "https://router.huggingface.co/v1"

type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration // per completion call, 0 means no bound
}

func NewClient(cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.Timeout), nil
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	case "huggingface":
		// The HF router speaks the OpenAI chat completion dialect.
		if cfg.Model == "" {
			cfg.Model = "moonshotai/Kimi-K2-Instruct"
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model, hfRouterURL, cfg.Timeout), nil
	case "ollama":
		if cfg.Model == "" {
			cfg.Model = "llama3.1"
		}
		return NewOpenAIClient("ollama", cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
