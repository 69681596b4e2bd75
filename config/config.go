package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	LLMProvider      string // anthropic, openai, huggingface, ollama
	AnthropicKey     string
	OpenAIKey        string
	HFToken          string
	LLMModel         string
	OpenAIBaseURL    string
	OllamaBaseURL    string
	LLMTimeout       time.Duration
	DatabasePath     string
	ListenAddr       string
	MaxToolRounds    int
	MaxContextTokens int
	ToolTimeout      time.Duration
}

func Load() *Config {
	_ = godotenv.Load() // ignore error if no .env

	return &Config{
		LLMProvider:      envOr("LLM_PROVIDER", "huggingface"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		HFToken:          os.Getenv("HF_TOKEN"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		OllamaBaseURL:    envOr("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		LLMTimeout:       envDuration("LLM_TIMEOUT", 60*time.Second),
		DatabasePath:     envOr("DATABASE_PATH", "./tavla.db"),
		ListenAddr:       envOr("LISTEN_ADDR", ":8080"),
		MaxToolRounds:    envInt("MAX_TOOL_ROUNDS", 5),
		MaxContextTokens: envInt("MAX_CONTEXT_TOKENS", 100000),
		ToolTimeout:      envDuration("TOOL_TIMEOUT", 10*time.Second),
	}
}

// APIKey returns the credential matching the selected provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case "openai":
		return c.OpenAIKey
	case "huggingface":
		return c.HFToken
	default:
		return c.AnthropicKey
	}
}

// BaseURL returns the endpoint override matching the selected provider.
func (c *Config) BaseURL() string {
	if c.LLMProvider == "ollama" {
		return c.OllamaBaseURL
	}
	return c.OpenAIBaseURL
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
