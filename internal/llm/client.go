// Package llm provides the summarization and question generation stage
// adapters, backed by OpenAI-compatible chat completion endpoints.
package llm

import (
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrUnavailable indicates the language model provider is not configured.
var ErrUnavailable = errors.New("llm provider is not configured")

// Config holds shared settings for both LLM adapters.
type Config struct {
	APIKey        string
	BaseURL       string // optional OpenAI-compatible endpoint
	SummaryModel  string
	QuestionModel string
	Timeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.SummaryModel == "" {
		c.SummaryModel = openai.GPT4oMini
	}
	if c.QuestionModel == "" {
		c.QuestionModel = openai.GPT4o
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	return c
}

func newClient(cfg Config) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrUnavailable
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return openai.NewClientWithConfig(clientCfg), nil
}
