package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/oakenode/provisor/internal/provider"
)

// OllamaConfig holds connection and model parameters for a self-hosted
// Ollama server. Sampling knobs go through the free-form options map.
type OllamaConfig struct {
	BaseURL   string         `mapstructure:"base_url"`
	ModelName string         `mapstructure:"model_name"`
	Options   map[string]any `mapstructure:"options"`
	Timeout   int            `mapstructure:"timeout"`
}

func newOllamaConfig() provider.Config {
	return &OllamaConfig{
		BaseURL: "http://localhost:11434",
		Timeout: 30,
	}
}

func (c *OllamaConfig) Validate() error {
	verr := &provider.ValidationError{}
	switch {
	case c.BaseURL == "":
		verr.Add("base_url", "is required")
	default:
		if _, err := url.Parse(c.BaseURL); err != nil {
			verr.Add("base_url", "must be a valid URL")
		}
	}
	if c.ModelName == "" {
		verr.Add("model_name", "is required")
	}
	if c.Timeout <= 0 {
		verr.Add("timeout", "must be positive")
	}
	return verr.OrNil()
}

// Ollama serves chat, completion and embedding requests against a local or
// remote Ollama server.
type Ollama struct {
	client  *api.Client
	model   string
	options map[string]any
}

func newOllamaClient(config provider.Config) (Client, error) {
	cfg, ok := config.(*OllamaConfig)
	if !ok {
		return nil, errors.New("invalid config type for Ollama")
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second}
	return &Ollama{
		client:  api.NewClient(baseURL, httpClient),
		model:   cfg.ModelName,
		options: cfg.Options,
	}, nil
}

// Chat generates a response for a conversation history.
func (o *Ollama) Chat(messages []Message) (string, GenerateStats, error) {
	apiMessages := make([]api.Message, len(messages))
	for i, message := range messages {
		apiMessages[i] = api.Message{
			Role:    message.Role,
			Content: message.Content,
		}
	}

	var responseBuilder strings.Builder
	var chatResp api.ChatResponse

	err := o.client.Chat(
		context.Background(),
		&api.ChatRequest{
			Model:    o.model,
			Messages: apiMessages,
			Options:  o.options,
		},
		func(resp api.ChatResponse) error {
			chatResp = resp
			responseBuilder.WriteString(resp.Message.Content)
			return nil
		},
	)
	if err != nil {
		return "", GenerateStats{}, err
	}

	stats := GenerateStats{
		DoneReason:         chatResp.DoneReason,
		TotalDuration:      chatResp.Metrics.TotalDuration,
		LoadDuration:       chatResp.Metrics.LoadDuration,
		PromptTokens:       int64(chatResp.Metrics.PromptEvalCount),
		PromptEvalDuration: chatResp.Metrics.PromptEvalDuration,
		TokenCount:         int64(chatResp.Metrics.EvalCount),
		EvalDuration:       chatResp.Metrics.EvalDuration,
	}

	return responseBuilder.String(), stats, nil
}

// Complete generates a raw completion for a prompt.
func (o *Ollama) Complete(prompt string) (string, GenerateStats, error) {
	var responseBuilder strings.Builder
	var generateResp api.GenerateResponse

	err := o.client.Generate(
		context.Background(),
		&api.GenerateRequest{
			Model:   o.model,
			Prompt:  prompt,
			Raw:     true,
			Options: o.options,
		},
		func(resp api.GenerateResponse) error {
			generateResp = resp
			responseBuilder.WriteString(resp.Response)
			return nil
		},
	)
	if err != nil {
		return "", GenerateStats{}, err
	}

	stats := GenerateStats{
		DoneReason:         generateResp.DoneReason,
		TotalDuration:      generateResp.Metrics.TotalDuration,
		LoadDuration:       generateResp.Metrics.LoadDuration,
		PromptTokens:       int64(generateResp.Metrics.PromptEvalCount),
		PromptEvalDuration: generateResp.Metrics.PromptEvalDuration,
		TokenCount:         int64(generateResp.Metrics.EvalCount),
		EvalDuration:       generateResp.Metrics.EvalDuration,
	}

	return strings.TrimSpace(responseBuilder.String()), stats, nil
}

// Embed produces one embedding vector per input text.
func (o *Ollama) Embed(texts []string) ([][]float64, error) {
	resp, err := o.client.Embed(
		context.Background(),
		&api.EmbedRequest{Model: o.model, Input: texts},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	vectors := make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vec := make([]float64, len(emb))
		for j, v := range emb {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
