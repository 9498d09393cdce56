package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/oakenode/provisor/internal/provider"
)

// AnthropicConfig holds connection and model parameters for the Anthropic
// messages API.
type AnthropicConfig struct {
	ModelName   string  `mapstructure:"model_name"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

func newAnthropicConfig() provider.Config {
	return &AnthropicConfig{
		Temperature: 0.7,
		MaxTokens:   4096,
		Timeout:     30,
		MaxRetries:  3,
	}
}

func (c *AnthropicConfig) Validate() error {
	verr := &provider.ValidationError{}
	if c.ModelName == "" {
		verr.Add("model_name", "is required")
	}
	if c.APIKey == "" {
		verr.Add("api_key", "is required")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		verr.Add("temperature", "must be between 0 and 1")
	}
	if c.MaxTokens <= 0 {
		verr.Add("max_tokens", "must be positive")
	}
	if c.Timeout <= 0 {
		verr.Add("timeout", "must be positive")
	}
	if c.MaxRetries < 0 {
		verr.Add("max_retries", "must not be negative")
	}
	return verr.OrNil()
}

// ClientOptions renders the request options the SDK client is constructed
// with. Pure: the same record always renders the same options.
func (c *AnthropicConfig) ClientOptions() []option.RequestOption {
	return []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(c.MaxRetries),
		option.WithRequestTimeout(time.Duration(c.Timeout) * time.Second),
	}
}

// Anthropic serves chat requests through the Anthropic messages API.
type Anthropic struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
}

func newAnthropicClient(config provider.Config) (Client, error) {
	cfg, ok := config.(*AnthropicConfig)
	if !ok {
		return nil, errors.New("invalid config type for Anthropic")
	}

	return &Anthropic{
		client:      anthropic.NewClient(cfg.ClientOptions()...),
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Chat generates a response for a conversation history. System messages are
// lifted into the request's system prompt.
func (a *Anthropic) Chat(messages []Message) (string, GenerateStats, error) {
	msgs := make([]anthropic.MessageParam, 0, len(messages))
	var system []anthropic.TextBlockParam
	for _, message := range messages {
		switch message.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: message.Content})
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(message.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(message.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(a.maxTokens),
		Messages:    msgs,
		Temperature: param.NewOpt(a.temperature),
	}
	if len(system) > 0 {
		params.System = system
	}

	msg, err := a.client.Messages.New(context.Background(), params)
	if err != nil {
		return "", GenerateStats{}, fmt.Errorf("failed to generate message: %w", err)
	}

	var response string
	for _, block := range msg.Content {
		if block.Type == "text" {
			response += block.Text
		}
	}

	stats := GenerateStats{
		DoneReason:         string(msg.StopReason),
		TotalDuration:      -1,
		LoadDuration:       -1,
		PromptTokens:       msg.Usage.InputTokens,
		PromptEvalDuration: -1,
		TokenCount:         msg.Usage.OutputTokens,
		EvalDuration:       -1,
	}

	return response, stats, nil
}

// Complete is not offered by the messages API.
func (a *Anthropic) Complete(_ string) (string, GenerateStats, error) {
	return "", GenerateStats{}, errors.New("completion mode is not supported by Anthropic")
}
