package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/oakenode/provisor/internal/provider"
)

// OpenAIConfig holds connection and model parameters for the OpenAI API.
type OpenAIConfig struct {
	ModelName        string  `mapstructure:"model_name"`
	APIKey           string  `mapstructure:"api_key"`
	BaseURL          string  `mapstructure:"base_url"`
	Organization     string  `mapstructure:"organization"`
	Temperature      float64 `mapstructure:"temperature"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	TopP             float64 `mapstructure:"top_p"`
	FrequencyPenalty float64 `mapstructure:"frequency_penalty"`
	PresencePenalty  float64 `mapstructure:"presence_penalty"`
	Timeout          int     `mapstructure:"timeout"`
	MaxRetries       int     `mapstructure:"max_retries"`
}

func newOpenAIConfig() provider.Config {
	return &OpenAIConfig{
		BaseURL:     "https://api.openai.com/v1/",
		Temperature: 0.7,
		TopP:        1.0,
		Timeout:     30,
		MaxRetries:  3,
	}
}

func (c *OpenAIConfig) Validate() error {
	verr := &provider.ValidationError{}
	if c.ModelName == "" {
		verr.Add("model_name", "is required")
	}
	if c.APIKey == "" {
		verr.Add("api_key", "is required")
	}
	if c.BaseURL == "" {
		verr.Add("base_url", "is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		verr.Add("temperature", "must be between 0 and 2")
	}
	if c.TopP < 0 || c.TopP > 1 {
		verr.Add("top_p", "must be between 0 and 1")
	}
	if c.FrequencyPenalty < -2 || c.FrequencyPenalty > 2 {
		verr.Add("frequency_penalty", "must be between -2 and 2")
	}
	if c.PresencePenalty < -2 || c.PresencePenalty > 2 {
		verr.Add("presence_penalty", "must be between -2 and 2")
	}
	if c.MaxTokens < 0 {
		verr.Add("max_tokens", "must not be negative")
	}
	if c.Timeout <= 0 {
		verr.Add("timeout", "must be positive")
	}
	if c.MaxRetries < 0 {
		verr.Add("max_retries", "must not be negative")
	}
	return verr.OrNil()
}

// ClientOptions renders the request options the underlying SDK client is
// constructed with. Pure: the same record always renders the same options.
func (c *OpenAIConfig) ClientOptions() []option.RequestOption {
	opts := []option.RequestOption{
		option.WithBaseURL(c.BaseURL),
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(c.MaxRetries),
		option.WithRequestTimeout(time.Duration(c.Timeout) * time.Second),
	}
	if c.Organization != "" {
		opts = append(opts, option.WithOrganization(c.Organization))
	}
	return opts
}

// OpenAI serves chat and embedding requests through the OpenAI API. It also
// backs the azure_openai provider, which differs only in the rendered client
// options.
type OpenAI struct {
	client           *openai.Client
	model            string
	temperature      float64
	maxTokens        int
	topP             float64
	frequencyPenalty float64
	presencePenalty  float64
}

func newOpenAIClient(config provider.Config) (Client, error) {
	cfg, ok := config.(*OpenAIConfig)
	if !ok {
		return nil, errors.New("invalid config type for OpenAI")
	}

	return &OpenAI{
		client:           openai.NewClient(cfg.ClientOptions()...),
		model:            cfg.ModelName,
		temperature:      cfg.Temperature,
		maxTokens:        cfg.MaxTokens,
		topP:             cfg.TopP,
		frequencyPenalty: cfg.FrequencyPenalty,
		presencePenalty:  cfg.PresencePenalty,
	}, nil
}

// Chat generates a response for a conversation history.
func (o *OpenAI) Chat(messages []Message) (string, GenerateStats, error) {
	params := openai.ChatCompletionNewParams{
		Messages:         openai.F([]openai.ChatCompletionMessageParamUnion{}),
		Model:            openai.F(openai.ChatModel(o.model)),
		Temperature:      openai.Float(o.temperature),
		TopP:             openai.Float(o.topP),
		FrequencyPenalty: openai.Float(o.frequencyPenalty),
		PresencePenalty:  openai.Float(o.presencePenalty),
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.maxTokens))
	}

	for _, message := range messages {
		switch message.Role {
		case "assistant":
			params.Messages.Value = append(
				params.Messages.Value,
				openai.AssistantMessage(message.Content),
			)
		case "system":
			params.Messages.Value = append(
				params.Messages.Value,
				openai.SystemMessage(message.Content),
			)
		default:
			params.Messages.Value = append(
				params.Messages.Value,
				openai.UserMessage(message.Content),
			)
		}
	}

	completion, err := o.client.Chat.Completions.New(context.Background(), params)
	if err != nil {
		return "", GenerateStats{}, fmt.Errorf("failed to generate chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", GenerateStats{}, errors.New("chat completion returned no choices")
	}
	choice := completion.Choices[0]

	stats := GenerateStats{
		DoneReason:         string(choice.FinishReason),
		TotalDuration:      -1,
		LoadDuration:       -1,
		PromptTokens:       completion.Usage.PromptTokens,
		PromptEvalDuration: -1,
		TokenCount:         completion.Usage.CompletionTokens,
		EvalDuration:       -1,
	}

	return choice.Message.Content, stats, nil
}

// Complete is not offered by the chat completions API.
func (o *OpenAI) Complete(_ string) (string, GenerateStats, error) {
	return "", GenerateStats{}, errors.New("completion mode is not supported by OpenAI")
}

// Embed produces one embedding vector per input text.
func (o *OpenAI) Embed(texts []string) ([][]float64, error) {
	resp, err := o.client.Embeddings.New(
		context.Background(),
		openai.EmbeddingNewParams{
			Input: openai.F[openai.EmbeddingNewParamsInputUnion](
				openai.EmbeddingNewParamsInputArrayOfStrings(texts),
			),
			Model: openai.F(openai.EmbeddingModel(o.model)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	vectors := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
