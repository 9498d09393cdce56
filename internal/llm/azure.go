package llm

import (
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/oakenode/provisor/internal/provider"
)

const defaultAzureAPIVersion = "2024-02-15-preview"

// AzureOpenAIConfig holds connection and model parameters for an Azure OpenAI
// deployment. The model name doubles as the deployment name.
type AzureOpenAIConfig struct {
	ModelName        string  `mapstructure:"model_name"`
	APIKey           string  `mapstructure:"api_key"`
	Endpoint         string  `mapstructure:"endpoint"`
	APIVersion       string  `mapstructure:"api_version"`
	Temperature      float64 `mapstructure:"temperature"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	TopP             float64 `mapstructure:"top_p"`
	FrequencyPenalty float64 `mapstructure:"frequency_penalty"`
	PresencePenalty  float64 `mapstructure:"presence_penalty"`
	Timeout          int     `mapstructure:"timeout"`
	MaxRetries       int     `mapstructure:"max_retries"`
}

func newAzureOpenAIConfig() provider.Config {
	return &AzureOpenAIConfig{
		APIVersion:  defaultAzureAPIVersion,
		Temperature: 0.7,
		TopP:        1.0,
		Timeout:     30,
		MaxRetries:  3,
	}
}

func (c *AzureOpenAIConfig) Validate() error {
	verr := &provider.ValidationError{}
	if c.ModelName == "" {
		verr.Add("model_name", "is required")
	}
	if c.APIKey == "" {
		verr.Add("api_key", "is required")
	}
	switch {
	case c.Endpoint == "":
		verr.Add("endpoint", "is required")
	case !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://"):
		verr.Add("endpoint", "must be a valid URL")
	}
	if c.APIVersion == "" {
		verr.Add("api_version", "is required")
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

// BaseURL renders the deployment-scoped endpoint requests are sent to. Pure
// and stable for a given record.
func (c *AzureOpenAIConfig) BaseURL() string {
	return strings.TrimRight(c.Endpoint, "/") + "/openai/deployments/" + c.ModelName + "/"
}

// ClientOptions renders the request options for the SDK client: Azure
// authenticates with an api-key header and versions every request with an
// api-version query parameter.
func (c *AzureOpenAIConfig) ClientOptions() []option.RequestOption {
	return []option.RequestOption{
		option.WithBaseURL(c.BaseURL()),
		option.WithHeader("api-key", c.APIKey),
		option.WithQuery("api-version", c.APIVersion),
		option.WithMaxRetries(c.MaxRetries),
		option.WithRequestTimeout(time.Duration(c.Timeout) * time.Second),
	}
}

// newAzureOpenAIClient builds an OpenAI client pointed at an Azure
// deployment; the wire protocol past authentication is the same.
func newAzureOpenAIClient(config provider.Config) (Client, error) {
	cfg, ok := config.(*AzureOpenAIConfig)
	if !ok {
		return nil, errors.New("invalid config type for Azure OpenAI")
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
