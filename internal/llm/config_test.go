package llm //nolint:testpackage // Unit tests are in the same package

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakenode/provisor/internal/provider"
)

func TestOpenAIConfig_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		cfg := newOpenAIConfig().(*OpenAIConfig)
		cfg.ModelName = "gpt-4o-mini"
		cfg.APIKey = "k"

		assert.NoError(t, cfg.Validate())
	})

	t.Run("Missing required fields are all reported", func(t *testing.T) {
		cfg := newOpenAIConfig().(*OpenAIConfig)

		err := cfg.Validate()

		var verr *provider.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 2)
		assert.Equal(t, "model_name", verr.Fields[0].Field)
		assert.Equal(t, "api_key", verr.Fields[1].Field)
	})

	t.Run("Temperature out of range", func(t *testing.T) {
		cfg := newOpenAIConfig().(*OpenAIConfig)
		cfg.ModelName = "gpt-4o-mini"
		cfg.APIKey = "k"
		cfg.Temperature = 2.5

		err := cfg.Validate()

		var verr *provider.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "temperature", verr.Fields[0].Field)
	})
}

func TestAzureOpenAIConfig_Validate(t *testing.T) {
	valid := func() *AzureOpenAIConfig {
		cfg := newAzureOpenAIConfig().(*AzureOpenAIConfig)
		cfg.ModelName = "gpt-4o"
		cfg.APIKey = "k"
		cfg.Endpoint = "https://example.openai.azure.com"
		return cfg
	}

	t.Run("Valid with defaults", func(t *testing.T) {
		cfg := valid()

		require.NoError(t, cfg.Validate())
		assert.Equal(t, defaultAzureAPIVersion, cfg.APIVersion)
	})

	t.Run("Endpoint must be a URL", func(t *testing.T) {
		cfg := valid()
		cfg.Endpoint = "example.openai.azure.com"

		err := cfg.Validate()

		var verr *provider.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "endpoint", verr.Fields[0].Field)
	})

	t.Run("Fixing the reported field clears the error", func(t *testing.T) {
		cfg := valid()
		cfg.Endpoint = "example.openai.azure.com"
		require.Error(t, cfg.Validate())

		cfg.Endpoint = "https://example.openai.azure.com"
		assert.NoError(t, cfg.Validate())
	})
}

func TestAzureOpenAIConfig_BaseURLIsStable(t *testing.T) {
	// Arrange
	cfg := newAzureOpenAIConfig().(*AzureOpenAIConfig)
	cfg.ModelName = "gpt-4o"
	cfg.APIKey = "k"
	cfg.Endpoint = "https://example.openai.azure.com/"

	// Act / Assert: rendering is pure, trailing slashes collapse
	url := cfg.BaseURL()
	assert.Equal(t, "https://example.openai.azure.com/openai/deployments/gpt-4o/", url)
	assert.Equal(t, url, cfg.BaseURL())
}

func TestClientOptions_Stable(t *testing.T) {
	// Rendering construction options twice on the same record yields the
	// same option set.
	t.Run("OpenAI", func(t *testing.T) {
		cfg := newOpenAIConfig().(*OpenAIConfig)
		cfg.ModelName = "gpt-4o-mini"
		cfg.APIKey = "k"
		cfg.Organization = "org-1"

		assert.Len(t, cfg.ClientOptions(), 5)
		assert.Len(t, cfg.ClientOptions(), 5)
	})

	t.Run("Azure OpenAI", func(t *testing.T) {
		cfg := newAzureOpenAIConfig().(*AzureOpenAIConfig)
		cfg.ModelName = "gpt-4o"
		cfg.APIKey = "k"
		cfg.Endpoint = "https://example.openai.azure.com"

		assert.Len(t, cfg.ClientOptions(), 5)
		assert.Len(t, cfg.ClientOptions(), 5)
	})

	t.Run("Anthropic", func(t *testing.T) {
		cfg := newAnthropicConfig().(*AnthropicConfig)
		cfg.ModelName = "claude-sonnet-4-5"
		cfg.APIKey = "k"

		assert.Len(t, cfg.ClientOptions(), 3)
		assert.Len(t, cfg.ClientOptions(), 3)
	})
}

func TestAnthropicConfig_Validate(t *testing.T) {
	t.Run("Temperature bounded at 1", func(t *testing.T) {
		cfg := newAnthropicConfig().(*AnthropicConfig)
		cfg.ModelName = "claude-sonnet-4-5"
		cfg.APIKey = "k"
		cfg.Temperature = 1.5

		err := cfg.Validate()

		var verr *provider.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "temperature", verr.Fields[0].Field)
	})

	t.Run("MaxTokens must be positive", func(t *testing.T) {
		cfg := newAnthropicConfig().(*AnthropicConfig)
		cfg.ModelName = "claude-sonnet-4-5"
		cfg.APIKey = "k"
		cfg.MaxTokens = 0

		err := cfg.Validate()

		var verr *provider.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "max_tokens", verr.Fields[0].Field)
	})
}

func TestOllamaConfig_Validate(t *testing.T) {
	t.Run("Defaults only need a model", func(t *testing.T) {
		cfg := newOllamaConfig().(*OllamaConfig)
		cfg.ModelName = "llama3.3:70b"

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434", cfg.BaseURL)
	})

	t.Run("Missing model", func(t *testing.T) {
		cfg := newOllamaConfig().(*OllamaConfig)

		err := cfg.Validate()

		var verr *provider.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "model_name", verr.Fields[0].Field)
	})
}
