package llm

import "github.com/oakenode/provisor/internal/provider"

// NewRegistry returns a registry with every built-in model provider wired in.
// Callers extend it with Register (or Replace) before handing it to a
// resolver.
func NewRegistry() *provider.Registry[Client] {
	r := provider.NewRegistry[Client]()

	r.MustRegister(ProviderOpenAI, provider.Entry[Client]{
		NewConfig: newOpenAIConfig,
		Overrides: []provider.EnvOverride{
			{Var: "OPENAI_API_KEY", Field: "api_key"},
			{Var: "OPENAI_BASE_URL", Field: "base_url"},
			{Var: "OPENAI_ORGANIZATION", Field: "organization"},
		},
		Construct:  newOpenAIClient,
		Dependency: "github.com/openai/openai-go",
	})

	r.MustRegister(ProviderAzureOpenAI, provider.Entry[Client]{
		NewConfig: newAzureOpenAIConfig,
		Overrides: []provider.EnvOverride{
			{Var: "AZURE_OPENAI_API_KEY", Field: "api_key"},
			{Var: "AZURE_OPENAI_ENDPOINT", Field: "endpoint"},
			{Var: "AZURE_OPENAI_API_VERSION", Field: "api_version"},
		},
		Construct:  newAzureOpenAIClient,
		Dependency: "github.com/openai/openai-go",
	})

	r.MustRegister(ProviderAnthropic, provider.Entry[Client]{
		NewConfig: newAnthropicConfig,
		Overrides: []provider.EnvOverride{
			{Var: "ANTHROPIC_API_KEY", Field: "api_key"},
		},
		Construct:  newAnthropicClient,
		Dependency: "github.com/anthropics/anthropic-sdk-go",
	})

	r.MustRegister(ProviderOllama, provider.Entry[Client]{
		NewConfig: newOllamaConfig,
		Overrides: []provider.EnvOverride{
			{Var: "OLLAMA_HOST", Field: "base_url"},
		},
		Construct:  newOllamaClient,
		Dependency: "github.com/ollama/ollama",
	})

	return r
}
