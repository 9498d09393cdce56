// Package llm wires the language-model domain into the provider engine:
// logical model kinds, per-provider configuration records and the client
// constructors for OpenAI, Azure OpenAI, Anthropic and Ollama.
package llm

import (
	"fmt"
	"time"

	"github.com/oakenode/provisor/internal/config"
	"github.com/oakenode/provisor/internal/provider"
)

// Namespace is the top-level configuration key for the model domain.
const Namespace = "llm"

// Provider ids registered by default.
const (
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure_openai"
	ProviderAnthropic   = "anthropic"
	ProviderOllama      = "ollama"
)

// Logical model kinds. These route requests to a configured model tier and
// carry no meaning beyond that.
const (
	KindFast      = "fast"
	KindSmart     = "smart"
	KindEmbedding = "embedding"
	KindVision    = "vision"
)

// Kinds returns the closed logical-kind enumeration for the model domain.
func Kinds() []string {
	return []string{KindFast, KindSmart, KindEmbedding, KindVision}
}

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// GenerateStats carries per-generation accounting. Fields a provider does not
// report are -1.
type GenerateStats struct {
	DoneReason         string
	TotalDuration      time.Duration
	LoadDuration       time.Duration
	PromptTokens       int64
	PromptEvalDuration time.Duration
	TokenCount         int64
	EvalDuration       time.Duration
}

// Client is the uniform capability surface of a constructed model client.
type Client interface {
	Chat(messages []Message) (string, GenerateStats, error)
	Complete(prompt string) (string, GenerateStats, error)
}

// Embedder is implemented by clients whose provider exposes an embedding
// endpoint.
type Embedder interface {
	Embed(texts []string) ([][]float64, error)
}

// NewResolver builds a settings resolver for the llm namespace over the
// default registry.
func NewResolver(store *config.Store) *provider.Resolver[Client] {
	return provider.NewResolver(store, Namespace, Kinds(), NewRegistry())
}

// Factory hands out cached model clients.
type Factory struct {
	*provider.Factory[Client]
}

func NewFactory(store *config.Store) *Factory {
	return &Factory{Factory: provider.NewFactory(NewResolver(store))}
}

// Embedder returns an embedding-capable client for kind, defaulting to the
// embedding kind. Providers without an embedding endpoint fail here rather
// than at call time.
func (f *Factory) Embedder(kind, explicitProvider string) (Embedder, error) {
	if kind == "" {
		kind = KindEmbedding
	}
	client, err := f.Client(kind, explicitProvider)
	if err != nil {
		return nil, err
	}
	emb, ok := client.(Embedder)
	if !ok {
		return nil, fmt.Errorf("%s client does not support embeddings", kind)
	}
	return emb, nil
}
