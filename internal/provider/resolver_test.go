package provider //nolint:testpackage // Unit tests are in the same package

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakenode/provisor/internal/config"
)

// acmeConfig is the configuration record of the test-double provider.
type acmeConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Timeout  int    `mapstructure:"timeout"`
}

func newAcmeConfig() Config {
	return &acmeConfig{Timeout: 30}
}

func (c *acmeConfig) Validate() error {
	verr := &ValidationError{}
	if c.Endpoint == "" {
		verr.Add("endpoint", "is required")
	}
	if c.APIKey == "" {
		verr.Add("api_key", "is required")
	}
	if c.Timeout <= 0 {
		verr.Add("timeout", "must be positive")
	}
	return verr.OrNil()
}

type acmeClient struct {
	cfg    *acmeConfig
	serial int
}

var testKinds = []string{"fast", "smart", "vision"}

func acmeEntry(counter *int) Entry[*acmeClient] {
	return Entry[*acmeClient]{
		NewConfig: newAcmeConfig,
		Overrides: []EnvOverride{
			{Var: "TEST_ACME_API_KEY", Field: "api_key"},
			{Var: "TEST_ACME_TIMEOUT", Field: "timeout"},
		},
		Construct: func(cfg Config) (*acmeClient, error) {
			*counter++
			return &acmeClient{cfg: cfg.(*acmeConfig), serial: *counter}, nil
		},
		Dependency: "example.com/acme-sdk",
	}
}

func newTestResolver(t *testing.T, content string) (*Resolver[*acmeClient], *int, string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "provisor.yaml")
	err := os.WriteFile(configPath, []byte(content), 0644)
	require.NoError(t, err)

	counter := new(int)
	registry := NewRegistry[*acmeClient]()
	registry.MustRegister("acme", acmeEntry(counter))

	store := config.NewStore(configPath)
	return NewResolver(store, "services", testKinds, registry), counter, configPath
}

const baseConfig = `
services:
  default: "acme.fast"
  acme:
    fast:
      endpoint: https://fast.acme.test
      api_key: file-key
      timeout: 15
    smart:
      endpoint: https://smart.acme.test
      api_key: smart-key
`

func TestResolve_DefaultSelection(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, baseConfig)

	// Act
	res, err := resolver.Resolve("", "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "acme", res.Provider)
	assert.Equal(t, "fast", res.Kind)
	cfg, ok := res.Config.(*acmeConfig)
	require.True(t, ok)
	assert.Equal(t, "https://fast.acme.test", cfg.Endpoint)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, 15, cfg.Timeout)
}

func TestResolve_KindWithDefaultProvider(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, baseConfig)

	// Act
	res, err := resolver.Resolve("smart", "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "acme", res.Provider)
	assert.Equal(t, "smart", res.Kind)
	cfg := res.Config.(*acmeConfig)
	assert.Equal(t, "smart-key", cfg.APIKey)
	// Unset optional field keeps its documented default
	assert.Equal(t, 30, cfg.Timeout)
}

func TestResolve_ExplicitProviderAndKind(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, baseConfig)

	// Act
	res, err := resolver.Resolve("fast", "acme")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, Selection{Provider: "acme", Kind: "fast"}, res.Selection())
}

func TestResolve_MalformedDefaultSelection(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, `
services:
  default: "no-separator"
  acme:
    fast:
      endpoint: https://fast.acme.test
      api_key: k
`)

	// Act
	_, err := resolver.Resolve("", "")

	// Assert
	require.Error(t, err)
	var selErr *SelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Equal(t, "no-separator", selErr.Selection)
}

func TestResolve_DefaultReferencesUnconfiguredTarget(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, `
services:
  default: "acme.smart"
  acme:
    fast:
      endpoint: https://fast.acme.test
      api_key: k
`)

	// Act
	_, err := resolver.Resolve("", "")

	// Assert
	var selErr *SelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Equal(t, "acme.smart", selErr.Selection)
}

func TestResolve_UnknownKind(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, baseConfig)

	// Act
	_, err := resolver.Resolve("turbo", "acme")

	// Assert
	var selErr *SelectionError
	require.True(t, errors.As(err, &selErr))
	assert.Contains(t, selErr.Error(), "turbo")
}

func TestResolve_ConfiguredKindMissing(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, baseConfig)

	// Act: vision is a valid kind but has no parameter block
	_, err := resolver.Resolve("vision", "")

	// Assert
	var nfErr *NotFoundError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "acme.vision", nfErr.Selection.String())
	assert.Contains(t, nfErr.Error(), "acme.vision")
}

func TestResolve_EnvironmentOverridePrecedence(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, baseConfig)
	t.Setenv("TEST_ACME_API_KEY", "env-key")

	// Act
	res, err := resolver.Resolve("fast", "")

	// Assert: the overridden field reflects the environment, siblings keep
	// their file values
	require.NoError(t, err)
	cfg := res.Config.(*acmeConfig)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "https://fast.acme.test", cfg.Endpoint)
	assert.Equal(t, 15, cfg.Timeout)
}

func TestResolve_EnvironmentOverrideCoercesNumbers(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, baseConfig)
	t.Setenv("TEST_ACME_TIMEOUT", "99")

	// Act
	res, err := resolver.Resolve("fast", "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 99, res.Config.(*acmeConfig).Timeout)
}

func TestResolve_OverrideDoesNotStickAfterUnset(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, baseConfig)

	t.Setenv("TEST_ACME_API_KEY", "env-key")
	res, err := resolver.Resolve("fast", "")
	require.NoError(t, err)
	require.Equal(t, "env-key", res.Config.(*acmeConfig).APIKey)

	// Act: same resolver, variable gone
	os.Unsetenv("TEST_ACME_API_KEY")
	res, err = resolver.Resolve("fast", "")

	// Assert: the raw file block was never mutated
	require.NoError(t, err)
	assert.Equal(t, "file-key", res.Config.(*acmeConfig).APIKey)
}

func TestResolve_UnsupportedProvider(t *testing.T) {
	// Arrange: the legacy provider is configured but nothing registered it
	resolver, _, _ := newTestResolver(t, `
services:
  default: "acme.fast"
  acme:
    fast:
      endpoint: https://fast.acme.test
      api_key: k
  legacy:
    fast:
      endpoint: https://legacy.test
`)

	// Act
	_, err := resolver.Resolve("fast", "legacy")

	// Assert
	var unsupErr *UnsupportedProviderError
	require.True(t, errors.As(err, &unsupErr))
	assert.Equal(t, "legacy", unsupErr.Provider)
}

func TestResolve_ValidationEnumeratesEveryField(t *testing.T) {
	// Arrange
	resolver, _, _ := newTestResolver(t, `
services:
  default: "acme.fast"
  acme:
    fast:
      timeout: 10
`)

	// Act
	_, err := resolver.Resolve("fast", "")

	// Assert
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "acme", verr.Provider)
	assert.Equal(t, "fast", verr.Kind)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "endpoint", verr.Fields[0].Field)
	assert.Equal(t, "api_key", verr.Fields[1].Field)
}

func TestResolve_FixingReportedFieldClearsOnlyThatField(t *testing.T) {
	// Arrange: api_key supplied, endpoint still missing
	resolver, _, _ := newTestResolver(t, `
services:
  default: "acme.fast"
  acme:
    fast:
      api_key: k
`)

	// Act
	_, err := resolver.Resolve("fast", "")

	// Assert: only the remaining offender is reported
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "endpoint", verr.Fields[0].Field)
}

func TestAvailable_ListsConfiguredSelections(t *testing.T) {
	// Arrange
	resolver, counter, _ := newTestResolver(t, baseConfig)

	// Act
	sels, err := resolver.Available()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []Selection{
		{Provider: "acme", Kind: "fast"},
		{Provider: "acme", Kind: "smart"},
	}, sels)
	assert.Zero(t, *counter, "introspection must not construct clients")
}

func TestReload_RereadsConfiguration(t *testing.T) {
	// Arrange
	resolver, _, configPath := newTestResolver(t, baseConfig)

	res, err := resolver.Resolve("fast", "")
	require.NoError(t, err)
	require.Equal(t, "file-key", res.Config.(*acmeConfig).APIKey)

	err = os.WriteFile(configPath, []byte(`
services:
  default: "acme.fast"
  acme:
    fast:
      endpoint: https://fast.acme.test
      api_key: rotated-key
`), 0644)
	require.NoError(t, err)

	// Act
	resolver.Reload()
	res, err = resolver.Resolve("fast", "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "rotated-key", res.Config.(*acmeConfig).APIKey)
}

func TestParseSelection(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		sel, err := ParseSelection("openai.fast")
		require.NoError(t, err)
		assert.Equal(t, Selection{Provider: "openai", Kind: "fast"}, sel)
	})

	t.Run("Missing separator", func(t *testing.T) {
		_, err := ParseSelection("openai")
		var selErr *SelectionError
		require.True(t, errors.As(err, &selErr))
	})

	t.Run("Empty segment", func(t *testing.T) {
		_, err := ParseSelection(".fast")
		var selErr *SelectionError
		require.True(t, errors.As(err, &selErr))
	})
}
