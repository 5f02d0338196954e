package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink-studio-ai-api/internal/config"
)

func factoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LLM = config.LLMConfig{
		DefaultProvider: "openai",
		FallbackChain:   []string{"gemini", "openai"},
		Providers: map[string]config.ProviderConfig{
			"openai": {
				Model:         "gpt-4o-mini",
				ModelPrefixes: []string{"gpt-", "o1", "o3"},
			},
			"gemini": {
				Model:         "gemini-2.0-flash",
				ModelPrefixes: []string{"gemini-"},
			},
		},
	}
	return cfg
}

func TestResolveByPrefix(t *testing.T) {
	f := NewEinoFactory(factoryConfig())

	cases := map[string]string{
		"gpt-4o":               "openai",
		"gpt-4.1-mini":         "openai",
		"o3-mini":              "openai",
		"gemini-2.0-flash":     "gemini",
		"gemini-2.5-pro":       "gemini",
		" gemini-2.0-flash   ": "gemini",
	}
	for modelName, want := range cases {
		got, err := f.Resolve(modelName)
		require.NoError(t, err, "model %s", modelName)
		assert.Equal(t, want, got, "model %s", modelName)
	}
}

func TestResolveUnknownFallsToDefaultProvider(t *testing.T) {
	f := NewEinoFactory(factoryConfig())
	got, err := f.Resolve("claude-sonnet")
	require.NoError(t, err)
	assert.Equal(t, "openai", got)
}

func TestResolveNoProviderAvailable(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM = config.LLMConfig{Providers: map[string]config.ProviderConfig{}}
	f := NewEinoFactory(cfg)

	_, err := f.Resolve("gpt-4o")
	assert.Error(t, err)
}

func TestFallbackSkipsPrimary(t *testing.T) {
	f := NewEinoFactory(factoryConfig())

	provider, modelName, ok := f.Fallback("gemini")
	require.True(t, ok)
	assert.Equal(t, "openai", provider)
	assert.Equal(t, "gpt-4o-mini", modelName)

	provider, modelName, ok = f.Fallback("openai")
	require.True(t, ok)
	assert.Equal(t, "gemini", provider)
	assert.Equal(t, "gemini-2.0-flash", modelName)
}

func TestFallbackNoneAvailable(t *testing.T) {
	cfg := factoryConfig()
	cfg.LLM.FallbackChain = []string{"gemini"}
	f := NewEinoFactory(cfg)

	_, _, ok := f.Fallback("gemini")
	assert.False(t, ok)

	// 链中引用了未注册的提供商则跳过
	cfg.LLM.FallbackChain = []string{"anthropic"}
	f = NewEinoFactory(cfg)
	_, _, ok = f.Fallback("openai")
	assert.False(t, ok)
}
