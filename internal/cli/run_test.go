package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/internal/config"
)

func TestNewThinker_ResolvesConfiguredProvider(t *testing.T) {
	for _, provider := range []string{"anthropic", "openai"} {
		cfg := &config.Config{}
		cfg.Thinker.Provider = provider

		think, err := newThinker(cfg)
		require.NoError(t, err)
		assert.Equal(t, provider, think.Name())
	}
}

func TestNewThinker_UnknownProviderFails(t *testing.T) {
	cfg := &config.Config{}
	cfg.Thinker.Provider = "bard"

	_, err := newThinker(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
