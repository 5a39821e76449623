package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_AppliesOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://localhost:11434/v1"),
		WithModel("embeddinggemma"),
		WithAPIKey("secret"),
	)

	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "embeddinggemma", cfg.Model)
	assert.Equal(t, "secret", cfg.APIKey)
}

func TestConfig_NormalizeAddsV1Suffix(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"bare host", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already normalized", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.Host)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig(WithAPIKey("none"))
	require.NoError(t, cfg.Validate())

	missingModel := NewConfig(WithAPIKey("none"))
	missingModel.Model = ""
	assert.Error(t, missingModel.Validate())

	missingHost := NewConfig(WithAPIKey("none"))
	missingHost.Host = ""
	assert.Error(t, missingHost.Validate())
}
