package repeater

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Enable:               true,
		EnableInGroup:        true,
		CacheTimeout:         3600,
		MaxHistory:           50,
		MinRepeatCount:       2,
		MinDistinctSenders:   2,
		BotID:                botID,
		SuppressFailedEchoes: true,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cache timeout", func(c *Config) { c.CacheTimeout = 0 }},
		{"negative max history", func(c *Config) { c.MaxHistory = -1 }},
		{"zero min repeat count", func(c *Config) { c.MinRepeatCount = 0 }},
		{"zero min distinct senders", func(c *Config) { c.MinDistinctSenders = 0 }},
		{"empty bot id", func(c *Config) { c.BotID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
