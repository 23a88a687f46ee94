package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("litebit")

	require.NotNil(t, config)
	assert.Equal(t, "litebit", config.Exchange)
	assert.Equal(t, "v1", config.Version)
	assert.Nil(t, config.Credentials)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing exchange",
			mutate:  func(c *Config) { c.Exchange = "" },
			wantErr: true,
		},
		{
			name:    "unknown version",
			mutate:  func(c *Config) { c.Version = "v3" },
			wantErr: true,
		},
		{
			name:    "v2 is valid",
			mutate:  func(c *Config) { c.Version = "v2" },
			wantErr: false,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "invalid base url",
			mutate:  func(c *Config) { c.BaseURL = "not a url" },
			wantErr: true,
		},
		{
			name:    "zero rate limit requests",
			mutate:  func(c *Config) { c.RateLimitRequests = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig("litebit")
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigChaining(t *testing.T) {
	config := DefaultConfig("litebit").
		WithVersion("v2").
		WithCredentials(&Credentials{Token: "token-from-caller"}).
		WithBaseURL("https://sandbox.example.com").
		WithTimeout(5*time.Second).
		WithRateLimit(100, time.Minute)

	assert.Equal(t, "v2", config.Version)
	require.NotNil(t, config.Credentials)
	assert.Equal(t, "token-from-caller", config.Credentials.Token)
	assert.Equal(t, "https://sandbox.example.com", config.BaseURL)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, 100, config.RateLimitRequests)
	assert.Equal(t, time.Minute, config.RateLimitPeriod)
	assert.NoError(t, config.Validate())
}
