package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Coinbase: Coinbase{ProductID: "BTC-EUR"},
		Investment: Investment{
			MonthlyLimit: 1000,
			Frequency:    4,
			OrderTimeout: 30,
			PollInterval: 5,
		},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ZeroMonthlyLimit", func(c *Config) { c.Investment.MonthlyLimit = 0 }},
		{"NegativeMonthlyLimit", func(c *Config) { c.Investment.MonthlyLimit = -100 }},
		{"ZeroFrequency", func(c *Config) { c.Investment.Frequency = 0 }},
		{"ZeroOrderTimeout", func(c *Config) { c.Investment.OrderTimeout = 0 }},
		{"ZeroPollInterval", func(c *Config) { c.Investment.PollInterval = 0 }},
		{"MissingProductID", func(c *Config) { c.Coinbase.ProductID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
