package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Forecast.Steps != 60 {
		t.Fatalf("steps = %d, want 60", c.Forecast.Steps)
	}
	if c.Forecast.Period != "6mo" {
		t.Fatalf("period = %q, want 6mo", c.Forecast.Period)
	}
	if c.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("read timeout = %v", c.Server.ReadTimeout)
	}
	if c.Provider.Type != "yahoo" || c.Recorder.Type != "noop" {
		t.Fatalf("provider=%q recorder=%q", c.Provider.Type, c.Recorder.Type)
	}
	if c.Kafka.RequiredAcks != -1 {
		t.Fatalf("required acks = %d", c.Kafka.RequiredAcks)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: prod
forecast:
  steps: 30
  period: 1y
model:
  input_steps: 30
provider:
  type: static
  static:
    closes: [1, 2, 3]
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Forecast.Steps != 30 || c.Forecast.Period != "1y" {
		t.Fatalf("forecast = %+v", c.Forecast)
	}
	if len(c.Provider.Static.Closes) != 3 {
		t.Fatalf("closes = %v", c.Provider.Static.Closes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero steps", func(c *Config) { c.Forecast.Steps = 0 }},
		{"empty period", func(c *Config) { c.Forecast.Period = "" }},
		{"unknown backend", func(c *Config) { c.Model.Backend = "onnx" }},
		{"remote without url", func(c *Config) { c.Model.Backend = "remote" }},
		{"remote steps mismatch", func(c *Config) {
			c.Model.Backend = "remote"
			c.Model.ServingURL = "http://localhost:8501"
			c.Model.InputSteps = 30
		}},
		{"unknown provider", func(c *Config) { c.Provider.Type = "bloomberg" }},
		{"alpaca without keys", func(c *Config) { c.Provider.Type = "alpaca" }},
		{"static without closes", func(c *Config) { c.Provider.Type = "static" }},
		{"unknown recorder", func(c *Config) { c.Recorder.Type = "postgres" }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }},
		{"scheduler without symbols", func(c *Config) { c.Scheduler.Enabled = true }},
		{"bad cache backend", func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.Backend = "memcached"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Default()
			if err != nil {
				t.Fatalf("Default: %v", err)
			}
			if err := c.Validate(); err != nil {
				t.Fatalf("defaults should validate: %v", err)
			}
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PRICECAST_PROVIDER", "alpaca")
	t.Setenv("ALPACA_API_KEY", "key")
	t.Setenv("ALPACA_SECRET_KEY", "secret")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("REDIS_ADDR", "cache.local:6380")
	t.Setenv("FORECAST_SYMBOLS", "AAPL,MSFT")

	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	c.ApplyEnv()

	if c.Provider.Type != "alpaca" || c.Provider.Alpaca.APIKey != "key" || c.Provider.Alpaca.APISecret != "secret" {
		t.Fatalf("alpaca = %+v", c.Provider.Alpaca)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("brokers = %v", c.Kafka.Brokers)
	}
	if c.Cache.Redis.Host != "cache.local" || c.Cache.Redis.Port != 6380 {
		t.Fatalf("redis = %s:%d", c.Cache.Redis.Host, c.Cache.Redis.Port)
	}
	if len(c.Scheduler.Symbols) != 2 {
		t.Fatalf("symbols = %v", c.Scheduler.Symbols)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
