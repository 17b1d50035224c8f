package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Forecast struct {
		Steps      int           `yaml:"steps" default:"60"`
		Period     string        `yaml:"period" default:"6mo"`
		ScalerPath string        `yaml:"scaler_path" default:"model/scaler.json"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"forecast"`
	Model struct {
		Backend    string        `yaml:"backend" default:"native"`
		Path       string        `yaml:"path" default:"model/lstm_model.json"`
		ServingURL string        `yaml:"serving_url"`
		Name       string        `yaml:"name" default:"lstm_model"`
		InputSteps int           `yaml:"input_steps" default:"60"`
		Timeout    time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"model"`
	Provider struct {
		Type  string `yaml:"type" default:"yahoo"`
		Yahoo struct {
			BaseURL   string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
			Timeout   time.Duration `yaml:"timeout" default:"15s"`
			RPS       float64       `yaml:"rps" default:"2"`
			Burst     int           `yaml:"burst" default:"2"`
			UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0"`
		} `yaml:"yahoo"`
		Alpaca struct {
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
			BaseURL   string `yaml:"base_url"`
			Feed      string `yaml:"feed" default:"iex"`
		} `yaml:"alpaca"`
		Static struct {
			Closes []float64 `yaml:"closes"`
		} `yaml:"static"`
	} `yaml:"provider"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		Backend string        `yaml:"backend" default:"memory"`
		TTL     time.Duration `yaml:"ttl" default:"15m"`
		MaxSize int           `yaml:"max_size" default:"512"`
		Redis   struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"pricecast"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Recorder struct {
		Type   string `yaml:"type" default:"noop"`
		Buffer int    `yaml:"buffer" default:"256"`
		SQLite struct {
			Path string `yaml:"path" default:"data/forecasts.db"`
		} `yaml:"sqlite"`
		ClickHouse struct {
			Host         string        `yaml:"host" default:"localhost"`
			Port         int           `yaml:"port" default:"9000"`
			Database     string        `yaml:"database" default:"pricecast"`
			User         string        `yaml:"user" default:"default"`
			Password     string        `yaml:"password"`
			UseHTTP      bool          `yaml:"use_http"`
			AsyncInsert  bool          `yaml:"async_insert"`
			WaitForAsync bool          `yaml:"wait_for_async_insert"`
			DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			MaxExecTime  time.Duration `yaml:"max_execution_time" default:"30s"`
		} `yaml:"clickhouse"`
		DynamoDB struct {
			Region string `yaml:"region"`
			Table  string `yaml:"table" default:"pricecast_forecasts"`
		} `yaml:"dynamodb"`
	} `yaml:"recorder"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"pricecast.forecasts"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	Scheduler struct {
		Enabled bool          `yaml:"enabled"`
		Spec    string        `yaml:"spec" default:"0 30 21 * * 1-5"`
		Symbols []string      `yaml:"symbols"`
		Timeout time.Duration `yaml:"timeout" default:"1m"`
	} `yaml:"scheduler"`
	Limits struct {
		RPS   float64 `yaml:"rps" default:"1"`
		Burst int     `yaml:"burst" default:"5"`
	} `yaml:"limits"`
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads a .env file when present, reads YAML, and overrides with
// environment variables before validating.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PRICECAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("PRICECAST_PROVIDER"); v != "" {
		c.Provider.Type = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		c.Provider.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		c.Provider.Alpaca.APISecret = v
	}
	if v := os.Getenv("MODEL_SERVING_URL"); v != "" {
		c.Model.ServingURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			var p int
			if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
				c.Cache.Redis.Port = p
			}
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("FORECAST_SYMBOLS"); v != "" {
		c.Scheduler.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("DYNAMODB_TABLE"); v != "" {
		c.Recorder.DynamoDB.Table = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Forecast.Steps <= 0 {
		return fmt.Errorf("forecast.steps must be positive, got %d", c.Forecast.Steps)
	}
	if c.Forecast.Period == "" {
		return fmt.Errorf("forecast.period is required")
	}
	if c.Forecast.ScalerPath == "" {
		return fmt.Errorf("forecast.scaler_path is required")
	}

	switch c.Model.Backend {
	case "native":
		if c.Model.Path == "" {
			return fmt.Errorf("model.path is required for the native backend")
		}
	case "remote":
		if c.Model.ServingURL == "" {
			return fmt.Errorf("model.serving_url is required for the remote backend")
		}
		if c.Model.InputSteps != c.Forecast.Steps {
			return fmt.Errorf("model.input_steps (%d) must equal forecast.steps (%d)", c.Model.InputSteps, c.Forecast.Steps)
		}
	default:
		return fmt.Errorf("model.backend must be 'native' or 'remote', got '%s'", c.Model.Backend)
	}

	switch c.Provider.Type {
	case "yahoo":
	case "alpaca":
		if c.Provider.Alpaca.APIKey == "" || c.Provider.Alpaca.APISecret == "" {
			return fmt.Errorf("provider.alpaca credentials are required")
		}
	case "static":
		if len(c.Provider.Static.Closes) == 0 {
			return fmt.Errorf("provider.static.closes cannot be empty")
		}
	default:
		return fmt.Errorf("provider.type must be 'yahoo', 'alpaca' or 'static', got '%s'", c.Provider.Type)
	}

	if c.Cache.Enabled && c.Cache.Backend != "memory" && c.Cache.Backend != "redis" && c.Cache.Backend != "layered" {
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}

	switch c.Recorder.Type {
	case "noop", "sqlite", "clickhouse", "dynamodb":
	default:
		return fmt.Errorf("recorder.type must be one of noop, sqlite, clickhouse, dynamodb, got '%s'", c.Recorder.Type)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Scheduler.Enabled && len(c.Scheduler.Symbols) == 0 {
		return fmt.Errorf("scheduler.symbols cannot be empty when the scheduler is enabled")
	}
	return nil
}
