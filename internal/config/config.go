// Package config loads service configuration from an optional YAML file with
// environment variable overrides. Environment always wins so container
// deployments can skip the file entirely.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"databaseUrl"`
	RedisURL    string `yaml:"redisUrl"`
	AuthMode    string `yaml:"authMode"` // dev or hmac
	AuthSecret  string `yaml:"authSecret"`

	Solver  SolverConfig  `yaml:"solver"`
	Webhook WebhookConfig `yaml:"webhook"`
	Rate    RateConfig    `yaml:"rate"`
}

type SolverConfig struct {
	Disabled      bool          `yaml:"disabled"`
	BudgetSeconds float64       `yaml:"budgetSeconds"`
	Seed          int64         `yaml:"seed"`
	Budget        time.Duration `yaml:"-"`
}

type WebhookConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`
}

type RateConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// Load reads the file named by CONFIG_FILE (if any), then applies environment
// overrides and defaults. A missing file is not an error; a malformed one is.
func Load() (Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("AUTH_MODE"); v != "" {
		cfg.AuthMode = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.AuthSecret = v
	}
	if v := os.Getenv("SOLVER_DISABLED"); v != "" {
		cfg.Solver.Disabled = v == "1" || v == "true"
	}
	if v := os.Getenv("SOLVER_BUDGET_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Solver.BudgetSeconds = f
		}
	}
	if v := os.Getenv("SOLVER_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Solver.Seed = n
		}
	}
	if v := os.Getenv("WEBHOOK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Webhook.MaxAttempts = n
		}
	}
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Rate.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Rate.Burst = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = "dev"
	}
	if cfg.Solver.BudgetSeconds <= 0 {
		cfg.Solver.BudgetSeconds = 5
	}
	cfg.Solver.Budget = time.Duration(cfg.Solver.BudgetSeconds * float64(time.Second))
	if cfg.Webhook.MaxAttempts <= 0 {
		cfg.Webhook.MaxAttempts = 10
	}
	if cfg.Rate.RequestsPerSecond <= 0 {
		cfg.Rate.RequestsPerSecond = 50
	}
	if cfg.Rate.Burst <= 0 {
		cfg.Rate.Burst = 100
	}
}
