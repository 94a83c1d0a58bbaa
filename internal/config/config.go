package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Quiz struct {
		BankPath   string `yaml:"bank_path"`
		SampleSize int    `yaml:"sample_size"`
		Duration   string `yaml:"duration"`
		Role       string `yaml:"role"`
		BankTTL    string `yaml:"bank_ttl"`
	} `yaml:"quiz"`
	Scorer struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"scorer"`
	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
}

// Load reads YAML config from path. A missing file yields the defaults;
// secrets from the environment (and an optional .env file) are layered on top.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadDotEnv loads .env into the process environment when present.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
		if !strings.EqualFold(cfg.Store.Driver, DriverMemory) {
			cfg.Store.Driver = DriverPostgres
		}
	}
	if v := os.Getenv("QUIZ_BANK_PATH"); v != "" {
		cfg.Quiz.BankPath = v
	}
	if cfg.Scorer.APIKey != "" {
		return
	}
	switch strings.ToLower(cfg.Scorer.Provider) {
	case "gemini":
		cfg.Scorer.APIKey = os.Getenv("GEMINI_API_KEY")
	default:
		cfg.Scorer.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Quiz.BankPath == "" {
		cfg.Quiz.BankPath = "questions.xlsx"
	}
	if cfg.Scorer.Provider == "" {
		cfg.Scorer.Provider = "openai"
	}
	if cfg.Store.Driver == "" {
		switch {
		case cfg.Postgres.URL != "":
			cfg.Store.Driver = DriverPostgres
		case cfg.SQLite.Path != "":
			cfg.Store.Driver = DriverSQLite
		default:
			cfg.Store.Driver = DriverMemory
		}
	}
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
