// Package config loads server and client configuration.
//
// Sources, highest priority first:
//  1. explicit --config path;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
//
// Environment variables always overlay whatever the file provided.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config is the server configuration.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local" validate:"oneof=local dev prod"`
	HTTP      HTTPConfig      `yaml:"http"`
	TMDB      TMDBConfig      `yaml:"tmdb"`
	Books     BooksConfig     `yaml:"books"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"PORT" env-default:"8080" validate:"required,numeric"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// TMDBConfig configures the movie catalog. An empty APIKey is allowed at load
// time; the movie routes answer 500 until it is set.
type TMDBConfig struct {
	APIKey   string `yaml:"api_key" env:"TMDB_API_KEY"`
	BaseURL  string `yaml:"base_url" env:"TMDB_BASE_URL" env-default:"https://api.themoviedb.org/3" validate:"required,url"`
	Language string `yaml:"language" env:"TMDB_LANGUAGE" env-default:"fr-FR" validate:"required"`
}

// BooksConfig configures the book catalog. Google Books works without a key.
type BooksConfig struct {
	APIKey       string `yaml:"api_key" env:"GOOGLE_BOOKS_API_KEY"`
	BaseURL      string `yaml:"base_url" env:"GOOGLE_BOOKS_BASE_URL" env-default:"https://www.googleapis.com/books/v1" validate:"required,url"`
	LangRestrict string `yaml:"lang_restrict" env:"GOOGLE_BOOKS_LANG" env-default:"fr" validate:"required"`
}

// UpstreamConfig tunes outbound calls and the per-upstream circuit breaker.
type UpstreamConfig struct {
	Timeout         time.Duration `yaml:"timeout" env:"UPSTREAM_TIMEOUT" env-default:"10s" validate:"gt=0"`
	BreakerFailures uint32        `yaml:"breaker_failures" env:"UPSTREAM_BREAKER_FAILURES" env-default:"5" validate:"gte=1"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" env:"UPSTREAM_BREAKER_TIMEOUT" env-default:"30s" validate:"gt=0"`
}

type RateLimitConfig struct {
	Disabled bool          `yaml:"disabled" env:"RATE_LIMIT_DISABLED" env-default:"false"`
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"120" validate:"gte=1"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// ClientConfig is the configuration of the moodpick CLI.
type ClientConfig struct {
	Env       string        `yaml:"env" env:"ENV" env-default:"local" validate:"oneof=local dev prod"`
	ServerURL string        `yaml:"server_url" env:"MOODPICK_SERVER_URL" env-default:"http://localhost:8080" validate:"required,url"`
	DBPath    string        `yaml:"db_path" env:"MOODPICK_DB_PATH" env-default:"moodpick.db" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" env:"MOODPICK_TIMEOUT" env-default:"15s" validate:"gt=0"`
	Country   string        `yaml:"country" env:"MOODPICK_COUNTRY" env-default:"CA" validate:"len=2"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// MustLoad panics if the server configuration can't be loaded.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := read(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadClient(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := read(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func read(path string, cfg any) error {
	tryRead := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := tryRead(path); err != nil {
			return err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := tryRead(os.Getenv("CONFIG_PATH")); err != nil {
			return err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := cleanenv.ReadConfig("local.yaml", cfg); err != nil {
				return fmt.Errorf("failed to read local.yaml: %w", err)
			}
		} else if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("failed to read env: %w", err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
