package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to every environment override, e.g. APP_HTTP_ADDR.
const EnvPrefix = "APP_"

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HTTP       HTTP       `yaml:"http" envPrefix:"HTTP_"`
	Log        Log        `yaml:"log" envPrefix:"LOG_"`
	Pg         Pg         `yaml:"pg" envPrefix:"PG_"`
	Email      Email      `yaml:"email" envPrefix:"EMAIL_"`
	Auth       Auth       `yaml:"auth" envPrefix:"AUTH_"`
	Newsletter Newsletter `yaml:"newsletter" envPrefix:"NEWSLETTER_"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"ADDR" validate:"required"`
	BaseURL         string        `yaml:"base_url" env:"BASE_URL" validate:"required,url"` // used to build confirmation links
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	HSTS            bool          `yaml:"hsts" env:"HSTS"` // set when served behind https
}

type Log struct {
	Level string `yaml:"level" env:"LEVEL"`
	JSON  bool   `yaml:"json" env:"JSON"`
}

type Pg struct {
	Host         string        `yaml:"host" env:"HOST" validate:"required"`
	Port         int           `yaml:"port" env:"PORT" validate:"required"`
	User         string        `yaml:"user" env:"USER" validate:"required"`
	Dbname       string        `yaml:"dbname" env:"DBNAME" validate:"required"`
	SSLMode      string        `yaml:"sslmode" env:"SSLMODE"`
	MaxOpenConns int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	QueryTimeout time.Duration `yaml:"query_timeout" env:"QUERY_TIMEOUT"`
	Migrate      bool          `yaml:"migrate" env:"MIGRATE"` // apply embedded migrations on startup
}

type Email struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL" validate:"required,url"`
	Sender  string        `yaml:"sender" env:"SENDER" validate:"required,email"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type Auth struct {
	HashWorkers int `yaml:"hash_workers" env:"HASH_WORKERS"` // 0 means runtime.NumCPU()
}

type Newsletter struct {
	SanitizeHTML bool `yaml:"sanitize_html" env:"SANITIZE_HTML"`
}

type Private struct {
	PgPassword        string `yaml:"pg_password" env:"PG_PASSWORD"`
	EmailServerToken  string `yaml:"email_server_token" env:"EMAIL_SERVER_TOKEN" validate:"required"`
	EmailAccountToken string `yaml:"email_account_token" env:"EMAIL_ACCOUNT_TOKEN"`
}

func (c *Config) PgPassword() string {
	return c.Private.PgPassword
}

func (c *Config) EmailServerToken() string {
	return c.Private.EmailServerToken
}

func defaults() Public {
	return Public{
		HTTP: HTTP{
			Addr:            ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: Log{Level: "info"},
		Pg: Pg{
			Port:         5432,
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 10,
			QueryTimeout: 5 * time.Second,
		},
		Email: Email{Timeout: 10 * time.Second},
	}
}

func loadPath(configPath string, output interface{}, required bool) error {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml (required) and private.yaml (optional) from
// configFolder, then applies APP_* environment overrides. A .env file in the
// working directory is loaded first if present.
func Load(configFolder string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{Public: defaults()}
	if err := loadPath(path.Join(configFolder, "public.yaml"), &cfg.Public, true); err != nil {
		return nil, err
	}
	if err := loadPath(path.Join(configFolder, "private.yaml"), &cfg.Private, false); err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(&cfg.Public, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("can't parse environment: %w", err)
	}
	if err := env.ParseWithOptions(&cfg.Private, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("can't parse environment: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err)
	}
	return cfg
}
