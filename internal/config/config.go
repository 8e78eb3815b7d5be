package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"wellbalance/internal/db"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultSQLitePath = "wellbalance.db"
	defaultChatModel  = "gemini-2.5-flash"
)

type Config struct {
	Env            string
	Port           string
	DBDriver       string
	DatabaseURL    string
	JWTSecret      string
	GoogleAPIKey   string
	ChatModel      string
	WeatherAPIKey  string
	WeatherBaseURL string
	CORSOrigins    []string
}

func (c Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// ChatEnabled reports whether a language model can be constructed.
func (c Config) ChatEnabled() bool { return c.GoogleAPIKey != "" }

// Flags are the server flags; each one can also be set through its env var.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "env", Value: EnvProduction, EnvVars: []string{"APP_ENV"}, Usage: "development or production"},
		&cli.StringFlag{Name: "port", Value: "8080", EnvVars: []string{"PORT"}},
		&cli.StringFlag{Name: "db-driver", Value: db.DriverPostgres, EnvVars: []string{"DB_DRIVER"}, Usage: "pgx or sqlite"},
		&cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"}, Usage: "postgres DSN or sqlite file path"},
		&cli.StringFlag{Name: "jwt-secret", EnvVars: []string{"JWT_SECRET"}},
		&cli.StringFlag{Name: "google-api-key", EnvVars: []string{"GOOGLE_API_KEY"}, Usage: "enables the chat assistant"},
		&cli.StringFlag{Name: "chat-model", Value: defaultChatModel, EnvVars: []string{"CHAT_MODEL"}},
		&cli.StringFlag{Name: "openweather-api-key", EnvVars: []string{"OPENWEATHER_API_KEY"}},
		&cli.StringFlag{Name: "openweather-base-url", EnvVars: []string{"OPENWEATHER_BASE_URL"}},
		&cli.StringSliceFlag{Name: "cors-allowed-origins", Value: cli.NewStringSlice("*"), EnvVars: []string{"CORS_ALLOWED_ORIGINS"}},
	}
}

// FromContext reads and validates the flags parsed into c.
func FromContext(c *cli.Context) (Config, error) {
	cfg := Config{
		Env:            strings.ToLower(strings.TrimSpace(c.String("env"))),
		Port:           strings.TrimSpace(c.String("port")),
		DBDriver:       strings.TrimSpace(c.String("db-driver")),
		DatabaseURL:    strings.TrimSpace(c.String("database-url")),
		JWTSecret:      c.String("jwt-secret"),
		GoogleAPIKey:   strings.TrimSpace(c.String("google-api-key")),
		ChatModel:      strings.TrimSpace(c.String("chat-model")),
		WeatherAPIKey:  strings.TrimSpace(c.String("openweather-api-key")),
		WeatherBaseURL: strings.TrimSpace(c.String("openweather-base-url")),
	}
	for _, o := range c.StringSlice("cors-allowed-origins") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	// An env var that is present but empty still overrides a flag default.
	if c.Env == "" {
		c.Env = EnvProduction
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.DBDriver == "" {
		c.DBDriver = db.DriverPostgres
	}
	if c.ChatModel == "" {
		c.ChatModel = defaultChatModel
	}
	switch c.DBDriver {
	case db.DriverSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = defaultSQLitePath
		}
	case db.DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the pgx driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("unsupported APP_ENV %q", c.Env))
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	return errors.Join(errs...)
}
