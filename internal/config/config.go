package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Broker   BrokerConfig
	Mail     MailConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// DatabaseConfig holds the relational store configuration
type DatabaseConfig struct {
	DSN string
}

// AuthConfig points at the hosted auth service that issues user tokens
type AuthConfig struct {
	SupabaseURL string
	SupabaseKey string
}

// BrokerConfig configures the notification push channel. An empty URL disables it.
type BrokerConfig struct {
	URL      string
	Exchange string
}

// MailConfig configures the Gmail mirror of notifications. An empty
// credentials file disables it.
type MailConfig struct {
	CredentialsFile string
	TokenFile       string
	From            string
	AppBaseURL      string
}

type LogConfig struct {
	Level  string
	Format string
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Broker: BrokerConfig{
			Exchange: "notifications",
		},
		Mail: MailConfig{
			TokenFile:  "token.json",
			AppBaseURL: "http://localhost:3000",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env (if present) and overlays the environment on DefaultConfig.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("could not load .env file, using process environment")
	}

	cfg := DefaultConfig()
	setString(&cfg.Server.Port, "PORT")
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o)
			}
		}
	}
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Auth.SupabaseURL, "SUPABASE_URL")
	setString(&cfg.Auth.SupabaseKey, "SUPABASE_KEY")
	setString(&cfg.Broker.URL, "RABBITMQ_URL")
	setString(&cfg.Broker.Exchange, "NOTIFICATIONS_EXCHANGE")
	setString(&cfg.Mail.CredentialsFile, "GMAIL_CREDENTIALS_FILE")
	setString(&cfg.Mail.TokenFile, "GMAIL_TOKEN_FILE")
	setString(&cfg.Mail.From, "MAIL_FROM")
	setString(&cfg.Mail.AppBaseURL, "APP_BASE_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.SupabaseURL == "" || c.Auth.SupabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.Broker.URL != "" && c.Broker.Exchange == "" {
		return fmt.Errorf("NOTIFICATIONS_EXCHANGE cannot be empty when RABBITMQ_URL is set")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

// ConfigureLogger applies the log section to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if c.Log.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
