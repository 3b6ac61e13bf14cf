package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system:
// the dashboard HTTP server, the ledger API it talks to, the UI presentation and the
// Postgres database used by the ledger service.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	RATE_LIMIT_PER_MINUTE=120
//	REQUEST_TIMEOUT=10s
//	LEDGER_PORT=8081
//	LEDGER_API_URL=http://localhost:8081
//	LEDGER_API_TIMEOUT=15s
//	UI_LANG=en
//	UI_THEME=dark
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=postgres
//	POSTGRES_PASSWORD=postgres
//	POSTGRES_DB=tradedash
//	POSTGRES_SSLMODE=disable
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Ledger   LedgerConfig   // Ledger API client / service settings
	UI       UIConfig       // Dashboard presentation
	Postgres PostgresConfig // PostgreSQL connection settings (ledger service only)
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port           string        // Dashboard listen port (e.g., "8080")
	UploadMaxBytes int64         // Largest multipart body the dashboard accepts
	RateLimit      int           // Requests per minute per client IP, 0 disables
	RequestTimeout time.Duration // Deadline put on every request context
}

// LedgerConfig describes where the ledger API lives and how long a single call may take.
type LedgerConfig struct {
	Port    string        // Listen port when running the ledger service itself
	BaseURL string        // Base URL the dashboard uses to reach the ledger API
	Timeout time.Duration // Per-request timeout of the ledger client
}

// UIConfig selects the message catalog and page theme.
type UIConfig struct {
	Lang  string
	Theme string
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables, then validates it.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
func LoadConfig() error {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("UPLOAD_MAX_BYTES", 32<<20)
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	viper.SetDefault("REQUEST_TIMEOUT", "10s")

	viper.SetDefault("LEDGER_PORT", "8081")
	viper.SetDefault("LEDGER_API_URL", "http://localhost:8081")
	viper.SetDefault("LEDGER_API_TIMEOUT", "15s")

	viper.SetDefault("UI_LANG", "en")
	viper.SetDefault("UI_THEME", "dark")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "tradedash")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			UploadMaxBytes: viper.GetInt64("UPLOAD_MAX_BYTES"),
			RateLimit:      viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			RequestTimeout: viper.GetDuration("REQUEST_TIMEOUT"),
		},
		Ledger: LedgerConfig{
			Port:    viper.GetString("LEDGER_PORT"),
			BaseURL: strings.TrimRight(viper.GetString("LEDGER_API_URL"), "/"),
			Timeout: viper.GetDuration("LEDGER_API_TIMEOUT"),
		},
		UI: UIConfig{
			Lang:  strings.ToLower(viper.GetString("UI_LANG")),
			Theme: strings.ToLower(viper.GetString("UI_THEME")),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	return AppConfig.Validate()
}

// DSN builds the PostgreSQL connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// Validate reports every missing or malformed setting at once.
//
// Postgres settings are validated as well even though only the ledger
// service uses them; defaults make them present in every environment.
func (c Config) Validate() error {
	var problems []string

	if c.Server.Port == "" {
		problems = append(problems, "SERVER_PORT is required")
	}
	if c.Server.UploadMaxBytes <= 0 {
		problems = append(problems, "UPLOAD_MAX_BYTES must be positive")
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.Server.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be a positive duration")
	}
	if c.Ledger.Port == "" {
		problems = append(problems, "LEDGER_PORT is required")
	}
	if c.Ledger.BaseURL == "" {
		problems = append(problems, "LEDGER_API_URL is required")
	} else if u, err := url.Parse(c.Ledger.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("LEDGER_API_URL %q must be an absolute http(s) URL", c.Ledger.BaseURL))
	}
	if c.Ledger.Timeout <= 0 {
		problems = append(problems, "LEDGER_API_TIMEOUT must be a positive duration")
	}
	if c.Postgres.Host == "" {
		problems = append(problems, "POSTGRES_HOST is required")
	}
	if c.Postgres.Port == 0 {
		problems = append(problems, "POSTGRES_PORT is required")
	}
	if c.Postgres.User == "" {
		problems = append(problems, "POSTGRES_USER is required")
	}
	if c.Postgres.DBName == "" {
		problems = append(problems, "POSTGRES_DB is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
