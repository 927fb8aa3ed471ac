package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	MinWorkers = 1
	MaxWorkers = 16
)

// DefaultEnvFiles are loaded in order when present.
var DefaultEnvFiles = []string{".env", ".env.local"}

type DatabaseOptions struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"leasing"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

func (d DatabaseOptions) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type ImportOptions struct {
	Workers               int    `env:"IMPORT_WORKERS" envDefault:"4"`
	DefaultCountry        string `env:"IMPORT_DEFAULT_COUNTRY" envDefault:"BE"`
	DefaultDurationMonths int    `env:"IMPORT_DEFAULT_DURATION_MONTHS" envDefault:"36"`
}

type MetricsOptions struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

type Config struct {
	Database DatabaseOptions
	Import   ImportOptions
	Metrics  MetricsOptions

	Port          int      `env:"PORT" envDefault:"8080"`
	CORSOrigins   []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string   `env:"LOG_FORMAT" envDefault:"text"`
	MaxUploadSize int64    `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
}

// LoadEnv loads the env files that exist and returns how many were loaded.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads env files, parses the environment and validates the result.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the configuration and rejects values the service
// cannot run with. Import workers are clamped rather than rejected.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT=%q (expected text|json)", c.LogFormat)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT=%d", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("invalid MAX_UPLOAD_SIZE=%d (must be positive)", c.MaxUploadSize)
	}
	if c.Import.DefaultDurationMonths <= 0 {
		return fmt.Errorf("invalid IMPORT_DEFAULT_DURATION_MONTHS=%d (must be positive)", c.Import.DefaultDurationMonths)
	}

	c.Import.DefaultCountry = strings.ToUpper(strings.TrimSpace(c.Import.DefaultCountry))
	if c.Import.DefaultCountry == "" {
		return fmt.Errorf("IMPORT_DEFAULT_COUNTRY must not be empty")
	}

	c.Import.Workers = min(max(c.Import.Workers, MinWorkers), MaxWorkers)

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("invalid METRICS_PATH=%q (must start with /)", c.Metrics.Path)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
