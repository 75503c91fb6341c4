package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
	Forecast ForecastConfig `yaml:"forecast" envconfig:"FORECAST"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration. Setting RPS to a
// negative value disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" envconfig:"RPS"`
	Burst int     `yaml:"burst" envconfig:"BURST"`
}

// Enabled reports whether rate limiting is active.
func (c RateLimitConfig) Enabled() bool { return c.RPS > 0 }

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// UploadConfig bounds what the analyze endpoints accept
type UploadConfig struct {
	MaxBytes          int64    `yaml:"max_bytes" envconfig:"MAX_BYTES"`
	AllowedExtensions []string `yaml:"allowed_extensions" envconfig:"ALLOWED_EXTENSIONS"`
	MaxBatchFiles     int      `yaml:"max_batch_files" envconfig:"MAX_BATCH_FILES"`
	BatchConcurrency  int      `yaml:"batch_concurrency" envconfig:"BATCH_CONCURRENCY"`
}

// ForecastConfig controls the synthetic forecast horizons
type ForecastConfig struct {
	ShortDays  int `yaml:"short_days" envconfig:"SHORT_DAYS"`
	MediumDays int `yaml:"medium_days" envconfig:"MEDIUM_DAYS"`
	LongDays   int `yaml:"long_days" envconfig:"LONG_DAYS"`
}

// Load loads configuration from environment variables, overlaid on an
// optional YAML config file.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom loads configuration in three layers: YAML file (if present),
// then environment variables, then defaults for anything still unset.
// Environment always wins over the file.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("TABCAST", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("TABCAST_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// applyDefaults fills any field left at its zero value by both the file
// and the environment.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"http://localhost:8080"}
	}
	if c.Security.RateLimit.RPS == 0 {
		c.Security.RateLimit.RPS = 20
	}
	if c.Security.RateLimit.Burst == 0 {
		c.Security.RateLimit.Burst = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	if c.Upload.MaxBytes == 0 {
		c.Upload.MaxBytes = 10 << 20
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = []string{"csv", "xlsx", "xls"}
	}
	if c.Upload.MaxBatchFiles == 0 {
		c.Upload.MaxBatchFiles = 10
	}
	if c.Upload.BatchConcurrency == 0 {
		c.Upload.BatchConcurrency = 4
	}
	if c.Forecast.ShortDays == 0 {
		c.Forecast.ShortDays = 7
	}
	if c.Forecast.MediumDays == 0 {
		c.Forecast.MediumDays = 30
	}
	if c.Forecast.LongDays == 0 {
		c.Forecast.LongDays = 90
	}
}

// validate checks configuration invariants after loading
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Upload.MaxBytes < 0 {
		return fmt.Errorf("upload max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Upload.MaxBatchFiles < 1 {
		return fmt.Errorf("upload max_batch_files must be at least 1, got %d", c.Upload.MaxBatchFiles)
	}
	if c.Upload.BatchConcurrency < 1 {
		return fmt.Errorf("upload batch_concurrency must be at least 1, got %d", c.Upload.BatchConcurrency)
	}
	for _, days := range []int{c.Forecast.ShortDays, c.Forecast.MediumDays, c.Forecast.LongDays} {
		if days < 1 || days > 365 {
			return fmt.Errorf("forecast horizon out of range: %d days", days)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	return nil
}

// ExtensionAllowed reports whether the upload config accepts the given
// lowercased extension.
func (c *UploadConfig) ExtensionAllowed(ext string) bool {
	for _, allowed := range c.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}
