package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/ginilab/go-desforecaster/dataset"
)

// EnvPrefix is the prefix of every environment variable read into the configuration
const EnvPrefix = "GINI"

// EnvConfigFile names an optional yaml file merged beneath the environment
const EnvConfigFile = "GINI_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Forecast ForecastConfig `yaml:"forecast" envconfig:"FORECAST"`
}

// ServerConfig contains HTTP server configuration. Leaf fields are keyed by split_words
// rather than an envconfig tag, a tagged field also falls back to the unprefixed variable
// which would read PATH or PORT straight from the process environment.
type ServerConfig struct {
	Host            string          `yaml:"host"`
	Port            int             `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" split_words:"true" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" split_words:"true" default:"30s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" split_words:"true" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" split_words:"true" default:"10s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" split_words:"true"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" default:"true"`
	RPS     float64 `yaml:"rps" default:"20" validate:"gt=0"`
	Burst   int     `yaml:"burst" default:"40" validate:"gte=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" default:"logs/dashboard.log"`
}

// DataConfig points at the workbook and selects the analysed columns
type DataConfig struct {
	Path            string   `yaml:"path" default:"Income Inequality in South Africa_Dataset.xlsx" validate:"required"`
	Sheet           string   `yaml:"sheet"`
	SelectedColumns []string `yaml:"selected_columns" split_words:"true"`
}

// ForecastConfig holds the dashboard defaults for the smoothing controls
type ForecastConfig struct {
	DefaultAlpha   float64 `yaml:"default_alpha" split_words:"true" default:"0.6" validate:"gte=0.01,lte=0.99"`
	DefaultHorizon int     `yaml:"default_horizon" split_words:"true" default:"5" validate:"gte=1,lte=20"`
}

// Load reads an optional .env file, then the environment and finally fills anything the
// environment left unset from the yaml file named by GINI_CONFIG_FILE.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := loadFromEnv()
	if err != nil {
		return nil, err
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		fileConfig, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg, setInEnv)
	}

	if len(cfg.Data.SelectedColumns) == 0 {
		cfg.Data.SelectedColumns = append([]string(nil), dataset.DefaultSelectedColumns...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config from env: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	// yaml leaves absent keys untouched, so a file without rate_limit.enabled keeps the default
	cfg := Config{Server: ServerConfig{RateLimit: RateLimitConfig{Enabled: true}}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setInEnv(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + key)
	return ok
}

// mergeConfigs overlays file values onto the env config wherever the variable was not set
// explicitly, env takes precedence
func mergeConfigs(fileConfig, envConfig Config, isSet func(key string) bool) Config {
	str := func(key string, dst *string, src string) {
		if src != "" && !isSet(key) {
			*dst = src
		}
	}
	num := func(key string, dst *int, src int) {
		if src != 0 && !isSet(key) {
			*dst = src
		}
	}
	dur := func(key string, dst *time.Duration, src time.Duration) {
		if src != 0 && !isSet(key) {
			*dst = src
		}
	}
	flt := func(key string, dst *float64, src float64) {
		if src != 0 && !isSet(key) {
			*dst = src
		}
	}

	str("SERVER_HOST", &envConfig.Server.Host, fileConfig.Server.Host)
	num("SERVER_PORT", &envConfig.Server.Port, fileConfig.Server.Port)
	dur("SERVER_READ_TIMEOUT", &envConfig.Server.ReadTimeout, fileConfig.Server.ReadTimeout)
	dur("SERVER_WRITE_TIMEOUT", &envConfig.Server.WriteTimeout, fileConfig.Server.WriteTimeout)
	dur("SERVER_IDLE_TIMEOUT", &envConfig.Server.IdleTimeout, fileConfig.Server.IdleTimeout)
	dur("SERVER_SHUTDOWN_TIMEOUT", &envConfig.Server.ShutdownTimeout, fileConfig.Server.ShutdownTimeout)
	if !isSet("SERVER_RATE_LIMIT_ENABLED") {
		envConfig.Server.RateLimit.Enabled = fileConfig.Server.RateLimit.Enabled
	}
	flt("SERVER_RATE_LIMIT_RPS", &envConfig.Server.RateLimit.RPS, fileConfig.Server.RateLimit.RPS)
	num("SERVER_RATE_LIMIT_BURST", &envConfig.Server.RateLimit.Burst, fileConfig.Server.RateLimit.Burst)

	str("LOGGING_LEVEL", &envConfig.Logging.Level, fileConfig.Logging.Level)
	str("LOGGING_FORMAT", &envConfig.Logging.Format, fileConfig.Logging.Format)
	str("LOGGING_OUTPUT", &envConfig.Logging.Output, fileConfig.Logging.Output)
	str("LOGGING_FILE_PATH", &envConfig.Logging.FilePath, fileConfig.Logging.FilePath)

	str("DATA_PATH", &envConfig.Data.Path, fileConfig.Data.Path)
	str("DATA_SHEET", &envConfig.Data.Sheet, fileConfig.Data.Sheet)
	if len(fileConfig.Data.SelectedColumns) > 0 && !isSet("DATA_SELECTED_COLUMNS") {
		envConfig.Data.SelectedColumns = fileConfig.Data.SelectedColumns
	}

	flt("FORECAST_DEFAULT_ALPHA", &envConfig.Forecast.DefaultAlpha, fileConfig.Forecast.DefaultAlpha)
	num("FORECAST_DEFAULT_HORIZON", &envConfig.Forecast.DefaultHorizon, fileConfig.Forecast.DefaultHorizon)

	return envConfig
}

// Validate checks the field bounds of the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if strings.TrimSpace(c.Data.Path) == "" {
		return errors.New("data path is empty")
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadOptions returns the workbook options for the configured data source
func (c *Config) LoadOptions() *dataset.LoadOptions {
	opt := dataset.DefaultLoadOptions()
	opt.Sheet = c.Data.Sheet
	return opt
}
