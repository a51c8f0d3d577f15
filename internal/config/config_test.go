package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginilab/go-desforecaster/dataset"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.Nil(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 20.0, cfg.Server.RateLimit.RPS)
	assert.Equal(t, 40, cfg.Server.RateLimit.Burst)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "Income Inequality in South Africa_Dataset.xlsx", cfg.Data.Path)
	assert.Equal(t, dataset.DefaultSelectedColumns, cfg.Data.SelectedColumns)
	assert.Equal(t, 0.6, cfg.Forecast.DefaultAlpha)
	assert.Equal(t, 5, cfg.Forecast.DefaultHorizon)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GINI_SERVER_PORT", "9090")
	t.Setenv("GINI_SERVER_READ_TIMEOUT", "5s")
	t.Setenv("GINI_SERVER_RATE_LIMIT_RPS", "2.5")
	t.Setenv("GINI_LOGGING_FORMAT", "text")
	t.Setenv("GINI_DATA_PATH", "/data/gini.xlsx")
	t.Setenv("GINI_DATA_SELECTED_COLUMNS", "gini_disp,gdp")
	t.Setenv("GINI_FORECAST_DEFAULT_ALPHA", "0.3")
	t.Setenv("GINI_FORECAST_DEFAULT_HORIZON", "10")

	cfg, err := Load()
	require.Nil(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2.5, cfg.Server.RateLimit.RPS)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "/data/gini.xlsx", cfg.Data.Path)
	assert.Equal(t, []string{"gini_disp", "gdp"}, cfg.Data.SelectedColumns)
	assert.Equal(t, 0.3, cfg.Forecast.DefaultAlpha)
	assert.Equal(t, 10, cfg.Forecast.DefaultHorizon)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  host: 127.0.0.1
  port: 7070
  shutdown_timeout: 3s
logging:
  level: debug
  format: text
data:
  path: file.xlsx
  sheet: Data
  selected_columns: [gini_disp]
forecast:
  default_alpha: 0.45
`)
	t.Setenv(EnvConfigFile, path)
	t.Setenv("GINI_LOGGING_LEVEL", "warn")

	cfg, err := Load()
	require.Nil(t, err)

	assert.Equal(t, "127.0.0.1:7070", cfg.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	// env takes precedence over the file
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "file.xlsx", cfg.Data.Path)
	assert.Equal(t, "Data", cfg.Data.Sheet)
	assert.Equal(t, []string{"gini_disp"}, cfg.Data.SelectedColumns)
	assert.Equal(t, 0.45, cfg.Forecast.DefaultAlpha)
	assert.Equal(t, 5, cfg.Forecast.DefaultHorizon)
	assert.True(t, cfg.Server.RateLimit.Enabled)

	opt := cfg.LoadOptions()
	assert.Equal(t, "Data", opt.Sheet)
	assert.Equal(t, dataset.ColumnYear, opt.YearColumn)
}

func TestLoadRateLimitEnabled(t *testing.T) {
	testData := map[string]struct {
		file     string
		env      map[string]string
		expected bool
	}{
		"disabled in file": {
			file:     "server:\n  rate_limit:\n    enabled: false\n",
			expected: false,
		},
		"enabled in file": {
			file:     "server:\n  rate_limit:\n    enabled: true\n",
			expected: true,
		},
		"omitted in file": {
			file:     "server:\n  rate_limit:\n    rps: 5\n",
			expected: true,
		},
		"env overrides file": {
			file:     "server:\n  rate_limit:\n    enabled: false\n",
			env:      map[string]string{"GINI_SERVER_RATE_LIMIT_ENABLED": "true"},
			expected: true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			t.Setenv(EnvConfigFile, writeConfigFile(t, td.file))
			for k, v := range td.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			require.Nil(t, err)
			assert.Equal(t, td.expected, cfg.Server.RateLimit.Enabled)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	testData := map[string]struct {
		env map[string]string
	}{
		"non numeric port": {
			env: map[string]string{"GINI_SERVER_PORT": "abc"},
		},
		"port out of range": {
			env: map[string]string{"GINI_SERVER_PORT": "70000"},
		},
		"alpha out of range": {
			env: map[string]string{"GINI_FORECAST_DEFAULT_ALPHA": "1.5"},
		},
		"horizon out of range": {
			env: map[string]string{"GINI_FORECAST_DEFAULT_HORIZON": "50"},
		},
		"unknown log format": {
			env: map[string]string{"GINI_LOGGING_FORMAT": "xml"},
		},
		"unknown log output": {
			env: map[string]string{"GINI_LOGGING_OUTPUT": "syslog"},
		},
		"missing config file": {
			env: map[string]string{EnvConfigFile: filepath.Join(os.TempDir(), "does-not-exist", "config.yaml")},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			for k, v := range td.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.NotNil(t, err)
		})
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	t.Setenv(EnvConfigFile, writeConfigFile(t, "server: [port"))
	_, err := Load()
	assert.NotNil(t, err)
}

func TestMergeConfigs(t *testing.T) {
	env := Config{
		Server: ServerConfig{Port: 8080, ReadTimeout: time.Second, RateLimit: RateLimitConfig{Enabled: true}},
		Data:   DataConfig{Path: "env.xlsx"},
	}
	file := Config{
		Server: ServerConfig{Port: 7070, ReadTimeout: 2 * time.Second, RateLimit: RateLimitConfig{Enabled: false}},
		Data:   DataConfig{Path: "file.xlsx", SelectedColumns: []string{"gdp"}},
	}

	setKeys := map[string]bool{"SERVER_PORT": true}
	merged := mergeConfigs(file, env, func(key string) bool { return setKeys[key] })

	assert.Equal(t, 8080, merged.Server.Port)
	assert.Equal(t, 2*time.Second, merged.Server.ReadTimeout)
	assert.Equal(t, "file.xlsx", merged.Data.Path)
	assert.Equal(t, []string{"gdp"}, merged.Data.SelectedColumns)
	assert.False(t, merged.Server.RateLimit.Enabled)

	setKeys["SERVER_RATE_LIMIT_ENABLED"] = true
	merged = mergeConfigs(file, env, func(key string) bool { return setKeys[key] })
	assert.True(t, merged.Server.RateLimit.Enabled)
}
