package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursery/coursery/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.NotNil(t, cfg)

	// App defaults
	assert.Equal(t, "coursery", cfg.App.Name)
	assert.Equal(t, config.EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.LogFormat)

	// HTTP server defaults
	assert.Equal(t, config.DefaultHost, cfg.HTTPServer.Host)
	assert.Equal(t, config.DefaultPort, cfg.HTTPServer.Port)
	assert.Equal(t, config.DefaultReadTimeout, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, config.DefaultWriteTimeout, cfg.HTTPServer.WriteTimeout)
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.HTTPServer.ShutdownTimeout)
	assert.Equal(t, config.DefaultBodyLimit, cfg.HTTPServer.BodyLimit)

	// Event bus defaults
	assert.Equal(t, config.DefaultRetryMaxAttempts, cfg.EventBus.RetryMaxAttempts)
	assert.Equal(t, config.DefaultRetryInitialBackoff, cfg.EventBus.RetryInitialBackoff)
	assert.Equal(t, config.DefaultRetryMaxBackoff, cfg.EventBus.RetryMaxBackoff)
	assert.Equal(t, config.DefaultDeadLetterCapacity, cfg.EventBus.DeadLetterCapacity)

	// Rate limit defaults
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, config.DefaultRateLimitRPS, cfg.RateLimit.RPS)
	assert.Equal(t, config.DefaultRateLimitWindow, cfg.RateLimit.Window)
	assert.Equal(t, config.DefaultRateLimitBurst, cfg.RateLimit.Burst)

	// Bootstrap defaults
	assert.True(t, cfg.Bootstrap.SeedDemo)

	// Worker defaults
	assert.Equal(t, config.DefaultAccessSweepInterval, cfg.Workers.AccessSweepInterval)
	assert.Equal(t, config.DefaultConsistencyInterval, cfg.Workers.ConsistencyInterval)
	assert.Equal(t, config.DefaultConsistencySample, cfg.Workers.ConsistencySample)
}

func TestHTTPServerConfig_Address(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		expected string
	}{
		{
			name:     "default address",
			host:     "0.0.0.0",
			port:     8080,
			expected: "0.0.0.0:8080",
		},
		{
			name:     "localhost",
			host:     "localhost",
			port:     3000,
			expected: "localhost:3000",
		},
		{
			name:     "custom host and port",
			host:     "192.168.1.100",
			port:     9090,
			expected: "192.168.1.100:9090",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.HTTPServerConfig{
				Host: tt.host,
				Port: tt.port,
			}
			assert.Equal(t, tt.expected, cfg.Address())
		})
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := config.DefaultConfig()
	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"negative port", -1},
		{"zero port", 0},
		{"port too high", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.HTTPServer.Port = tt.port
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "http_server.port")
		})
	}
}

func TestConfig_Validate_InvalidTimeouts(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		errMsg string
	}{
		{
			name: "negative read timeout",
			modify: func(c *config.Config) {
				c.HTTPServer.ReadTimeout = -1 * time.Second
			},
			errMsg: "http_server.read_timeout must be positive",
		},
		{
			name: "zero write timeout",
			modify: func(c *config.Config) {
				c.HTTPServer.WriteTimeout = 0
			},
			errMsg: "http_server.write_timeout must be positive",
		},
		{
			name: "zero shutdown timeout",
			modify: func(c *config.Config) {
				c.HTTPServer.ShutdownTimeout = 0
			},
			errMsg: "http_server.shutdown_timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Validate_EventBus(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		errMsg string
	}{
		{
			name: "zero retry attempts",
			modify: func(c *config.Config) {
				c.EventBus.RetryMaxAttempts = 0
			},
			errMsg: "event_bus.retry_max_attempts must be positive",
		},
		{
			name: "zero initial backoff",
			modify: func(c *config.Config) {
				c.EventBus.RetryInitialBackoff = 0
			},
			errMsg: "event_bus.retry_initial_backoff must be positive",
		},
		{
			name: "max backoff below initial backoff",
			modify: func(c *config.Config) {
				c.EventBus.RetryInitialBackoff = time.Second
				c.EventBus.RetryMaxBackoff = 100 * time.Millisecond
			},
			errMsg: "event_bus.retry_max_backoff must be >= retry_initial_backoff",
		},
		{
			name: "zero dead letter capacity",
			modify: func(c *config.Config) {
				c.EventBus.DeadLetterCapacity = 0
			},
			errMsg: "event_bus.dead_letter_capacity must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Validate_RateLimit(t *testing.T) {
	t.Run("disabled skips validation", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.RateLimit.Enabled = false
		cfg.RateLimit.RPS = 0
		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("enabled requires positive rps", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RPS = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_limit.rps")
	})

	t.Run("enabled requires positive window", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Window = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_limit.window")
	})

	t.Run("negative burst rejected", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Burst = -1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_limit.burst")
	})
}

func TestConfig_Validate_Workers(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		errMsg string
	}{
		{
			name: "zero access sweep interval",
			modify: func(c *config.Config) {
				c.Workers.AccessSweepInterval = 0
			},
			errMsg: "workers.access_sweep_interval must be positive",
		},
		{
			name: "zero consistency interval",
			modify: func(c *config.Config) {
				c.Workers.ConsistencyInterval = 0
			},
			errMsg: "workers.consistency_interval must be positive",
		},
		{
			name: "zero consistency sample",
			modify: func(c *config.Config) {
				c.Workers.ConsistencySample = 0
			},
			errMsg: "workers.consistency_sample must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.App.LogLevel = "invalid"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigInvalid)
}

func TestConfig_Validate_InvalidLogFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.App.LogFormat = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigInvalid)
}

func TestConfig_Validate_InvalidEnvironment(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.App.Environment = "qa"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigInvalid)
}

func TestConfig_Validate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error", "DEBUG", "INFO", "WARN", "ERROR"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.App.LogLevel = level
			err := cfg.Validate()
			assert.NoError(t, err)
		})
	}
}

func TestConfig_Environments(t *testing.T) {
	tests := []struct {
		name          string
		env           config.Environment
		isDevelopment bool
		isProduction  bool
	}{
		{"development", config.EnvDevelopment, true, false},
		{"staging", config.EnvStaging, false, false},
		{"production", config.EnvProduction, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.App.Environment = tt.env
			assert.Equal(t, tt.isDevelopment, cfg.IsDevelopment())
			assert.Equal(t, tt.isProduction, cfg.IsProduction())
		})
	}
}

func TestLoadFromPath_ValidYAML(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
app:
  name: "coursery-test"
  environment: "staging"
  log_level: "debug"
  log_format: "text"

http_server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 45s
  write_timeout: 45s
  shutdown_timeout: 15s
  body_limit: "4M"

event_bus:
  retry_max_attempts: 5
  retry_initial_backoff: 200ms
  retry_max_backoff: 10s
  dead_letter_capacity: 500

rate_limit:
  enabled: true
  rps: 50
  window: 30s
  burst: 5

bootstrap:
  seed_demo: false

workers:
  access_sweep_interval: 2m
  consistency_interval: 10m
  consistency_sample: 10
`
	err := os.WriteFile(configPath, []byte(configContent), 0o644)
	require.NoError(t, err)

	cfg, err := config.LoadFromPath(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify loaded values
	assert.Equal(t, "coursery-test", cfg.App.Name)
	assert.Equal(t, config.EnvStaging, cfg.App.Environment)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "text", cfg.App.LogFormat)

	assert.Equal(t, "127.0.0.1", cfg.HTTPServer.Host)
	assert.Equal(t, 9090, cfg.HTTPServer.Port)
	assert.Equal(t, 45*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, "4M", cfg.HTTPServer.BodyLimit)

	assert.Equal(t, 5, cfg.EventBus.RetryMaxAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.EventBus.RetryInitialBackoff)
	assert.Equal(t, 10*time.Second, cfg.EventBus.RetryMaxBackoff)
	assert.Equal(t, 500, cfg.EventBus.DeadLetterCapacity)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50, cfg.RateLimit.RPS)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.Burst)

	assert.False(t, cfg.Bootstrap.SeedDemo)

	assert.Equal(t, 2*time.Minute, cfg.Workers.AccessSweepInterval)
	assert.Equal(t, 10*time.Minute, cfg.Workers.ConsistencyInterval)
	assert.Equal(t, 10, cfg.Workers.ConsistencySample)
}

func TestLoadFromPath_NonExistent(t *testing.T) {
	cfg, err := config.LoadFromPath("/non/existent/path/config.yaml")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidContent := `
http_server:
  host: "localhost"
  port: this-is-not-a-number
`
	err := os.WriteFile(configPath, []byte(invalidContent), 0o644)
	require.NoError(t, err)

	cfg, err := config.LoadFromPath(configPath)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoader_LoadFromEnv(t *testing.T) {
	// Set test environment variables using t.Setenv (auto-cleanup)
	t.Setenv("HTTP_HOST", "env-host")
	t.Setenv("HTTP_PORT", "3333")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("BOOTSTRAP_SEED_DEMO", "false")
	t.Setenv("EVENTBUS_DEAD_LETTER_CAPACITY", "250")

	// Create a minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	minimalConfig := `
http_server:
  host: "file-host"
  port: 8080
`
	err := os.WriteFile(configPath, []byte(minimalConfig), 0o644)
	require.NoError(t, err)

	cfg, err := config.LoadFromPath(configPath)
	require.NoError(t, err)

	// Env vars should override file values
	assert.Equal(t, "env-host", cfg.HTTPServer.Host)
	assert.Equal(t, 3333, cfg.HTTPServer.Port)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.False(t, cfg.Bootstrap.SeedDemo)
	assert.Equal(t, 250, cfg.EventBus.DeadLetterCapacity)
}

func TestLoader_LoadFromEnv_Duration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "2m30s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute+30*time.Second, cfg.HTTPServer.ReadTimeout)
}

func TestLoader_LoadFromEnv_InvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	cfg, err := config.Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoader_ConfigPathEnvVar(t *testing.T) {
	// Create a config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.yaml")
	configContent := `
http_server:
  host: "config-path-host"
  port: 7777
`
	err := os.WriteFile(configPath, []byte(configContent), 0o644)
	require.NoError(t, err)

	t.Setenv("CONFIG_PATH", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "config-path-host", cfg.HTTPServer.Host)
	assert.Equal(t, 7777, cfg.HTTPServer.Port)
}

func TestLoader_WithConfigPaths(t *testing.T) {
	loader := config.NewLoader()
	customPaths := []string{"/custom/path1.yaml", "/custom/path2.yaml"}
	loader.WithConfigPaths(customPaths)

	// We can't directly check the paths since they are private,
	// but we can verify the method doesn't panic
	assert.NotNil(t, loader)
}

func TestNewLoader(t *testing.T) {
	loader := config.NewLoader()
	assert.NotNil(t, loader)
}
