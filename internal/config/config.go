// Package config provides configuration loading and validation for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration constants.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "2M"

	DefaultRetryMaxAttempts    = 3
	DefaultRetryInitialBackoff = 100 * time.Millisecond
	DefaultRetryMaxBackoff     = 5 * time.Second
	DefaultDeadLetterCapacity  = 1000

	DefaultRateLimitRPS    = 100
	DefaultRateLimitWindow = time.Minute
	DefaultRateLimitBurst  = 10

	DefaultAccessSweepInterval = 1 * time.Minute
	DefaultConsistencyInterval = 5 * time.Minute
	DefaultConsistencySample   = 25
)

// Environment identifies the deployment environment.
type Environment string

// Recognized deployment environments.
const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete application configuration.
type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	EventBus   EventBusConfig   `yaml:"event_bus"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Bootstrap  BootstrapConfig  `yaml:"bootstrap"`
	Workers    WorkersConfig    `yaml:"workers"`
}

// AppConfig holds application-level configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type AppConfig struct {
	Name        string      `yaml:"name" env:"APP_NAME"`
	Environment Environment `yaml:"environment" env:"APP_ENVIRONMENT"`
	LogLevel    string      `yaml:"log_level" env:"APP_LOG_LEVEL"`   // debug | info | warn | error
	LogFormat   string      `yaml:"log_format" env:"APP_LOG_FORMAT"` // json | text
}

// HTTPServerConfig holds HTTP server configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type HTTPServerConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST"`
	Port            int           `yaml:"port" env:"HTTP_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	BodyLimit       string        `yaml:"body_limit" env:"HTTP_BODY_LIMIT"`
}

// Address returns the full server address (host:port).
func (c HTTPServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EventBusConfig holds in-process event bus configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type EventBusConfig struct {
	RetryMaxAttempts    int           `yaml:"retry_max_attempts" env:"EVENTBUS_RETRY_MAX_ATTEMPTS"`
	RetryInitialBackoff time.Duration `yaml:"retry_initial_backoff" env:"EVENTBUS_RETRY_INITIAL_BACKOFF"`
	RetryMaxBackoff     time.Duration `yaml:"retry_max_backoff" env:"EVENTBUS_RETRY_MAX_BACKOFF"`
	DeadLetterCapacity  int           `yaml:"dead_letter_capacity" env:"EVENTBUS_DEAD_LETTER_CAPACITY"`
}

// RateLimitConfig holds HTTP rate limiting configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RPS     int           `yaml:"rps" env:"RATE_LIMIT_RPS"`
	Window  time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW"`
	Burst   int           `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// BootstrapConfig controls demo data seeding at startup.
type BootstrapConfig struct {
	SeedDemo bool `yaml:"seed_demo" env:"BOOTSTRAP_SEED_DEMO"`
}

// WorkersConfig holds background worker configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type WorkersConfig struct {
	AccessSweepInterval time.Duration `yaml:"access_sweep_interval" env:"WORKERS_ACCESS_SWEEP_INTERVAL"`
	ConsistencyInterval time.Duration `yaml:"consistency_interval" env:"WORKERS_CONSISTENCY_INTERVAL"`
	ConsistencySample   int           `yaml:"consistency_sample" env:"WORKERS_CONSISTENCY_SAMPLE"`
}

// Configuration errors.
var (
	ErrConfigNotFound     = errors.New("configuration file not found")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrInvalidDuration    = errors.New("invalid duration format")
	ErrInvalidLogLevel    = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat   = errors.New("invalid log format: must be json or text")
	ErrInvalidEnvironment = errors.New("invalid environment: must be development, staging, or production")
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "coursery",
			Environment: EnvDevelopment,
			LogLevel:    "info",
			LogFormat:   "json",
		},
		HTTPServer: HTTPServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			BodyLimit:       DefaultBodyLimit,
		},
		EventBus: EventBusConfig{
			RetryMaxAttempts:    DefaultRetryMaxAttempts,
			RetryInitialBackoff: DefaultRetryInitialBackoff,
			RetryMaxBackoff:     DefaultRetryMaxBackoff,
			DeadLetterCapacity:  DefaultDeadLetterCapacity,
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			RPS:     DefaultRateLimitRPS,
			Window:  DefaultRateLimitWindow,
			Burst:   DefaultRateLimitBurst,
		},
		Bootstrap: BootstrapConfig{
			SeedDemo: true,
		},
		Workers: WorkersConfig{
			AccessSweepInterval: DefaultAccessSweepInterval,
			ConsistencyInterval: DefaultConsistencyInterval,
			ConsistencySample:   DefaultConsistencySample,
		},
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []error

	errs = c.validateApp(errs)
	errs = c.validateHTTPServer(errs)
	errs = c.validateEventBus(errs)
	errs = c.validateRateLimit(errs)
	errs = c.validateWorkers(errs)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}

	return nil
}

// validateApp validates application configuration.
func (c *Config) validateApp(errs []error) []error {
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}
	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidEnvironment, c.App.Environment))
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		errs = append(errs, ErrInvalidLogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[strings.ToLower(c.App.LogFormat)] {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errs
}

// validateHTTPServer validates HTTP server configuration.
func (c *Config) validateHTTPServer(errs []error) []error {
	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		errs = append(errs, fmt.Errorf("http_server.port must be between 1 and 65535, got %d", c.HTTPServer.Port))
	}
	if c.HTTPServer.ReadTimeout <= 0 {
		errs = append(errs, errors.New("http_server.read_timeout must be positive"))
	}
	if c.HTTPServer.WriteTimeout <= 0 {
		errs = append(errs, errors.New("http_server.write_timeout must be positive"))
	}
	if c.HTTPServer.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http_server.shutdown_timeout must be positive"))
	}
	return errs
}

// validateEventBus validates event bus configuration.
func (c *Config) validateEventBus(errs []error) []error {
	if c.EventBus.RetryMaxAttempts <= 0 {
		errs = append(errs, errors.New("event_bus.retry_max_attempts must be positive"))
	}
	if c.EventBus.RetryInitialBackoff <= 0 {
		errs = append(errs, errors.New("event_bus.retry_initial_backoff must be positive"))
	}
	if c.EventBus.RetryMaxBackoff < c.EventBus.RetryInitialBackoff {
		errs = append(errs, errors.New("event_bus.retry_max_backoff must be >= retry_initial_backoff"))
	}
	if c.EventBus.DeadLetterCapacity <= 0 {
		errs = append(errs, errors.New("event_bus.dead_letter_capacity must be positive"))
	}
	return errs
}

// validateRateLimit validates rate limiting configuration.
func (c *Config) validateRateLimit(errs []error) []error {
	if !c.RateLimit.Enabled {
		return errs
	}
	if c.RateLimit.RPS <= 0 {
		errs = append(errs, errors.New("rate_limit.rps must be positive when rate limiting is enabled"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.window must be positive when rate limiting is enabled"))
	}
	if c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit.burst must not be negative"))
	}
	return errs
}

// validateWorkers validates worker configuration.
func (c *Config) validateWorkers(errs []error) []error {
	if c.Workers.AccessSweepInterval <= 0 {
		errs = append(errs, errors.New("workers.access_sweep_interval must be positive"))
	}
	if c.Workers.ConsistencyInterval <= 0 {
		errs = append(errs, errors.New("workers.consistency_interval must be positive"))
	}
	if c.Workers.ConsistencySample <= 0 {
		errs = append(errs, errors.New("workers.consistency_sample must be positive"))
	}
	return errs
}

// Load loads configuration from the default config file and environment variables.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific file path.
// If path is empty, it tries to find the config file in standard locations.
func LoadFromPath(path string) (*Config, error) {
	loader := NewLoader()
	return loader.Load(path)
}

// Loader handles configuration loading from files and environment variables.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			"configs/config.yaml",
			"config.yaml",
			"/etc/coursery/config.yaml",
		},
	}
}

// WithConfigPaths sets custom config paths to search.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// Load loads configuration from file and environment variables.
func (l *Loader) Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	// Determine config file path
	configPath := path
	if configPath == "" {
		// Check CONFIG_PATH environment variable first
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			configPath = envPath
		} else {
			// Search in standard locations
			for _, p := range l.configPaths {
				if _, err := os.Stat(p); err == nil {
					configPath = p
					break
				}
			}
		}
	}

	// Load from file if found
	if configPath != "" {
		if err := l.loadFromFile(cfg, configPath); err != nil {
			// Only return error if path was explicitly specified
			if path != "" || os.Getenv("CONFIG_PATH") != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
			// Otherwise, continue with defaults + env vars
		}
	}

	// Override with environment variables
	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (l *Loader) loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.loadEnvToStruct(reflect.ValueOf(cfg).Elem())
}

// loadEnvToStruct recursively loads environment variables into a struct.
func (l *Loader) loadEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		// Handle embedded structs
		if field.Kind() == reflect.Struct {
			if err := l.loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		// Get env tag
		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		// Get environment variable value
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		// Set field value based on type
		if err := l.setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldFromEnv sets a struct field value from an environment variable string.
//
//nolint:exhaustive // We only support a subset of reflect.Kind for config values
func (l *Loader) setFieldFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// Check if it's a time.Duration
		if field.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %s", value)
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %s", value)
		}
		field.SetUint(u)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
		field.SetFloat(f)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// IsDevelopment returns true when running in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}
