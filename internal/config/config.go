// Package config loads corectld's static configuration: logging, telemetry,
// the admin HTTP server, and the tunable knobs of the handle server, loan
// pool, and FSM control. Configuration sources are layered, highest
// precedence first:
//
//  1. CLI flags
//  2. Environment variables (CORECTL_*)
//  3. Configuration file (YAML)
//  4. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is corectld's complete static configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing and Pyroscope
	// continuous profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is defaulted and validated, but corectld's shutdown
	// path does not read it; shutdown is not bounded by this value.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Metrics controls whether the Prometheus gauges are registered; they
	// are served on the admin HTTP server's /metrics route.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// AdminHTTP configures the admin/debug HTTP server (health, metrics,
	// handle and FSM introspection).
	AdminHTTP AdminHTTPConfig `mapstructure:"admin_http" yaml:"admin_http"`

	// HandleServer tunes the entity handle table.
	HandleServer HandleServerConfig `mapstructure:"handle_server" yaml:"handle_server"`

	// LoanPool tunes the per-reader loan pools of the read/take/peek
	// pipeline.
	LoanPool LoanPoolConfig `mapstructure:"loan_pool" yaml:"loan_pool"`

	// FSMControl tunes the cooperative single-threaded FSM scheduler.
	FSMControl FSMControlConfig `mapstructure:"fsm_control" yaml:"fsm_control"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log output format: text or json.
	Format string `mapstructure:"format" yaml:"format"`

	// Output is where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use an insecure (non-TLS) connection.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration.
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig controls Prometheus gauge registration. Port is validated
// (and must differ from the admin port), but no server listens on it.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port"`
}

// AdminHTTPConfig configures the admin/debug HTTP server.
type AdminHTTPConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port"`
}

// HandleServerConfig tunes the entity handle table.
type HandleServerConfig struct {
	// MaxHandles is accepted from configuration but not read by the handle
	// table, whose limit is a fixed constant in pkg/handle.
	MaxHandles int `mapstructure:"max_handles" yaml:"max_handles"`
}

// LoanPoolConfig tunes the per-reader loan pools.
type LoanPoolConfig struct {
	// HeapCacheSize is accepted from configuration but not read by
	// pkg/loan; the heap-loan cache is not bounded by it.
	HeapCacheSize int `mapstructure:"heap_cache_size" yaml:"heap_cache_size"`

	// DefaultMaxSamples is accepted from configuration but not read by
	// pkg/loan, whose Read always takes max_samples from its caller.
	DefaultMaxSamples int `mapstructure:"default_max_samples" yaml:"default_max_samples"`
}

// FSMControlConfig tunes the cooperative single-threaded FSM scheduler.
type FSMControlConfig struct {
	// WorkerName labels the control loop's worker goroutine for logging.
	WorkerName string `mapstructure:"worker_name" yaml:"worker_name"`

	// QueueWarnDepth is accepted from configuration but not read by
	// pkg/fsmctl; no queue-depth warning is logged.
	QueueWarnDepth int `mapstructure:"queue_warn_depth" yaml:"queue_warn_depth"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, producing a user-friendly error when the
// config path doesn't exist rather than silently falling back to defaults.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"create one there, or specify --config",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("CORECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "corectl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "corectl")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
