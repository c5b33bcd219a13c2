package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ApplyDefaults fills in zero-valued fields with sensible defaults. Called
// after unmarshalling so that a partially-specified config file still ends
// up fully populated.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyAdminHTTPDefaults(&cfg.AdminHTTP)
	applyHandleServerDefaults(&cfg.HandleServer)
	applyLoanPoolDefaults(&cfg.LoanPool)
	applyFSMControlDefaults(&cfg.FSMControl)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyAdminHTTPDefaults(cfg *AdminHTTPConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
}

func applyHandleServerDefaults(cfg *HandleServerConfig) {
	if cfg.MaxHandles == 0 {
		cfg.MaxHandles = (1 << 31) / 128
	}
}

func applyLoanPoolDefaults(cfg *LoanPoolConfig) {
	if cfg.HeapCacheSize == 0 {
		cfg.HeapCacheSize = 16
	}
	if cfg.DefaultMaxSamples == 0 {
		cfg.DefaultMaxSamples = 32
	}
}

func applyFSMControlDefaults(cfg *FSMControlConfig) {
	if cfg.WorkerName == "" {
		cfg.WorkerName = "fsm-control"
	}
	if cfg.QueueWarnDepth == 0 {
		cfg.QueueWarnDepth = 256
	}
}

// GetDefaultConfig returns a Config with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.AdminHTTP.Enabled = true
	cfg.Metrics.Enabled = true
	return cfg
}

// durationDecodeHook converts config strings like "30s" into time.Duration
// during viper's mapstructure unmarshal.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}
