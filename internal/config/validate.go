package config

import "fmt"

// Validate checks cfg for values that would make the daemon unable to
// start, after defaults have already been applied.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("logging.level must be one of DEBUG, INFO, WARN, ERROR, got %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}

	if cfg.Telemetry.SampleRate < 0 || cfg.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got %v", cfg.Telemetry.SampleRate)
	}

	if cfg.Metrics.Enabled && (cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", cfg.Metrics.Port)
	}

	if cfg.AdminHTTP.Enabled && (cfg.AdminHTTP.Port < 1 || cfg.AdminHTTP.Port > 65535) {
		return fmt.Errorf("admin_http.port must be between 1 and 65535, got %d", cfg.AdminHTTP.Port)
	}

	if cfg.AdminHTTP.Enabled && cfg.Metrics.Enabled && cfg.AdminHTTP.Port == cfg.Metrics.Port {
		return fmt.Errorf("admin_http.port and metrics.port must differ, both %d", cfg.AdminHTTP.Port)
	}

	if cfg.HandleServer.MaxHandles <= 0 {
		return fmt.Errorf("handle_server.max_handles must be positive")
	}

	if cfg.LoanPool.HeapCacheSize < 0 {
		return fmt.Errorf("loan_pool.heap_cache_size must not be negative")
	}

	if cfg.LoanPool.DefaultMaxSamples <= 0 {
		return fmt.Errorf("loan_pool.default_max_samples must be positive")
	}

	if cfg.FSMControl.WorkerName == "" {
		return fmt.Errorf("fsm_control.worker_name must not be empty")
	}

	return nil
}
