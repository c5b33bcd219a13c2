package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppliesDefaultsOverMinimalFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "debug"

handle_server:
  max_handles: 1024
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected normalized level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default format text, got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.HandleServer.MaxHandles != 1024 {
		t.Errorf("expected explicit max_handles 1024 to survive defaulting, got %d", cfg.HandleServer.MaxHandles)
	}
	if cfg.LoanPool.DefaultMaxSamples != 32 {
		t.Errorf("expected default loan_pool.default_max_samples 32, got %d", cfg.LoanPool.DefaultMaxSamples)
	}
	if cfg.FSMControl.WorkerName != "fsm-control" {
		t.Errorf("expected default fsm_control.worker_name, got %q", cfg.FSMControl.WorkerName)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default level INFO, got %q", cfg.Logging.Level)
	}
}

func TestLoad_RejectsInvalidLoggingLevel(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("logging:\n  level: \"NOPE\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation error for invalid logging level")
	}
}

func TestLoad_RejectsClashingPorts(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
metrics:
  enabled: true
  port: 9191
admin_http:
  enabled: true
  port: 9191
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected validation error for clashing admin_http/metrics ports")
	}
}

func TestSaveConfig_RoundTrips(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.FSMControl.WorkerName = "custom-worker"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.FSMControl.WorkerName != "custom-worker" {
		t.Errorf("expected saved worker name to round-trip, got %q", loaded.FSMControl.WorkerName)
	}
}

func TestGetDefaultConfig_EnablesAdminSurfaces(t *testing.T) {
	cfg := GetDefaultConfig()
	if !cfg.AdminHTTP.Enabled {
		t.Error("expected admin HTTP to be enabled by default")
	}
	if !cfg.Metrics.Enabled {
		t.Error("expected metrics to be enabled by default")
	}
	if cfg.AdminHTTP.Port == cfg.Metrics.Port {
		t.Errorf("default admin_http and metrics ports must differ, both %d", cfg.AdminHTTP.Port)
	}
}
