package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AllocationConfig.SignalQualityThreshold != 0.65 {
		t.Errorf("expected default quality threshold 0.65, got %v",
			cfg.AllocationConfig.SignalQualityThreshold)
	}
	if cfg.AllocationConfig.BootstrapTradeLimit != 20 {
		t.Errorf("expected default bootstrap trade limit 20, got %d",
			cfg.AllocationConfig.BootstrapTradeLimit)
	}
	if cfg.MarginSafetyConfig.LockThreshold != 0.95 {
		t.Errorf("expected default lock threshold 0.95, got %v",
			cfg.MarginSafetyConfig.LockThreshold)
	}
	if cfg.ServerConfig.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.ServerConfig.Port)
	}
	if cfg.LoggingConfig.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LoggingConfig.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ALLOC_SIGNAL_QUALITY_THRESHOLD", "0.75")
	t.Setenv("ALLOC_BOOTSTRAP_TRADE_LIMIT", "50")
	t.Setenv("MARGIN_WARNING_THRESHOLD", "0.70")
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AllocationConfig.SignalQualityThreshold != 0.75 {
		t.Errorf("expected overridden threshold 0.75, got %v",
			cfg.AllocationConfig.SignalQualityThreshold)
	}
	if cfg.AllocationConfig.BootstrapTradeLimit != 50 {
		t.Errorf("expected overridden trade limit 50, got %d",
			cfg.AllocationConfig.BootstrapTradeLimit)
	}
	if cfg.MarginSafetyConfig.WarningThreshold != 0.70 {
		t.Errorf("expected overridden warning threshold 0.70, got %v",
			cfg.MarginSafetyConfig.WarningThreshold)
	}
	if cfg.ServerConfig.Port != 9090 {
		t.Errorf("expected overridden port 9090, got %d", cfg.ServerConfig.Port)
	}
	if cfg.LoggingConfig.Level != "debug" {
		t.Errorf("expected overridden log level debug, got %s", cfg.LoggingConfig.Level)
	}
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	t.Setenv("ALLOC_SIGNAL_QUALITY_THRESHOLD", "not-a-number")
	t.Setenv("WEB_PORT", "not-an-int")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AllocationConfig.SignalQualityThreshold != 0.65 {
		t.Errorf("malformed float override should fall back to 0.65, got %v",
			cfg.AllocationConfig.SignalQualityThreshold)
	}
	if cfg.ServerConfig.Port != 8080 {
		t.Errorf("malformed int override should fall back to 8080, got %d",
			cfg.ServerConfig.Port)
	}
}

func TestGenerateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := GenerateSampleConfig(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read generated file: %v", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("generated file is not valid JSON: %v", err)
	}
	if cfg.AllocationConfig.MaxRRRatio != 10.0 {
		t.Errorf("expected sample max reward:risk 10.0, got %v", cfg.AllocationConfig.MaxRRRatio)
	}
	if cfg.MarginSafetyConfig.CriticalThreshold != 0.90 {
		t.Errorf("expected sample critical threshold 0.90, got %v",
			cfg.MarginSafetyConfig.CriticalThreshold)
	}
}
