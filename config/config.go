package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AllocationConfig   AllocationConfig   `json:"allocation"`
	MarginSafetyConfig MarginSafetyConfig `json:"margin_safety"`
	LoggingConfig      LoggingConfig      `json:"logging"`
	ServerConfig       ServerConfig       `json:"server"`
}

// AllocationConfig holds the capital allocation policy constants
type AllocationConfig struct {
	MaxRRRatio                      float64 `json:"max_rr_ratio"`                       // Upper clamp for reward:risk in scoring
	SignalQualityThreshold          float64 `json:"signal_quality_threshold"`           // Normal quality gate (0-1)
	BootstrapSignalQualityThreshold float64 `json:"bootstrap_signal_quality_threshold"` // Relaxed gate for young accounts
	BootstrapTradeLimit             int     `json:"bootstrap_trade_limit"`              // Trade count ending the bootstrap phase
	MaxTotalBudgetRatio             float64 `json:"max_total_budget_ratio"`             // Share of available margin per pass
	MaxSinglePositionRatio          float64 `json:"max_single_position_ratio"`          // Notional cap as share of equity
	MaxTotalMarginRatio             float64 `json:"max_total_margin_ratio"`             // Allowed margin as share of balance
}

// MarginSafetyConfig holds the margin tier thresholds
type MarginSafetyConfig struct {
	WarningThreshold  float64 `json:"warning_threshold"`  // Usage ratio starting the WARNING tier
	CriticalThreshold float64 `json:"critical_threshold"` // Usage ratio starting the CRITICAL tier
	LockThreshold     float64 `json:"lock_threshold"`     // Usage ratio locking new allocations
}

type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Output     string `json:"output"`      // stdout, stderr, or file path
	JSONFormat bool   `json:"json_format"` // Output as JSON
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"` // CORS allowed origins
	ProductionMode  bool   `json:"production_mode"`
	ReadTimeout     int    `json:"read_timeout"`     // Seconds
	WriteTimeout    int    `json:"write_timeout"`    // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout"` // Seconds
}

func Load() (*Config, error) {
	// Optional .env file for local development
	_ = godotenv.Load()

	// First try to load base config from file
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	// Allocation policy
	cfg.AllocationConfig.MaxRRRatio = getEnvFloatOrDefault("ALLOC_MAX_RR_RATIO", 10.0)
	cfg.AllocationConfig.SignalQualityThreshold = getEnvFloatOrDefault("ALLOC_SIGNAL_QUALITY_THRESHOLD", 0.65)
	cfg.AllocationConfig.BootstrapSignalQualityThreshold = getEnvFloatOrDefault("ALLOC_BOOTSTRAP_QUALITY_THRESHOLD", 0.50)
	cfg.AllocationConfig.BootstrapTradeLimit = getEnvIntOrDefault("ALLOC_BOOTSTRAP_TRADE_LIMIT", 20)
	cfg.AllocationConfig.MaxTotalBudgetRatio = getEnvFloatOrDefault("ALLOC_MAX_TOTAL_BUDGET_RATIO", 0.90)
	cfg.AllocationConfig.MaxSinglePositionRatio = getEnvFloatOrDefault("ALLOC_MAX_SINGLE_POSITION_RATIO", 0.10)
	cfg.AllocationConfig.MaxTotalMarginRatio = getEnvFloatOrDefault("ALLOC_MAX_TOTAL_MARGIN_RATIO", 0.60)

	// Margin safety tiers
	cfg.MarginSafetyConfig.WarningThreshold = getEnvFloatOrDefault("MARGIN_WARNING_THRESHOLD", 0.80)
	cfg.MarginSafetyConfig.CriticalThreshold = getEnvFloatOrDefault("MARGIN_CRITICAL_THRESHOLD", 0.90)
	cfg.MarginSafetyConfig.LockThreshold = getEnvFloatOrDefault("MARGIN_LOCK_THRESHOLD", 0.95)

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", "stdout")
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"

	// Server config
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", 8080)
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", "0.0.0.0")
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", "*")
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("SERVER_PRODUCTION_MODE", "false") == "true"
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", 30)
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 30)
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// GenerateSampleConfig creates a sample configuration file
func GenerateSampleConfig(filename string) error {
	config := Config{
		AllocationConfig: AllocationConfig{
			MaxRRRatio:                      10.0,
			SignalQualityThreshold:          0.65,
			BootstrapSignalQualityThreshold: 0.50,
			BootstrapTradeLimit:             20,
			MaxTotalBudgetRatio:             0.90,
			MaxSinglePositionRatio:          0.10,
			MaxTotalMarginRatio:             0.60,
		},
		MarginSafetyConfig: MarginSafetyConfig{
			WarningThreshold:  0.80,
			CriticalThreshold: 0.90,
			LockThreshold:     0.95,
		},
		LoggingConfig: LoggingConfig{
			Level:      "info",
			Output:     "stdout",
			JSONFormat: true,
		},
		ServerConfig: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			AllowedOrigins:  "*",
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
		},
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
