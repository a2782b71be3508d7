// Package config resolves toolkit defaults from the environment, so batch
// runs can be tuned without repeating flags. Every value can still be
// overridden on the command line.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete toolkit configuration
type Config struct {
	Input  InputConfig
	Clean  CleanConfig
	Output OutputConfig
}

// InputConfig holds table ingestion settings
type InputConfig struct {
	KeyField  string
	NameField string
}

// CleanConfig holds sparsity pruning and imputation settings
type CleanConfig struct {
	RowThreshold    float64
	ColumnThreshold float64
	Neighbors       int
}

// OutputConfig holds chart and report destinations
type OutputConfig struct {
	ChartDir   string
	ReportPath string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Input: InputConfig{
			KeyField:  getEnvOrDefault("CLUSTERLAB_KEY_FIELD", ""),
			NameField: getEnvOrDefault("CLUSTERLAB_NAME_FIELD", ""),
		},
		Clean: CleanConfig{
			RowThreshold:    getEnvFloatOrDefault("CLUSTERLAB_ROW_THRESHOLD", 0.5),
			ColumnThreshold: getEnvFloatOrDefault("CLUSTERLAB_COL_THRESHOLD", 0.5),
			Neighbors:       getEnvIntOrDefault("CLUSTERLAB_NEIGHBORS", 2),
		},
		Output: OutputConfig{
			ChartDir:   getEnvOrDefault("CLUSTERLAB_CHART_DIR", "charts"),
			ReportPath: getEnvOrDefault("CLUSTERLAB_REPORT", "report.html"),
		},
	}
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Clean.RowThreshold < 0 || config.Clean.RowThreshold > 1 {
		return fmt.Errorf("row threshold %v outside [0, 1]", config.Clean.RowThreshold)
	}
	if config.Clean.ColumnThreshold < 0 || config.Clean.ColumnThreshold > 1 {
		return fmt.Errorf("column threshold %v outside [0, 1]", config.Clean.ColumnThreshold)
	}
	if config.Clean.Neighbors < 1 {
		return fmt.Errorf("neighbor count %d must be positive", config.Clean.Neighbors)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
