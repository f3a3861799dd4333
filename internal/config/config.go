package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences
type Config struct {
	// Sync behaviour
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"` // Background retry sweep interval

	// Image upload queue
	ImageQueueSize  int           `yaml:"image_queue_size" json:"image_queue_size"`   // Upload queue capacity
	MaxImageBytes   int64         `yaml:"max_image_bytes" json:"max_image_bytes"`     // Pending uploads above this are dropped at startup
	MaxPendingAge   time.Duration `yaml:"max_pending_age" json:"max_pending_age"`     // Pending uploads older than this are dropped at startup
	UploadWorkers   int           `yaml:"upload_workers" json:"upload_workers"`       // Concurrent image uploads

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	if home != "" {
		logPath = filepath.Join(home, ".jobsync", "logs", "jobsync.log")
	}

	return &Config{
		SweepInterval:  5 * time.Minute,
		ImageQueueSize: 64,
		MaxImageBytes:  20 * 1024 * 1024, // 20MB
		MaxPendingAge:  7 * 24 * time.Hour,
		UploadWorkers:  2,
		LogLevel:       getEnv("JOBSYNC_LOG_LEVEL", "INFO"),
		LogFile:        getEnv("JOBSYNC_LOG_FILE", logPath),
		LogConsole:     getEnv("JOBSYNC_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load loads config from ~/.jobsync/config.yaml
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".jobsync", "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.jobsync/config.yaml
func (c *Config) Save() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".jobsync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
