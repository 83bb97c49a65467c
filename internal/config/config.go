// Package config provides configuration loading and structs for the datadetector CLI and server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Model runtimes.
const (
	RuntimeTrees = "trees"
	RuntimeONNX  = "onnx"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Model   ModelConfig   `yaml:"model"`
	Detect  DetectConfig  `yaml:"detect"`
	Watch   WatchConfig   `yaml:"watch"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the path of the results database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ModelConfig locates the classifier artifacts. Runtime selects how the classifier file
// is read: "trees" for the JSON tree ensemble, "onnx" for an ONNX graph. Dimensions is
// only read by the ONNX runtime. When zero the width declared by the graph input is used.
type ModelConfig struct {
	Runtime        string `yaml:"runtime"`
	ClassifierPath string `yaml:"classifier_path"`
	VectorizerPath string `yaml:"vectorizer_path"`
	ScalerPath     string `yaml:"scaler_path"`
	Dimensions     int    `yaml:"dimensions"`
}

// DetectConfig holds detection settings.
type DetectConfig struct {
	TruncateRows int     `yaml:"truncate_rows"`
	Threshold    float64 `yaml:"threshold"`
	CacheSize    int     `yaml:"cache_size"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Model.ClassifierPath = expandPath(cfg.Model.ClassifierPath, configDir)
	cfg.Model.VectorizerPath = expandPath(cfg.Model.VectorizerPath, configDir)
	cfg.Model.ScalerPath = expandPath(cfg.Model.ScalerPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Model.Runtime {
	case RuntimeTrees, RuntimeONNX:
	default:
		return fmt.Errorf("model.runtime must be %q or %q, got %q", RuntimeTrees, RuntimeONNX, c.Model.Runtime)
	}
	if c.Model.Dimensions < 0 {
		return fmt.Errorf("model.dimensions must not be negative, got %d", c.Model.Dimensions)
	}
	if c.Detect.Threshold <= 0 || c.Detect.Threshold > 1 {
		return fmt.Errorf("detect.threshold must be in (0, 1], got %v", c.Detect.Threshold)
	}
	if c.Detect.TruncateRows < 0 {
		return fmt.Errorf("detect.truncate_rows must not be negative, got %d", c.Detect.TruncateRows)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
