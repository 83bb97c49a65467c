package config

// DefaultConfigPath is where the CLI looks for its config first.
const DefaultConfigPath = "/usr/local/etc/datadetector/config.yaml"

// DefaultExtensions are the file extensions scanned and watched when none are configured.
var DefaultExtensions = []string{".csv", ".xls", ".xlsx"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/datadetector/data/db/results.db"
	}
	if cfg.Model.Runtime == "" {
		cfg.Model.Runtime = RuntimeTrees
	}
	if cfg.Model.ClassifierPath == "" {
		if cfg.Model.Runtime == RuntimeONNX {
			cfg.Model.ClassifierPath = "/usr/local/var/datadetector/data/models/classifier.onnx"
		} else {
			cfg.Model.ClassifierPath = "/usr/local/var/datadetector/data/models/classifier.json"
		}
	}
	if cfg.Model.VectorizerPath == "" {
		cfg.Model.VectorizerPath = "/usr/local/var/datadetector/data/models/vectorizer.json"
	}
	if cfg.Model.ScalerPath == "" {
		cfg.Model.ScalerPath = "/usr/local/var/datadetector/data/models/scaler.json"
	}
	if cfg.Detect.Threshold == 0 {
		cfg.Detect.Threshold = 0.5
	}
	if cfg.Detect.CacheSize == 0 {
		cfg.Detect.CacheSize = 256
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = append([]string(nil), DefaultExtensions...)
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
