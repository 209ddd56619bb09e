package config

import "os"

// Environment variable names for kv configuration.
const (
	EnvDir        = "KV_DIR"         // Path to the store directory
	EnvLogLevel   = "KV_LOG_LEVEL"   // Override log.level
	EnvDumpFormat = "KV_DUMP_FORMAT" // Override dump.format
	EnvJSON       = "KV_JSON"        // Enable JSON output ("1" or "true")
)

// ApplyEnvOverrides checks KV_LOG_LEVEL and KV_DUMP_FORMAT env vars
// and overrides the corresponding config values in memory.
// These overrides are not persisted to the config file.
func ApplyEnvOverrides(s Store) {
	if level := os.Getenv(EnvLogLevel); level != "" {
		s.SetInMemory(KeyLogLevel, level)
	}
	if format := os.Getenv(EnvDumpFormat); format != "" {
		s.SetInMemory(KeyDumpFormat, format)
	}
}

// EnvBool reports whether the named env var is set to "1" or "true".
func EnvBool(name string) bool {
	v := os.Getenv(name)
	return v == "1" || v == "true"
}
