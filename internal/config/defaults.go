package config

// Core config keys.
const (
	KeyBackupAuto     = "backup.auto"
	KeyBackupInterval = "backup.interval"
	KeyBackupFile     = "backup.file"
	KeyLogLevel       = "log.level"
	KeyDumpFormat     = "dump.format"
)

// DefaultValues returns the default config map for the core keys.
func DefaultValues() map[string]string {
	return map[string]string{
		KeyBackupAuto:     "true",
		KeyBackupInterval: "24h",
		KeyBackupFile:     "auto_backup.json",
		KeyLogLevel:       "warn",
		KeyDumpFormat:     "json",
	}
}

// ApplyDefaults fills any missing core keys in s with their default values.
// Defaults are kept in memory so the config file only holds what the user set.
func ApplyDefaults(s Store) {
	all := s.All()
	for k, v := range DefaultValues() {
		if _, exists := all[k]; !exists {
			s.SetInMemory(k, v)
		}
	}
}
