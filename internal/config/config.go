// Package config handles kv configuration: store location, defaults and
// the typed settings read from config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultDirName is the store directory created under $HOME.
const DefaultDirName = ".kv"

// ConfigFileName is the config file inside the store directory.
const ConfigFileName = "config.yaml"

// Paths captures resolved locations for the store and its config.
type Paths struct {
	StoreDir   string // directory holding db.json and friends
	ConfigFile string // path to <StoreDir>/config.yaml
}

// ResolvePaths picks the store directory: the --path flag if given, then
// KV_DIR, then $HOME/.kv.
func ResolvePaths(flagPath string) (Paths, error) {
	dir := flagPath
	if dir == "" {
		dir = os.Getenv(EnvDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("cannot find home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDirName)
	}

	info, err := os.Stat(dir)
	if err == nil && !info.IsDir() {
		return Paths{}, fmt.Errorf("store path is not a directory: %s", dir)
	}

	return Paths{
		StoreDir:   dir,
		ConfigFile: filepath.Join(dir, ConfigFileName),
	}, nil
}

// Settings is the typed view of the core config keys.
type Settings struct {
	AutoBackup     bool
	BackupInterval time.Duration
	BackupFile     string
	LogLevel       string
	DumpFormat     string
}

// Load validates s and returns its settings, using defaults for missing keys.
func Load(s Store) (Settings, error) {
	if err := Validate(s); err != nil {
		return Settings{}, err
	}

	values := DefaultValues()
	for k, v := range s.All() {
		values[k] = v
	}

	auto, _ := strconv.ParseBool(values[KeyBackupAuto])
	interval, _ := time.ParseDuration(values[KeyBackupInterval])

	return Settings{
		AutoBackup:     auto,
		BackupInterval: interval,
		BackupFile:     values[KeyBackupFile],
		LogLevel:       values[KeyLogLevel],
		DumpFormat:     values[KeyDumpFormat],
	}, nil
}
