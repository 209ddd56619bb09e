package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// validValues maps known keys to their allowed values.
// An empty slice means the key has a type-specific check below.
var validValues = map[string][]string{
	KeyBackupAuto:     {},
	KeyBackupInterval: {},
	KeyBackupFile:     {},
	KeyLogLevel:       {"debug", "info", "warn", "error"},
	KeyDumpFormat:     {"json", "yaml", "toml"},
}

// IsKnownKey reports whether key is a core config key.
func IsKnownKey(key string) bool {
	_, ok := validValues[key]
	return ok
}

// Validate checks all values in s for known keys. It returns an error
// describing every invalid value found, or nil if all values are valid.
func Validate(s Store) error {
	all := s.All()
	var errs []string

	for key, allowed := range validValues {
		val, ok := all[key]
		if !ok {
			continue
		}
		if msg := checkValue(key, val, allowed); msg != "" {
			errs = append(errs, msg)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	slices.Sort(errs)
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// ValidateValue checks a single key/value pair. Unknown keys are accepted.
func ValidateValue(key, val string) error {
	allowed, ok := validValues[key]
	if !ok {
		return nil
	}
	if msg := checkValue(key, val, allowed); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func checkValue(key, val string, allowed []string) string {
	if len(allowed) > 0 {
		if !slices.Contains(allowed, val) {
			return fmt.Sprintf("%s: invalid value %q (allowed: %s)",
				key, val, strings.Join(allowed, ", "))
		}
		return ""
	}

	// Keys with no enumerated values have type-specific checks.
	switch key {
	case KeyBackupAuto:
		if _, err := strconv.ParseBool(val); err != nil {
			return fmt.Sprintf("%s: must be true or false, got %q", key, val)
		}
	case KeyBackupInterval:
		d, err := time.ParseDuration(val)
		if err != nil || d <= 0 {
			return fmt.Sprintf("%s: must be a positive duration like 24h, got %q", key, val)
		}
	case KeyBackupFile:
		if strings.TrimSpace(val) == "" {
			return fmt.Sprintf("%s: cannot be empty", key)
		}
	}
	return ""
}
