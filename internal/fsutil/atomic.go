// Package fsutil holds small filesystem helpers shared by the store and the
// config store.
package fsutil

import (
	"errors"
	"os"

	"github.com/google/uuid"
)

// AtomicWrite writes data to a file atomically via a temporary file and rename.
func AtomicWrite(path string, data []byte) error {
	tmp := path + ".tmp." + uuid.NewString()

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best effort cleanup
		return err
	}
	return nil
}

// RemoveIfExists removes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
