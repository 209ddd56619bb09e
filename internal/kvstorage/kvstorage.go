// Package kvstorage defines the list-valued key-value store used by kv.
// Each key maps to an ordered list of string values. Implementations record
// the state before every mutation so the most recent one can be undone.
package kvstorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ListStore defines the interface for list-valued key-value persistence.
//
// Mutating operations called with an empty key are no-ops and return nil.
type ListStore interface {
	// Get returns a copy of the values for key.
	// Returns ErrKeyNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]string, error)

	// Set replaces the values for key, creating it if needed.
	Set(ctx context.Context, key string, values ...string) error

	// Add appends values that are not already present, creating the key
	// if needed.
	Add(ctx context.Context, key string, values ...string) error

	// Delete removes key entirely when no values are given; otherwise it
	// removes only the named values and leaves the key in place.
	Delete(ctx context.Context, key string, values ...string) error

	// Replace renames key when given one argument, or substitutes one
	// value for another within key when given two.
	// Returns ErrInvalidArgument for any other arity.
	Replace(ctx context.Context, key string, args ...string) error

	// Keys returns all keys in insertion order.
	Keys(ctx context.Context) []string

	// Overview returns one "<key>: <n> items" line per key.
	Overview(ctx context.Context) string

	// Search returns keys and key/value pairs containing query.
	Search(ctx context.Context, query string) SearchResult

	// Snapshot returns a copy of the full store contents.
	Snapshot(ctx context.Context) *Entries

	// Backup writes the serialized store to path.
	Backup(ctx context.Context, path string) error

	// Restore replaces the store with the contents of the backup at path.
	Restore(ctx context.Context, path string) error

	// Undo reverses the most recent mutation, if one was recorded.
	// It reports whether the store changed.
	Undo(ctx context.Context) (bool, error)

	// Nuke deletes the persisted store and any pending undo record.
	Nuke(ctx context.Context) error
}

// Pair is a single key/value match returned by Search.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SearchResult holds the matches of a Search call.
type SearchResult struct {
	Keys  []string `json:"keys"`
	Pairs []Pair   `json:"pairs"`
}

// ValidateKey checks that a key is non-empty.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty: %w", ErrInvalidArgument)
	}
	return nil
}

// ValidatePath checks that path is non-empty and its directory exists.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty: %w", ErrInvalidArgument)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("directory of %s doesn't exist: %w", path, ErrInvalidArgument)
	}
	return nil
}
