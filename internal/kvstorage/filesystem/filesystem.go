// Package filesystem implements kvstorage.ListStore using the local filesystem.
// The whole store is one pretty-printed JSON file (db.json) in the store
// directory, rewritten after every mutation. The undo record and the
// auto-backup timestamp live next to it.
package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"kv/internal/fsutil"
	"kv/internal/kvstorage"

	"github.com/charmbracelet/log"
)

// File names inside the store directory.
const (
	DataFile        = "db.json"
	UndoFile        = "undo.txt"
	BackupStampFile = "last_backup"
)

// Defaults applied by Open when Options leaves a field unset.
const (
	DefaultAutoBackupFile = "auto_backup.json"
	DefaultBackupInterval = 24 * time.Hour
)

// Options controls how a Store is opened.
type Options struct {
	// AutoBackup enables the time-gated snapshot taken by Open.
	AutoBackup bool

	// BackupInterval is the minimum time between auto-backups.
	BackupInterval time.Duration

	// AutoBackupFile is the snapshot path. Relative paths are resolved
	// against the store directory.
	AutoBackupFile string

	// Logger receives warnings about corrupt files and failed backups.
	Logger *log.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Store implements kvstorage.ListStore backed by a single JSON file.
type Store struct {
	dir    string
	data   *kvstorage.Entries
	undo   *UndoLog
	opts   Options
	logger *log.Logger
}

// Open creates the store directory if needed, loads db.json and runs the
// auto-backup check. A missing, empty or corrupt db.json yields an empty
// store; only filesystem errors fail Open.
func Open(ctx context.Context, dir string, opts Options) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory cannot be empty: %w", kvstorage.ErrInvalidArgument)
	}
	if opts.BackupInterval <= 0 {
		opts.BackupInterval = DefaultBackupInterval
	}
	if opts.AutoBackupFile == "" {
		opts.AutoBackupFile = DefaultAutoBackupFile
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		undo:   NewUndoLog(filepath.Join(dir, UndoFile)),
		opts:   opts,
		logger: logger,
	}
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	s.data = data

	if opts.AutoBackup {
		s.autoBackup(ctx)
	}
	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns a copy of the values for key.
func (s *Store) Get(ctx context.Context, key string) ([]string, error) {
	vals, ok := s.data.Get(key)
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, kvstorage.ErrKeyNotFound)
	}
	return vals, nil
}

// Set replaces the values for key.
func (s *Store) Set(ctx context.Context, key string, values ...string) error {
	if key == "" {
		return nil
	}
	if err := s.recordInPlace(key); err != nil {
		return err
	}
	s.data.Put(key, values)
	return s.save()
}

// Add appends each value not already present under key.
func (s *Store) Add(ctx context.Context, key string, values ...string) error {
	if key == "" {
		return nil
	}
	if err := s.recordInPlace(key); err != nil {
		return err
	}
	merged, _ := s.data.Get(key)
	for _, v := range values {
		if !slices.Contains(merged, v) {
			merged = append(merged, v)
		}
	}
	s.data.Put(key, merged)
	return s.save()
}

// Delete removes key, or only the given values when any are passed.
// Deleting from an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string, values ...string) error {
	if key == "" || !s.data.Has(key) {
		return nil
	}
	if err := s.recordInPlace(key); err != nil {
		return err
	}

	if len(values) == 0 {
		s.data.Remove(key)
		return s.save()
	}

	current, _ := s.data.Get(key)
	kept := current[:0]
	for _, v := range current {
		if !slices.Contains(values, v) {
			kept = append(kept, v)
		}
	}
	s.data.Put(key, kept)
	return s.save()
}

// Replace renames key (one argument) or substitutes a value (two arguments).
func (s *Store) Replace(ctx context.Context, key string, args ...string) error {
	if key == "" {
		return nil
	}
	switch len(args) {
	case 1:
		return s.RenameKey(ctx, key, args[0])
	case 2:
		return s.ReplaceValue(ctx, key, args[0], args[1])
	default:
		return fmt.Errorf("expected 1 or 2 values, got %d: %w", len(args), kvstorage.ErrInvalidArgument)
	}
}

// RenameKey moves the values of key to newKey, overwriting newKey if it
// exists. Renaming an absent key is a no-op.
func (s *Store) RenameKey(ctx context.Context, key, newKey string) error {
	if key == "" || !s.data.Has(key) || key == newKey {
		return nil
	}
	if err := kvstorage.ValidateKey(newKey); err != nil {
		return fmt.Errorf("new key: %w", err)
	}

	vals, _ := s.data.Get(key)
	entries := make([]UndoEntry, len(vals))
	for i, v := range vals {
		entries[i] = UndoEntry{Key: key, NewKey: newKey, Value: v}
	}
	if err := s.undo.Record(entries); err != nil {
		return fmt.Errorf("recording undo: %w", err)
	}

	s.data.Remove(key)
	s.data.Put(newKey, vals)
	return s.save()
}

// ReplaceValue substitutes every occurrence of oldValue under key with
// newValue. It is a no-op if key is absent or holds no oldValue.
func (s *Store) ReplaceValue(ctx context.Context, key, oldValue, newValue string) error {
	vals, ok := s.data.Get(key)
	if key == "" || !ok || !slices.Contains(vals, oldValue) {
		return nil
	}
	if err := s.recordInPlace(key); err != nil {
		return err
	}
	for i, v := range vals {
		if v == oldValue {
			vals[i] = newValue
		}
	}
	s.data.Put(key, vals)
	return s.save()
}

// Keys returns all keys in insertion order.
func (s *Store) Keys(ctx context.Context) []string {
	return s.data.Keys()
}

// Overview returns one "<key>: <n> items" line per key.
func (s *Store) Overview(ctx context.Context) string {
	return s.data.Overview()
}

// Search returns keys and key/value pairs containing query.
func (s *Store) Search(ctx context.Context, query string) kvstorage.SearchResult {
	return s.data.Search(query)
}

// Snapshot returns a copy of the store contents.
func (s *Store) Snapshot(ctx context.Context) *kvstorage.Entries {
	return s.data.Clone()
}

// Nuke deletes db.json and the undo record and empties the store.
// The auto-backup snapshot is left in place.
func (s *Store) Nuke(ctx context.Context) error {
	s.data = kvstorage.NewEntries()
	return errors.Join(
		fsutil.RemoveIfExists(s.dataPath()),
		s.undo.Clear(),
	)
}

// recordInPlace captures the current values of key as the undo record.
func (s *Store) recordInPlace(key string) error {
	vals, _ := s.data.Get(key)
	entries := make([]UndoEntry, len(vals))
	for i, v := range vals {
		entries[i] = UndoEntry{Key: key, Value: v}
	}
	if err := s.undo.Record(entries); err != nil {
		return fmt.Errorf("recording undo: %w", err)
	}
	return nil
}

func (s *Store) dataPath() string {
	return filepath.Join(s.dir, DataFile)
}

// load reads db.json. Corrupt content is logged and treated as empty.
func (s *Store) load() (*kvstorage.Entries, error) {
	raw, err := os.ReadFile(s.dataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return kvstorage.NewEntries(), nil
		}
		return nil, fmt.Errorf("reading store: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return kvstorage.NewEntries(), nil
	}

	data := kvstorage.NewEntries()
	if err := json.Unmarshal(raw, data); err != nil {
		s.logger.Warn("error reading json, resetting store", "path", s.dataPath(), "err", err)
		return kvstorage.NewEntries(), nil
	}
	return data, nil
}

// save writes the full store to db.json.
func (s *Store) save() error {
	raw, err := kvstorage.EncodeJSON(s.data)
	if err != nil {
		return fmt.Errorf("%w: %w", kvstorage.ErrPersist, err)
	}
	if err := fsutil.AtomicWrite(s.dataPath(), raw); err != nil {
		return fmt.Errorf("%w: %w", kvstorage.ErrPersist, err)
	}
	return nil
}

// Compile-time check that Store implements kvstorage.ListStore.
var _ kvstorage.ListStore = (*Store)(nil)
