package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kv/internal/fsutil"
	"kv/internal/kvstorage"
)

// Backup writes the full store as pretty JSON to path.
func (s *Store) Backup(ctx context.Context, path string) error {
	raw, err := kvstorage.EncodeJSON(s.data)
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if err := fsutil.AtomicWrite(path, raw); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// Restore replaces the store with the backup at path and persists it.
// Unlike loading db.json, a missing or corrupt backup is an error and
// leaves the store untouched. Any pending undo record is discarded.
func (s *Store) Restore(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	data := kvstorage.NewEntries()
	if err := json.Unmarshal(raw, data); err != nil {
		return fmt.Errorf("parsing backup %s: %w", path, err)
	}

	s.data = data
	if err := s.undo.Clear(); err != nil {
		s.logger.Warn("could not clear undo record", "err", err)
	}
	return s.save()
}

// AutoBackupPath returns the resolved auto-backup snapshot path.
func (s *Store) AutoBackupPath() string {
	if filepath.IsAbs(s.opts.AutoBackupFile) {
		return s.opts.AutoBackupFile
	}
	return filepath.Join(s.dir, s.opts.AutoBackupFile)
}

// LastBackup returns the time of the last auto-backup, or the zero time if
// none is recorded.
func (s *Store) LastBackup() time.Time {
	raw, err := os.ReadFile(filepath.Join(s.dir, BackupStampFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("reading backup timestamp", "err", err)
		}
		return time.Time{}
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		s.logger.Warn("ignoring malformed backup timestamp", "value", strings.TrimSpace(string(raw)))
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// autoBackup snapshots a non-empty store when the last auto-backup is older
// than the configured interval. Failures are logged, never returned.
func (s *Store) autoBackup(ctx context.Context) {
	if s.data.Len() == 0 {
		return
	}
	now := s.opts.Now()
	last := s.LastBackup()
	if !last.IsZero() && now.Sub(last) <= s.opts.BackupInterval {
		s.logger.Debug("auto-backup not due", "last", last.Format(time.RFC3339))
		return
	}

	path := s.AutoBackupPath()
	if err := s.Backup(ctx, path); err != nil {
		s.logger.Warn("auto-backup failed", "path", path, "err", err)
		return
	}
	stamp := strconv.FormatInt(now.Unix(), 10) + "\n"
	if err := fsutil.AtomicWrite(filepath.Join(s.dir, BackupStampFile), []byte(stamp)); err != nil {
		s.logger.Warn("writing backup timestamp", "err", err)
		return
	}
	s.logger.Info("auto-backup written", "path", path, "keys", s.data.Len())
}
