package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"
)

func TestBackupRestore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "fruit", "apple", "pear")
	s.Set(ctx, "veg", "kale")
	want := s.Snapshot(ctx)

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := s.Backup(ctx, path); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	s.Set(ctx, "fruit", "changed")
	s.Delete(ctx, "veg")
	s.Set(ctx, "extra", "x")

	if err := s.Restore(ctx, path); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got := s.Snapshot(ctx)
	if !reflect.DeepEqual(got.Keys(), want.Keys()) || !reflect.DeepEqual(got.Map(), want.Map()) {
		t.Errorf("restored = %v, want %v", got, want)
	}

	reopened, err := Open(ctx, s.Dir(), Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	assertValues(t, reopened, "fruit", "apple", "pear")
	assertNotFound(t, reopened, "extra")
}

func TestRestore_ClearsUndo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, "k", "1")
	path := filepath.Join(t.TempDir(), "backup.json")
	s.Backup(ctx, path)
	s.Set(ctx, "k", "2")

	if err := s.Restore(ctx, path); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if undo(t, s) {
		t.Error("Undo after Restore reported a change")
	}
	assertValues(t, s, "k", "1")
}

func TestRestore_MissingFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Set(ctx, "k", "v")

	if err := s.Restore(ctx, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Restore of missing file should fail")
	}
	assertValues(t, s, "k", "v")
}

func TestRestore_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Set(ctx, "k", "v")

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"k": [1]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(ctx, path); err == nil {
		t.Fatal("Restore of corrupt file should fail")
	}
	assertValues(t, s, "k", "v")
}

func TestBackup_BadPath(t *testing.T) {
	s := newTestStore(t)
	err := s.Backup(context.Background(), filepath.Join(t.TempDir(), "missing", "b.json"))
	if err == nil {
		t.Fatal("Backup into missing directory should fail")
	}
}

// seedStore writes a store file directly so Open sees existing data.
func seedStore(t *testing.T, dir string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, DataFile), []byte(`{"k": ["v"]}`), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeStamp(t *testing.T, dir string, at time.Time) {
	t.Helper()
	stamp := strconv.FormatInt(at.Unix(), 10)
	if err := os.WriteFile(filepath.Join(dir, BackupStampFile), []byte(stamp), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestAutoBackup_FirstRun(t *testing.T) {
	dir := t.TempDir()
	seedStore(t, dir)
	now := time.Unix(1_700_000_000, 0)

	s, err := Open(context.Background(), dir, Options{AutoBackup: true, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(s.AutoBackupPath()); err != nil {
		t.Fatalf("auto-backup not written: %v", err)
	}
	if got := s.LastBackup(); !got.Equal(now) {
		t.Errorf("LastBackup = %v, want %v", got, now)
	}
}

func TestAutoBackup_NotDue(t *testing.T) {
	dir := t.TempDir()
	seedStore(t, dir)
	now := time.Unix(1_700_000_000, 0)
	writeStamp(t, dir, now.Add(-time.Hour))

	s, err := Open(context.Background(), dir, Options{AutoBackup: true, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(s.AutoBackupPath()); !os.IsNotExist(err) {
		t.Error("auto-backup written before interval elapsed")
	}
}

func TestAutoBackup_Due(t *testing.T) {
	dir := t.TempDir()
	seedStore(t, dir)
	now := time.Unix(1_700_000_000, 0)
	writeStamp(t, dir, now.Add(-25*time.Hour))

	s, err := Open(context.Background(), dir, Options{AutoBackup: true, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	raw, err := os.ReadFile(s.AutoBackupPath())
	if err != nil {
		t.Fatalf("auto-backup not written: %v", err)
	}
	if string(raw) != "{\n  \"k\": [\n    \"v\"\n  ]\n}\n" {
		t.Errorf("auto-backup content = %q", raw)
	}
	if got := s.LastBackup(); !got.Equal(now) {
		t.Errorf("LastBackup = %v, want %v", got, now)
	}
}

func TestAutoBackup_CustomIntervalAndFile(t *testing.T) {
	dir := t.TempDir()
	seedStore(t, dir)
	now := time.Unix(1_700_000_000, 0)
	writeStamp(t, dir, now.Add(-2*time.Hour))
	target := filepath.Join(t.TempDir(), "snap.json")

	_, err := Open(context.Background(), dir, Options{
		AutoBackup:     true,
		BackupInterval: time.Hour,
		AutoBackupFile: target,
		Now:            func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("auto-backup not written to %s: %v", target, err)
	}
}

func TestAutoBackup_SkipsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), dir, Options{AutoBackup: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(s.AutoBackupPath()); !os.IsNotExist(err) {
		t.Error("empty store should not be auto-backed up")
	}
	if !s.LastBackup().IsZero() {
		t.Error("timestamp written for empty store")
	}
}

func TestAutoBackup_Disabled(t *testing.T) {
	dir := t.TempDir()
	seedStore(t, dir)
	s, err := Open(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := os.Stat(s.AutoBackupPath()); !os.IsNotExist(err) {
		t.Error("auto-backup written while disabled")
	}
}

func TestAutoBackup_FailureDoesNotFailOpen(t *testing.T) {
	dir := t.TempDir()
	seedStore(t, dir)

	s, err := Open(context.Background(), dir, Options{
		AutoBackup:     true,
		AutoBackupFile: filepath.Join(t.TempDir(), "missing", "snap.json"),
	})
	if err != nil {
		t.Fatalf("Open should ignore auto-backup failure: %v", err)
	}
	assertValues(t, s, "k", "v")
	if !s.LastBackup().IsZero() {
		t.Error("timestamp written despite failed backup")
	}
}

func TestLastBackup_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, BackupStampFile), []byte("yesterday"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !s.LastBackup().IsZero() {
		t.Error("malformed timestamp should read as zero")
	}
}
