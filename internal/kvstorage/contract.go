package kvstorage

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

// RunContractTests runs the full contract test suite against a ListStore
// implementation. Each store should call this with its own factory
// function so that all implementations behave the same.
func RunContractTests(t *testing.T, factory func(t *testing.T) ListStore) {
	t.Run("SetGet", func(t *testing.T) { testSetGet(t, factory(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory(t)) })
	t.Run("Add", func(t *testing.T) { testAdd(t, factory(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, factory(t)) })
	t.Run("KeysOrder", func(t *testing.T) { testKeysOrder(t, factory(t)) })
	t.Run("Overview", func(t *testing.T) { testOverview(t, factory(t)) })
	t.Run("Search", func(t *testing.T) { testSearch(t, factory(t)) })
	t.Run("Undo", func(t *testing.T) { testUndo(t, factory(t)) })
	t.Run("BackupRestore", func(t *testing.T) { testBackupRestore(t, factory(t)) })
	t.Run("Nuke", func(t *testing.T) { testNuke(t, factory(t)) })
}

func mustValues(t *testing.T, s ListStore, key string) []string {
	t.Helper()
	got, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return got
}

func expectValues(t *testing.T, s ListStore, key string, want ...string) {
	t.Helper()
	if got := mustValues(t, s, key); !slices.Equal(got, want) {
		t.Errorf("Get(%q) = %q, want %q", key, got, want)
	}
}

func testSetGet(t *testing.T, s ListStore) {
	ctx := context.Background()

	if err := s.Set(ctx, "fruit", "apple", "pear"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	expectValues(t, s, "fruit", "apple", "pear")

	if err := s.Set(ctx, "fruit", "kiwi"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	expectValues(t, s, "fruit", "kiwi")

	if err := s.Set(ctx, "empty"); err != nil {
		t.Fatalf("Set with no values failed: %v", err)
	}
	if got := mustValues(t, s, "empty"); len(got) != 0 {
		t.Errorf("Get(empty) = %q, want no values", got)
	}

	// The returned slice is a copy.
	got := mustValues(t, s, "fruit")
	got[0] = "changed"
	expectValues(t, s, "fruit", "kiwi")
}

func testGetMissing(t *testing.T, s ListStore) {
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrKeyNotFound", err)
	}
}

func testAdd(t *testing.T, s ListStore) {
	ctx := context.Background()

	if err := s.Add(ctx, "k", "a", "b", "a"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	expectValues(t, s, "k", "a", "b")

	if err := s.Add(ctx, "k", "b", "c"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	expectValues(t, s, "k", "a", "b", "c")
}

func testDelete(t *testing.T, s ListStore) {
	ctx := context.Background()

	if err := s.Set(ctx, "k", "a", "b", "a", "c"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Delete(ctx, "k", "a"); err != nil {
		t.Fatalf("Delete value failed: %v", err)
	}
	expectValues(t, s, "k", "b", "c")

	if err := s.Delete(ctx, "k", "zzz"); err != nil {
		t.Fatalf("Delete absent value failed: %v", err)
	}
	expectValues(t, s, "k", "b", "c")

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete key failed: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrKeyNotFound", err)
	}

	if err := s.Delete(ctx, "never"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func testReplace(t *testing.T, s ListStore) {
	ctx := context.Background()

	if err := s.Set(ctx, "k", "a", "b", "a"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Replace(ctx, "k", "a", "z"); err != nil {
		t.Fatalf("Replace value failed: %v", err)
	}
	expectValues(t, s, "k", "z", "b", "z")

	if err := s.Replace(ctx, "k", "renamed"); err != nil {
		t.Fatalf("Replace key failed: %v", err)
	}
	expectValues(t, s, "renamed", "z", "b", "z")
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("old key still present after rename: %v", err)
	}

	if err := s.Replace(ctx, "renamed", "a", "b", "c"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Replace with three args error = %v, want ErrInvalidArgument", err)
	}
	if err := s.Replace(ctx, "renamed"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Replace with no args error = %v, want ErrInvalidArgument", err)
	}
}

func testKeysOrder(t *testing.T, s ListStore) {
	ctx := context.Background()

	for _, k := range []string{"c", "a", "b"} {
		if err := s.Set(ctx, k, "v"); err != nil {
			t.Fatalf("Set(%q) failed: %v", k, err)
		}
	}
	// Overwriting keeps the original position.
	if err := s.Set(ctx, "c", "w"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := s.Keys(ctx); !slices.Equal(got, []string{"c", "a", "b"}) {
		t.Errorf("Keys() = %q, want [c a b]", got)
	}
	if snap := s.Snapshot(ctx); !slices.Equal(snap.Keys(), []string{"c", "a", "b"}) {
		t.Errorf("Snapshot keys = %q, want [c a b]", snap.Keys())
	}
}

func testOverview(t *testing.T, s ListStore) {
	ctx := context.Background()

	if got := s.Overview(ctx); got != "" {
		t.Errorf("Overview of empty store = %q, want empty", got)
	}
	if err := s.Set(ctx, "test_key1", "value1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "test_key2", "value1", "value2"); err != nil {
		t.Fatal(err)
	}
	want := "test_key1: 1 items\ntest_key2: 2 items\n"
	if got := s.Overview(ctx); got != want {
		t.Errorf("Overview() = %q, want %q", got, want)
	}
}

func testSearch(t *testing.T, s ListStore) {
	ctx := context.Background()

	if err := s.Set(ctx, "test_key", "test_value"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "another_key", "another_value"); err != nil {
		t.Fatal(err)
	}

	got := s.Search(ctx, "test")
	if !slices.Equal(got.Keys, []string{"test_key"}) {
		t.Errorf("Search keys = %q, want [test_key]", got.Keys)
	}
	if len(got.Pairs) != 1 || got.Pairs[0] != (Pair{Key: "test_key", Value: "test_value"}) {
		t.Errorf("Search pairs = %v", got.Pairs)
	}

	got = s.Search(ctx, "")
	if len(got.Keys) != 0 || len(got.Pairs) != 0 {
		t.Errorf("empty query matched %v", got)
	}
}

func testUndo(t *testing.T, s ListStore) {
	ctx := context.Background()

	if err := s.Set(ctx, "a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "a", "2"); err != nil {
		t.Fatal(err)
	}
	changed, err := s.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if !changed {
		t.Error("Undo reported no change")
	}
	expectValues(t, s, "a", "1")

	changed, err = s.Undo(ctx)
	if err != nil {
		t.Fatalf("second Undo failed: %v", err)
	}
	if changed {
		t.Error("second Undo reported a change")
	}
	expectValues(t, s, "a", "1")
}

func testBackupRestore(t *testing.T, s ListStore) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "backup.json")

	if err := s.Set(ctx, "a", "1", "2"); err != nil {
		t.Fatal(err)
	}
	if err := s.Backup(ctx, path); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if err := s.Set(ctx, "b", "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(ctx, path); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := s.Keys(ctx); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Keys after Restore = %q, want [a]", got)
	}
	expectValues(t, s, "a", "1", "2")

	if err := s.Restore(ctx, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Restore of missing file succeeded")
	}
	expectValues(t, s, "a", "1", "2")
}

func testNuke(t *testing.T, s ListStore) {
	ctx := context.Background()

	if err := s.Set(ctx, "a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Nuke(ctx); err != nil {
		t.Fatalf("Nuke failed: %v", err)
	}
	if got := s.Keys(ctx); len(got) != 0 {
		t.Errorf("Keys after Nuke = %q, want none", got)
	}
	if changed, err := s.Undo(ctx); err != nil || changed {
		t.Errorf("Undo after Nuke = %v, %v; want false, nil", changed, err)
	}
}
