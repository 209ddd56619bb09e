package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kv/internal/clipboard"
	"kv/internal/config"
	"kv/internal/config/yamlstore"
	"kv/internal/kvstorage"
	"kv/internal/kvstorage/filesystem"

	"github.com/charmbracelet/log"
)

type testEnv struct {
	app    *App
	store  *filesystem.Store
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	store, err := filesystem.Open(context.Background(), dir, filesystem.Options{})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	cfg, err := yamlstore.New(filepath.Join(dir, config.ConfigFileName))
	if err != nil {
		t.Fatalf("failed to open config: %v", err)
	}
	config.ApplyDefaults(cfg)
	settings, err := config.Load(cfg)
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}

	var out, errOut bytes.Buffer
	app := &App{
		Store:       store,
		ConfigStore: cfg,
		Settings:    settings,
		StoreDir:    dir,
		Logger:      log.New(&errOut),
		In:          strings.NewReader(""),
		Out:         &out,
		Err:         &errOut,
	}
	return &testEnv{app: app, store: store, out: &out, errOut: &errOut}
}

// run executes the root command with args and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	e.out.Reset()
	root := newRootCmd(NewTestProvider(e.app))
	root.SetArgs(args)
	root.SetOut(e.out)
	root.SetErr(e.errOut)
	err := root.Execute()
	return e.out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("kv %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestSetAndGet(t *testing.T) {
	env := setupTestApp(t)

	if out := env.mustRun(t, "fruit", "apple", "pear"); out != "" {
		t.Errorf("set printed %q, want nothing", out)
	}
	if out := env.mustRun(t, "fruit"); out != "apple\npear\n" {
		t.Errorf("get = %q, want %q", out, "apple\npear\n")
	}
}

func TestGet_NotFound(t *testing.T) {
	env := setupTestApp(t)

	_, err := env.run(t, "missing")
	if !errors.Is(err, kvstorage.ErrKeyNotFound) {
		t.Errorf("error = %v, want ErrKeyNotFound", err)
	}
}

func TestGet_JSON(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "fruit", "apple")

	out := env.mustRun(t, "--json", "fruit")
	if out != "[\"apple\"]\n" {
		t.Errorf("get --json = %q", out)
	}
}

func TestSet_ValueStartingWithDash(t *testing.T) {
	env := setupTestApp(t)

	env.mustRun(t, "flags", "-v", "--verbose")
	if out := env.mustRun(t, "flags"); out != "-v\n--verbose\n" {
		t.Errorf("get = %q, want dash values kept", out)
	}
}

func TestOverview(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "test_key1", "value1")
	env.mustRun(t, "test_key2", "value1", "value2")

	out := env.mustRun(t)
	if want := "test_key1: 1 items\ntest_key2: 2 items\n"; out != want {
		t.Errorf("overview = %q, want %q", out, want)
	}

	out = env.mustRun(t, "--json")
	if want := `[{"key":"test_key1","items":1},{"key":"test_key2","items":2}]` + "\n"; out != want {
		t.Errorf("overview --json = %q, want %q", out, want)
	}
}

func TestKeys(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "test_key1", "value1")
	env.mustRun(t, "test_key2", "value1", "value2")

	if out := env.mustRun(t, "keys"); out != "test_key1\ntest_key2\n" {
		t.Errorf("keys = %q", out)
	}
}

func TestKeys_EmptyJSON(t *testing.T) {
	env := setupTestApp(t)
	if out := env.mustRun(t, "--json", "keys"); out != "[]\n" {
		t.Errorf("keys --json = %q, want []", out)
	}
}

func TestAddDeleteReplace(t *testing.T) {
	env := setupTestApp(t)

	env.mustRun(t, "fruit", "apple", "pear")
	env.mustRun(t, "add", "fruit", "pear", "kiwi")
	if out := env.mustRun(t, "fruit"); out != "apple\npear\nkiwi\n" {
		t.Errorf("after add = %q", out)
	}

	env.mustRun(t, "delete", "fruit", "pear")
	if out := env.mustRun(t, "fruit"); out != "apple\nkiwi\n" {
		t.Errorf("after delete value = %q", out)
	}

	env.mustRun(t, "replace", "fruit", "kiwi", "mango")
	if out := env.mustRun(t, "fruit"); out != "apple\nmango\n" {
		t.Errorf("after replace value = %q", out)
	}

	env.mustRun(t, "replace", "fruit", "fruits")
	if out := env.mustRun(t, "fruits"); out != "apple\nmango\n" {
		t.Errorf("after rename = %q", out)
	}

	env.mustRun(t, "delete", "fruits")
	if _, err := env.run(t, "fruits"); !errors.Is(err, kvstorage.ErrKeyNotFound) {
		t.Errorf("get after delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestReplace_WrongArity(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "k", "v")

	_, err := env.run(t, "replace", "k", "a", "b", "c")
	if !errors.Is(err, kvstorage.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestAdd_MissingKey(t *testing.T) {
	env := setupTestApp(t)
	_, err := env.run(t, "add")
	if !errors.Is(err, kvstorage.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestFind(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "test_key", "test_value")
	env.mustRun(t, "another_key", "another_value")

	out := env.mustRun(t, "find", "test")
	want := "key results:\n  test_key\nvalue results ([k, v]):\n  test_key: test_value\n"
	if out != want {
		t.Errorf("find = %q, want %q", out, want)
	}

	out = env.mustRun(t, "find", "zzz")
	if !strings.Contains(out, "No matches found.") {
		t.Errorf("find zzz = %q, want no matches message", out)
	}
}

func TestFind_JSON(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "a", "x")

	out := env.mustRun(t, "--json", "find", "x")
	want := `{"keys":[],"pairs":[{"key":"a","value":"x"}]}` + "\n"
	if out != want {
		t.Errorf("find --json = %q, want %q", out, want)
	}
}

func TestUndo(t *testing.T) {
	env := setupTestApp(t)

	env.mustRun(t, "a", "1")
	env.mustRun(t, "a", "2")
	if out := env.mustRun(t, "undo"); out != "" {
		t.Errorf("undo printed %q, want nothing", out)
	}
	if out := env.mustRun(t, "a"); out != "1\n" {
		t.Errorf("after undo = %q, want 1", out)
	}
	if out := env.mustRun(t, "undo"); !strings.Contains(out, "nothing to undo") {
		t.Errorf("second undo = %q, want nothing to undo", out)
	}
	if out := env.mustRun(t, "a"); out != "1\n" {
		t.Errorf("after second undo = %q, want 1", out)
	}
}

func TestDump_Formats(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "fruit", "apple")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"dump"}, "{\n  \"fruit\": [\n    \"apple\"\n  ]\n}\n"},
		{[]string{"--format", "yaml", "dump"}, "fruit:\n  - apple\n"},
		{[]string{"-f", "toml", "dump"}, "fruit = [\"apple\"]\n"},
	}
	for _, tt := range tests {
		env.app.Format = ""
		if out := env.mustRun(t, tt.args...); out != tt.want {
			t.Errorf("kv %v = %q, want %q", tt.args, out, tt.want)
		}
	}
}

func TestDump_SettingsFormat(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "fruit", "apple")
	env.app.Settings.DumpFormat = "yaml"

	if out := env.mustRun(t, "dump"); out != "fruit:\n  - apple\n" {
		t.Errorf("dump = %q, want yaml", out)
	}
}

func TestDump_UnknownFormat(t *testing.T) {
	env := setupTestApp(t)
	_, err := env.run(t, "--format", "xml", "dump")
	if !errors.Is(err, kvstorage.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestBackupRestore(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "fruit", "apple", "pear")

	path := filepath.Join(t.TempDir(), "backup.json")
	if out := env.mustRun(t, "backup", path); !strings.Contains(out, path) {
		t.Errorf("backup output = %q", out)
	}

	env.mustRun(t, "fruit", "changed")
	out := env.mustRun(t, "restore", path)
	if !strings.Contains(out, "restored 1 keys") {
		t.Errorf("restore output = %q", out)
	}
	if out := env.mustRun(t, "fruit"); out != "apple\npear\n" {
		t.Errorf("after restore = %q", out)
	}
}

func TestBackup_MissingDir(t *testing.T) {
	env := setupTestApp(t)
	_, err := env.run(t, "backup", filepath.Join(t.TempDir(), "missing", "b.json"))
	if !errors.Is(err, kvstorage.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestNuke(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "fruit", "apple")

	if out := env.mustRun(t, "nuke"); !strings.Contains(out, "store deleted") {
		t.Errorf("nuke output = %q", out)
	}
	if out := env.mustRun(t); out != "" {
		t.Errorf("overview after nuke = %q, want empty", out)
	}
}

func TestHelp(t *testing.T) {
	env := setupTestApp(t)
	for _, word := range []string{"help", "h"} {
		out := env.mustRun(t, word)
		if !strings.Contains(out, "kv replace <key> <new_key>") {
			t.Errorf("kv %s output missing usage:\n%s", word, out)
		}
	}
}

type fakeCopier struct {
	text string
	err  error
}

func (f *fakeCopier) Copy(ctx context.Context, text string) error {
	f.text = text
	return f.err
}

func TestGet_Copy(t *testing.T) {
	env := setupTestApp(t)
	copier := &fakeCopier{}
	env.app.Clipboard = copier
	env.mustRun(t, "fruit", "apple", "pear")

	out := env.mustRun(t, "--copy", "fruit")
	if copier.text != "apple\npear" {
		t.Errorf("copied %q, want %q", copier.text, "apple\npear")
	}
	if !strings.Contains(out, "copied and ready to paste") {
		t.Errorf("output = %q", out)
	}
}

func TestGet_CopyNoUtility(t *testing.T) {
	env := setupTestApp(t)
	env.app.Clipboard = &fakeCopier{err: clipboard.ErrNoClipboardUtility}
	env.mustRun(t, "fruit", "apple")

	out, err := env.run(t, "-c", "fruit")
	if !errors.Is(err, clipboard.ErrNoClipboardUtility) {
		t.Errorf("error = %v, want ErrNoClipboardUtility", err)
	}
	if out != "apple\n" {
		t.Errorf("output = %q, want values printed as fallback", out)
	}
}

func TestRun_PersistErrorIsLogged(t *testing.T) {
	env := setupTestApp(t)

	// A directory in place of the data file makes the rename fail.
	blocker := filepath.Join(env.app.StoreDir, filesystem.DataFile)
	if err := os.Mkdir(blocker, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := env.run(t, "k", "v"); err != nil {
		t.Fatalf("persist failure should not fail the command: %v", err)
	}
	if !strings.Contains(env.errOut.String(), "error saving store") {
		t.Errorf("stderr = %q, want save error logged", env.errOut.String())
	}
}

func TestGet_TrailingCopyFlag(t *testing.T) {
	env := setupTestApp(t)
	copier := &fakeCopier{}
	env.app.Clipboard = copier
	env.mustRun(t, "fruit", "apple", "pear")

	out := env.mustRun(t, "fruit", "--copy")
	if copier.text != "apple\npear" {
		t.Errorf("copied %q, want %q", copier.text, "apple\npear")
	}
	if !strings.Contains(out, "copied and ready to paste") {
		t.Errorf("output = %q", out)
	}
	env.app.Copy = false
	if out := env.mustRun(t, "fruit"); out != "apple\npear\n" {
		t.Errorf("values after trailing --copy = %q, want unchanged", out)
	}
}

func TestDump_TrailingFormatFlag(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "fruit", "apple")

	for _, args := range [][]string{
		{"dump", "--format", "yaml"},
		{"dump", "--format=yaml"},
		{"dump", "-f", "yaml"},
	} {
		env.app.Format = ""
		if out := env.mustRun(t, args...); out != "fruit:\n  - apple\n" {
			t.Errorf("kv %v = %q, want yaml", args, out)
		}
	}
}

func TestNuke_TrailingYesFlag(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "fruit", "apple")

	if out := env.mustRun(t, "nuke", "--yes"); !strings.Contains(out, "store deleted") {
		t.Errorf("nuke output = %q", out)
	}
	if !env.app.AssumeYes {
		t.Error("trailing --yes not applied")
	}
}

func TestSet_DoubleDashKeepsFlagValues(t *testing.T) {
	env := setupTestApp(t)

	env.mustRun(t, "opts", "--", "--json", "-c")
	if env.app.JSON || env.app.Copy {
		t.Fatal("values after -- were applied as flags")
	}
	if out := env.mustRun(t, "opts"); out != "--json\n-c\n" {
		t.Errorf("get = %q, want literal flag values", out)
	}
}

func TestTrailingFlag_InvalidValue(t *testing.T) {
	env := setupTestApp(t)
	_, err := env.run(t, "keys", "--json=maybe")
	if !errors.Is(err, kvstorage.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestExtraArguments_Rejected(t *testing.T) {
	env := setupTestApp(t)
	env.mustRun(t, "fruit", "apple")

	for _, args := range [][]string{
		{"keys", "extra"},
		{"dump", "yaml"},
		{"undo", "now"},
		{"nuke", "all"},
		{"find", "a", "b"},
	} {
		if _, err := env.run(t, args...); !errors.Is(err, kvstorage.ErrInvalidArgument) {
			t.Errorf("kv %v error = %v, want ErrInvalidArgument", args, err)
		}
	}
	if out := env.mustRun(t, "fruit"); out != "apple\n" {
		t.Errorf("store changed by rejected commands: %q", out)
	}
}

func TestSplitTrailingFlags(t *testing.T) {
	root := newRootCmd(&AppProvider{})
	root.InitDefaultHelpFlag()

	tests := []struct {
		args       []string
		positional []string
		flags      []string
	}{
		{[]string{"fruit"}, []string{"fruit"}, nil},
		{[]string{"fruit", "--copy"}, []string{"fruit"}, []string{"--copy"}},
		{[]string{"dump", "-f", "toml", "--json"}, []string{"dump"}, []string{"-f", "toml", "--json"}},
		{[]string{"flags", "-v", "--verbose"}, []string{"flags", "-v", "--verbose"}, nil},
		{[]string{"k", "--unknown", "--json"}, []string{"k", "--unknown"}, []string{"--json"}},
		{[]string{"dump", "--format"}, []string{"dump", "--format"}, nil},
		{[]string{"k", "--", "--json"}, []string{"k", "--json"}, nil},
		{[]string{"--json"}, []string{"--json"}, nil},
		{[]string{"k", "-p", "/tmp/store"}, []string{"k"}, []string{"-p", "/tmp/store"}},
	}
	for _, tt := range tests {
		positional, flags := splitTrailingFlags(root, tt.args)
		if strings.Join(positional, " ") != strings.Join(tt.positional, " ") || len(positional) != len(tt.positional) {
			t.Errorf("split(%q) positional = %q, want %q", tt.args, positional, tt.positional)
		}
		if strings.Join(flags, " ") != strings.Join(tt.flags, " ") || len(flags) != len(tt.flags) {
			t.Errorf("split(%q) flags = %q, want %q", tt.args, flags, tt.flags)
		}
	}
}
