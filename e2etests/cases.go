package e2etests

import (
	"path/filepath"
	"strings"
)

// 01: Set a key, read it back in text and JSON.
func caseSetGet(r *Runner, sandbox string) (string, error) {
	var out strings.Builder

	result := r.Run(sandbox, "fruit", "apple", "pear")
	sectionExitCode(&out, "set", result.ExitCode)

	result, err := mustRun(r, sandbox, "fruit")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "get", result.Stdout)

	result, err = mustRun(r, sandbox)
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "overview", result.Stdout)

	result, err = mustRun(r, sandbox, "--json", "fruit")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "get json", result.Stdout)

	return out.String(), nil
}

// 02: Append values, delete a value, then the whole key.
func caseAddDelete(r *Runner, sandbox string) (string, error) {
	var out strings.Builder

	if err := runAll(r, sandbox,
		[]string{"fruit", "apple"},
		[]string{"add", "fruit", "pear", "apple", "kiwi"},
	); err != nil {
		return "", err
	}
	result, err := mustRun(r, sandbox, "fruit")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "after add", result.Stdout)

	if _, err := mustRun(r, sandbox, "delete", "fruit", "pear"); err != nil {
		return "", err
	}
	result, err = mustRun(r, sandbox, "fruit")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "after delete value", result.Stdout)

	if _, err := mustRun(r, sandbox, "delete", "fruit"); err != nil {
		return "", err
	}
	result = r.Run(sandbox, "fruit")
	sectionExitCode(&out, "get deleted", result.ExitCode)
	section(&out, sandbox, "get deleted stderr", result.Stderr)

	return out.String(), nil
}

// 03: Replace a value and rename a key, undoing each.
func caseReplaceUndo(r *Runner, sandbox string) (string, error) {
	var out strings.Builder

	if err := runAll(r, sandbox,
		[]string{"a", "1", "2"},
		[]string{"replace", "a", "2", "3"},
	); err != nil {
		return "", err
	}
	result, err := mustRun(r, sandbox, "a")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "after replace value", result.Stdout)

	if _, err := mustRun(r, sandbox, "undo"); err != nil {
		return "", err
	}
	result, err = mustRun(r, sandbox, "a")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "after undo", result.Stdout)

	if _, err := mustRun(r, sandbox, "replace", "a", "b"); err != nil {
		return "", err
	}
	result, err = mustRun(r, sandbox, "keys")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "keys after rename", result.Stdout)

	if _, err := mustRun(r, sandbox, "undo"); err != nil {
		return "", err
	}
	result, err = mustRun(r, sandbox, "keys")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "keys after undo", result.Stdout)

	result, err = mustRun(r, sandbox, "undo")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "second undo", result.Stdout)

	return out.String(), nil
}

// 04: List keys and search keys and values.
func caseFindKeys(r *Runner, sandbox string) (string, error) {
	var out strings.Builder

	if err := runAll(r, sandbox,
		[]string{"test_key", "test_value"},
		[]string{"another_key", "another_value"},
	); err != nil {
		return "", err
	}

	result, err := mustRun(r, sandbox, "keys")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "keys", result.Stdout)

	result, err = mustRun(r, sandbox, "find", "test")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "find", result.Stdout)

	result, err = mustRun(r, sandbox, "--json", "find", "another")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "find json", result.Stdout)

	return out.String(), nil
}

// 05: Dump, back up, change, restore, then nuke.
func caseDumpBackupRestore(r *Runner, sandbox string) (string, error) {
	var out strings.Builder
	backup := filepath.Join(sandbox, "b.json")

	if _, err := mustRun(r, sandbox, "fruit", "apple"); err != nil {
		return "", err
	}

	result, err := mustRun(r, sandbox, "dump")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "dump", result.Stdout)

	result, err = mustRun(r, sandbox, "--format", "yaml", "dump")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "dump yaml", result.Stdout)

	result, err = mustRun(r, sandbox, "backup", backup)
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "backup", result.Stdout)

	if _, err := mustRun(r, sandbox, "fruit", "changed"); err != nil {
		return "", err
	}
	result, err = mustRun(r, sandbox, "restore", backup)
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "restore", result.Stdout)

	result, err = mustRun(r, sandbox, "fruit")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "get after restore", result.Stdout)

	result, err = mustRun(r, sandbox, "--yes", "nuke")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "nuke", result.Stdout)

	result, err = mustRun(r, sandbox)
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "overview after nuke", result.Stdout)

	return out.String(), nil
}

// 06: Config set/get/unset/validate and its effect on dump.
func caseConfig(r *Runner, sandbox string) (string, error) {
	var out strings.Builder

	result, err := mustRun(r, sandbox, "config", "set", "dump.format", "yaml")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "config set", result.Stdout)

	result, err = mustRun(r, sandbox, "config", "get", "dump.format")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "config get", result.Stdout)

	if _, err := mustRun(r, sandbox, "k", "v"); err != nil {
		return "", err
	}
	result, err = mustRun(r, sandbox, "dump")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "dump with config format", result.Stdout)

	result = r.Run(sandbox, "config", "set", "log.level", "loud")
	sectionExitCode(&out, "config set invalid", result.ExitCode)

	result, err = mustRun(r, sandbox, "config", "unset", "dump.format")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "config unset", result.Stdout)

	result, err = mustRun(r, sandbox, "config", "validate")
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "config validate", result.Stdout)

	return out.String(), nil
}

// 07: Argument errors exit non-zero and leave the store alone.
func caseErrors(r *Runner, sandbox string) (string, error) {
	var out strings.Builder

	sectionExitCode(&out, "get missing", r.Run(sandbox, "missing").ExitCode)
	sectionExitCode(&out, "replace without args", r.Run(sandbox, "replace").ExitCode)
	sectionExitCode(&out, "backup into missing dir",
		r.Run(sandbox, "backup", filepath.Join(sandbox, "nope", "b.json")).ExitCode)
	sectionExitCode(&out, "unknown dump format", r.Run(sandbox, "--format", "xml", "dump").ExitCode)
	sectionExitCode(&out, "keys with extra argument", r.Run(sandbox, "keys", "extra").ExitCode)
	sectionExitCode(&out, "nuke with extra argument", r.Run(sandbox, "nuke", "all", "--yes").ExitCode)

	result, err := mustRun(r, sandbox)
	if err != nil {
		return "", err
	}
	section(&out, sandbox, "overview", result.Stdout)

	return out.String(), nil
}
