package e2etests

import (
	"fmt"
	"strings"
)

// TestCase defines a named e2e test scenario.
type TestCase struct {
	Name string
	Fn   func(r *Runner, sandbox string) (string, error)
}

// testCases is the ordered registry of all e2e test cases.
var testCases = []TestCase{
	{"01_set_get", caseSetGet},
	{"02_add_delete", caseAddDelete},
	{"03_replace_undo", caseReplaceUndo},
	{"04_find_keys", caseFindKeys},
	{"05_dump_backup_restore", caseDumpBackupRestore},
	{"06_config", caseConfig},
	{"07_errors", caseErrors},
}

// section writes a section header and output to the builder. Sandbox
// paths become $SANDBOX and the trailing newline is dropped.
func section(out *strings.Builder, sandbox, label, content string) {
	content = strings.ReplaceAll(content, sandbox, "$SANDBOX")
	out.WriteString("=== ")
	out.WriteString(label)
	out.WriteString(" ===\n")
	out.WriteString(strings.TrimSuffix(content, "\n"))
	out.WriteString("\n\n")
}

// sectionExitCode writes a section with just an exit code.
func sectionExitCode(out *strings.Builder, label string, exitCode int) {
	out.WriteString("=== ")
	out.WriteString(label)
	out.WriteString(" ===\n")
	out.WriteString(fmt.Sprintf("EXIT_CODE: %d", exitCode))
	out.WriteString("\n\n")
}

// mustRun runs a command and returns the result, failing the test case on error.
func mustRun(r *Runner, sandbox string, args ...string) (RunResult, error) {
	result := r.Run(sandbox, args...)
	if result.ExitCode != 0 {
		return result, fmt.Errorf("command %v failed (exit %d): %s", args, result.ExitCode, result.Stderr)
	}
	return result, nil
}

// runAll runs each command in order, stopping at the first failure.
func runAll(r *Runner, sandbox string, cmds ...[]string) error {
	for _, args := range cmds {
		if _, err := mustRun(r, sandbox, args...); err != nil {
			return err
		}
	}
	return nil
}
