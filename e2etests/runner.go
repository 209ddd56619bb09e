// Package e2etests runs the kv binary against throwaway store directories
// and compares its output with expected files.
package e2etests

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes kv commands against a sandbox directory.
type Runner struct {
	KvCmd string // path to kv binary
}

// SetupSandbox creates a fresh, empty store directory.
func (r *Runner) SetupSandbox() (string, error) {
	dir, err := os.MkdirTemp("", "kv-e2e-*")
	if err != nil {
		return "", fmt.Errorf("setup sandbox failed: %w", err)
	}
	return dir, nil
}

// TeardownSandbox removes a sandbox directory.
func (r *Runner) TeardownSandbox(path string) error {
	return os.RemoveAll(path)
}

// RunResult holds the output of a command execution.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes a kv command with the given arguments.
// It sets KV_DIR to the sandbox path so the command uses the sandbox store.
func (r *Runner) Run(sandbox string, args ...string) RunResult {
	cmd := exec.Command(r.KvCmd, args...)
	cmd.Env = append(cleanEnv(), "KV_DIR="+sandbox)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// cleanEnv returns the current environment without KV_* overrides, so a
// developer's own settings cannot leak into expected output.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "KV_") {
			continue
		}
		env = append(env, kv)
	}
	return env
}
