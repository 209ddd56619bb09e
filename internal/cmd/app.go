// Package cmd implements the kv command-line interface.
package cmd

import (
	"context"
	"io"
	"os"

	"kv/internal/config"
	"kv/internal/kvstorage"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Copier copies text to the system clipboard.
type Copier interface {
	Copy(ctx context.Context, text string) error
}

// App holds application state shared across commands.
type App struct {
	Store       kvstorage.ListStore
	ConfigStore config.Store
	Settings    config.Settings
	StoreDir    string // path to the store directory
	Clipboard   Copier
	Logger      *log.Logger
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
	JSON        bool   // output in JSON format
	Copy        bool   // copy get results to the clipboard
	Format      string // dump format override
	AssumeYes   bool   // skip confirmation prompts
}

// logger returns the app logger, or a discarding one if none is set.
func (a *App) logger() *log.Logger {
	if a.Logger == nil {
		a.Logger = log.New(io.Discard)
	}
	return a.Logger
}

// isTerminal reports whether w is a terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SuccessColor returns the string wrapped in green ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) SuccessColor(s string) string {
	if isTerminal(a.Out) {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

// WarnColor returns the string wrapped in orange ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) WarnColor(s string) string {
	if isTerminal(a.Out) {
		return "\033[38;5;214m" + s + "\033[0m"
	}
	return s
}
