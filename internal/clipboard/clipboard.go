// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrNoClipboardUtility is returned when the platform has no clipboard
// utility (pbcopy, xclip, xsel, wl-copy or clip).
var ErrNoClipboardUtility = errors.New("no clipboard utility found")

// Copier writes text to the clipboard.
type Copier struct {
	write       func(string) error
	unsupported func() bool
}

// New returns a Copier backed by the system clipboard.
func New() *Copier {
	return &Copier{
		write:       clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
	}
}

// Copy replaces the clipboard contents with text.
func (c *Copier) Copy(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.unsupported() {
		return ErrNoClipboardUtility
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
