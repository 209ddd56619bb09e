package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"kv/internal/kvstorage"
)

func (a *App) runDump(ctx context.Context) error {
	name := a.Format
	if name == "" {
		name = a.Settings.DumpFormat
	}
	format, err := kvstorage.ParseFormat(name)
	if err != nil {
		return err
	}
	return kvstorage.Encode(a.Out, a.Store.Snapshot(ctx), format)
}

func (a *App) runBackup(ctx context.Context, path string) error {
	if err := kvstorage.ValidatePath(path); err != nil {
		return err
	}
	if err := a.Store.Backup(ctx, path); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s %s\n", a.SuccessColor("backup written to"), path)
	return nil
}

func (a *App) runRestore(ctx context.Context, path string) error {
	if err := kvstorage.ValidatePath(path); err != nil {
		return err
	}
	if err := a.Store.Restore(ctx, path); err != nil {
		return err
	}
	n := len(a.Store.Keys(ctx))
	fmt.Fprintf(a.Out, "%s %d keys from %s\n", a.SuccessColor("restored"), n, path)
	return nil
}

func (a *App) runUndo(ctx context.Context) error {
	changed, err := a.Store.Undo(ctx)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(a.Out, a.WarnColor("nothing to undo"))
	}
	return nil
}

// runNuke deletes the store. On a terminal it asks first unless --yes.
func (a *App) runNuke(ctx context.Context) error {
	if !a.AssumeYes && isTerminal(a.In) {
		n := len(a.Store.Keys(ctx))
		fmt.Fprintf(a.Out, "Delete the store in %s (%d keys)? [y/N] ", a.StoreDir, n)
		line, _ := bufio.NewReader(a.In).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Fprintln(a.Out, "aborted")
			return nil
		}
	}
	if err := a.Store.Nuke(ctx); err != nil {
		return fmt.Errorf("deleting store: %w", err)
	}
	fmt.Fprintln(a.Out, a.WarnColor("store deleted"))
	return nil
}
