package cmd

import (
	"context"
	"errors"
	"fmt"

	"kv/internal/command"
	"kv/internal/kvstorage"
)

// Run executes one resolved command against the store.
//
// Failures to save the store are logged and swallowed: the command's
// in-memory effect already happened and nothing is retried.
func (a *App) Run(ctx context.Context, c command.Command) error {
	err := a.dispatch(ctx, c)
	if errors.Is(err, kvstorage.ErrPersist) {
		a.logger().Error("error saving store", "command", c.Kind.String(), "err", err)
		return nil
	}
	return err
}

func (a *App) dispatch(ctx context.Context, c command.Command) error {
	switch c.Kind {
	case command.Overview:
		return a.runOverview(ctx)
	case command.Get:
		return a.runGet(ctx, c.Key)
	case command.Set:
		return a.runSet(ctx, c.Key, c.Values)
	case command.Add:
		return a.runAdd(ctx, c.Key, c.Values)
	case command.Delete:
		return a.runDelete(ctx, c.Key, c.Values)
	case command.Replace:
		return a.runReplace(ctx, c.Key, c.Values)
	case command.Find:
		return a.runFind(ctx, c.Key)
	case command.Keys:
		return a.runKeys(ctx)
	case command.Dump:
		return a.runDump(ctx)
	case command.Backup:
		return a.runBackup(ctx, c.Key)
	case command.Restore:
		return a.runRestore(ctx, c.Key)
	case command.Undo:
		return a.runUndo(ctx)
	case command.Nuke:
		return a.runNuke(ctx)
	case command.Help:
		fmt.Fprintln(a.Out, "usage: kv [command] [key] [value...] (see kv --help)")
		return nil
	}
	return fmt.Errorf("unhandled command %s", c.Kind)
}
