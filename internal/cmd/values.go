package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kv/internal/clipboard"
	"kv/internal/kvstorage"
)

// runGet prints the values of key, one per line, or copies them to the
// clipboard when --copy is set.
func (a *App) runGet(ctx context.Context, key string) error {
	vals, err := a.Store.Get(ctx, key)
	if err != nil {
		return err
	}

	if a.Copy {
		if a.Clipboard == nil {
			return clipboard.ErrNoClipboardUtility
		}
		err := a.Clipboard.Copy(ctx, strings.Join(vals, "\n"))
		if err == nil {
			fmt.Fprintln(a.Out, a.SuccessColor("copied and ready to paste"))
			return nil
		}
		if !errors.Is(err, clipboard.ErrNoClipboardUtility) {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		a.printValues(vals)
		return err
	}

	if a.JSON {
		return json.NewEncoder(a.Out).Encode(vals)
	}
	a.printValues(vals)
	return nil
}

func (a *App) printValues(vals []string) {
	for _, v := range vals {
		fmt.Fprintln(a.Out, v)
	}
}

func (a *App) runSet(ctx context.Context, key string, values []string) error {
	if err := kvstorage.ValidateKey(key); err != nil {
		return err
	}
	return a.Store.Set(ctx, key, values...)
}

func (a *App) runAdd(ctx context.Context, key string, values []string) error {
	if err := kvstorage.ValidateKey(key); err != nil {
		return err
	}
	return a.Store.Add(ctx, key, values...)
}

func (a *App) runDelete(ctx context.Context, key string, values []string) error {
	if err := kvstorage.ValidateKey(key); err != nil {
		return err
	}
	return a.Store.Delete(ctx, key, values...)
}

func (a *App) runReplace(ctx context.Context, key string, args []string) error {
	if err := kvstorage.ValidateKey(key); err != nil {
		return err
	}
	return a.Store.Replace(ctx, key, args...)
}
