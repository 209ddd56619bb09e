package cmd

import (
	"context"
	"encoding/json"
	"fmt"
)

// KeyCountJSON is one line of the overview in JSON form.
type KeyCountJSON struct {
	Key   string `json:"key"`
	Items int    `json:"items"`
}

func (a *App) runOverview(ctx context.Context) error {
	if a.JSON {
		snap := a.Store.Snapshot(ctx)
		counts := make([]KeyCountJSON, 0, snap.Len())
		for _, k := range snap.Keys() {
			vals, _ := snap.Get(k)
			counts = append(counts, KeyCountJSON{Key: k, Items: len(vals)})
		}
		return json.NewEncoder(a.Out).Encode(counts)
	}
	fmt.Fprint(a.Out, a.Store.Overview(ctx))
	return nil
}

func (a *App) runKeys(ctx context.Context) error {
	keys := a.Store.Keys(ctx)
	if a.JSON {
		if keys == nil {
			keys = []string{}
		}
		return json.NewEncoder(a.Out).Encode(keys)
	}
	for _, k := range keys {
		fmt.Fprintln(a.Out, k)
	}
	return nil
}

// runFind prints matching keys and key/value pairs for query.
func (a *App) runFind(ctx context.Context, query string) error {
	result := a.Store.Search(ctx, query)
	if a.JSON {
		return json.NewEncoder(a.Out).Encode(result)
	}

	fmt.Fprintln(a.Out, a.SuccessColor("key results:"))
	for _, k := range result.Keys {
		fmt.Fprintf(a.Out, "  %s\n", k)
	}
	fmt.Fprintln(a.Out, a.SuccessColor("value results ([k, v]):"))
	for _, p := range result.Pairs {
		fmt.Fprintf(a.Out, "  %s: %s\n", p.Key, p.Value)
	}
	if len(result.Keys) == 0 && len(result.Pairs) == 0 {
		fmt.Fprintln(a.Out, a.WarnColor("No matches found."))
	}
	return nil
}
