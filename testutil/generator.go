// Package testutil provides test utilities for kv storage testing.
package testutil

import (
	"context"
	"fmt"
	"math/rand"

	"kv/internal/kvstorage"
)

// ListGenerator fills a store with keys and values for tests and benchmarks.
type ListGenerator struct {
	storage kvstorage.ListStore
	rng     *rand.Rand
	keys    []string
}

// NewListGenerator creates a generator writing to s. The same seed always
// produces the same keys and values.
func NewListGenerator(s kvstorage.ListStore, seed int64) *ListGenerator {
	return &ListGenerator{
		storage: s,
		rng:     rand.New(rand.NewSource(seed)),
		keys:    make([]string, 0),
	}
}

// Keys returns all keys created by this generator, in creation order.
func (g *ListGenerator) Keys() []string {
	return g.keys
}

// Cleanup deletes all keys created by this generator.
func (g *ListGenerator) Cleanup(ctx context.Context) error {
	for i := len(g.keys) - 1; i >= 0; i-- {
		if err := g.storage.Delete(ctx, g.keys[i]); err != nil {
			return fmt.Errorf("cleanup key %s: %w", g.keys[i], err)
		}
	}
	g.keys = g.keys[:0]
	return nil
}

// GenerateKeys creates n keys named key-0000, key-0001, ... each holding
// between 1 and maxValues values.
func (g *ListGenerator) GenerateKeys(ctx context.Context, n, maxValues int) error {
	if maxValues <= 0 {
		maxValues = 1
	}
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key-%04d", len(g.keys))
		values := make([]string, 1+g.rng.Intn(maxValues))
		for j := range values {
			values[j] = g.value()
		}
		if err := g.storage.Set(ctx, key, values...); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		g.keys = append(g.keys, key)
	}
	return nil
}

// GenerateShared creates n keys that all hold value, plus a few random
// values, so searches for value match every generated key.
func (g *ListGenerator) GenerateShared(ctx context.Context, n int, value string) error {
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("shared-%04d", len(g.keys))
		if err := g.storage.Set(ctx, key, g.value(), value, g.value()); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		g.keys = append(g.keys, key)
	}
	return nil
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// value returns a random 8-letter lowercase string.
func (g *ListGenerator) value() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = alphabet[g.rng.Intn(len(alphabet))]
	}
	return string(b)
}
