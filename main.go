// kv is a small command-line key-value store for lists of strings.
package main

import (
	"fmt"
	"os"

	"kv/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
