// Package command resolves a kv argument list into a typed Command.
//
// The first argument is either a subcommand word (add, delete, find, ...)
// or a key. A bare key gets its values; a key followed by values sets them.
package command

import (
	"fmt"
	"strings"

	"kv/internal/kvstorage"
)

// Kind identifies the operation a Command performs.
type Kind int

const (
	Overview Kind = iota
	Get
	Set
	Add
	Delete
	Replace
	Find
	Keys
	Dump
	Backup
	Restore
	Undo
	Nuke
	Help
)

var kindNames = [...]string{
	Overview: "overview",
	Get:      "get",
	Set:      "set",
	Add:      "add",
	Delete:   "delete",
	Replace:  "replace",
	Find:     "find",
	Keys:     "keys",
	Dump:     "dump",
	Backup:   "backup",
	Restore:  "restore",
	Undo:     "undo",
	Nuke:     "nuke",
	Help:     "help",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// subcommands maps first-word subcommands to their kind. get, set and
// overview are positional forms and have no word of their own.
var subcommands = map[string]Kind{
	"add":     Add,
	"delete":  Delete,
	"replace": Replace,
	"find":    Find,
	"keys":    Keys,
	"dump":    Dump,
	"backup":  Backup,
	"restore": Restore,
	"undo":    Undo,
	"nuke":    Nuke,
	"help":    Help,
	"h":       Help,
}

// Command is one resolved invocation.
type Command struct {
	Kind   Kind
	Key    string   // key, query (Find) or path (Backup, Restore)
	Values []string // trailing arguments
}

// Parse resolves args into a Command. Subcommand words match
// case-insensitively; keys and values are passed through unchanged.
// Missing required arguments return kvstorage.ErrInvalidArgument.
func Parse(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{Kind: Overview}, nil
	}

	kind, ok := subcommands[strings.ToLower(args[0])]
	if !ok {
		if len(args) == 1 {
			return Command{Kind: Get, Key: args[0]}, nil
		}
		return Command{Kind: Set, Key: args[0], Values: args[1:]}, nil
	}

	rest := args[1:]
	cmd := Command{Kind: kind}
	if len(rest) > 0 {
		cmd.Key = rest[0]
		cmd.Values = rest[1:]
	}

	switch kind {
	case Add, Delete:
		if err := kvstorage.ValidateKey(cmd.Key); err != nil {
			return Command{}, usageError(kind, err)
		}
	case Replace:
		if err := kvstorage.ValidateKey(cmd.Key); err != nil {
			return Command{}, usageError(kind, err)
		}
		if n := len(cmd.Values); n != 1 && n != 2 {
			return Command{}, usageError(kind,
				fmt.Errorf("expected 1 or 2 values, got %d: %w", n, kvstorage.ErrInvalidArgument))
		}
	case Find:
		if cmd.Key == "" {
			return Command{}, usageError(kind,
				fmt.Errorf("query cannot be empty: %w", kvstorage.ErrInvalidArgument))
		}
		if err := noExtra(cmd.Values); err != nil {
			return Command{}, usageError(kind, err)
		}
	case Backup, Restore:
		if cmd.Key == "" {
			return Command{}, usageError(kind,
				fmt.Errorf("path cannot be empty: %w", kvstorage.ErrInvalidArgument))
		}
		if err := noExtra(cmd.Values); err != nil {
			return Command{}, usageError(kind, err)
		}
	case Keys, Dump, Undo, Nuke:
		if err := noExtra(rest); err != nil {
			return Command{}, usageError(kind, err)
		}
	}
	return cmd, nil
}

func noExtra(args []string) error {
	if len(args) == 0 {
		return nil
	}
	return fmt.Errorf("unexpected arguments %q: %w", args, kvstorage.ErrInvalidArgument)
}

func usageError(k Kind, err error) error {
	return fmt.Errorf("%s: %w (usage: kv %s)", k, err, Usage(k))
}

// Usage returns the argument synopsis for k.
func Usage(k Kind) string {
	switch k {
	case Overview:
		return ""
	case Get:
		return "<key>"
	case Set:
		return "<key> <value...>"
	case Add:
		return "add <key> <value...>"
	case Delete:
		return "delete <key> [value...]"
	case Replace:
		return "replace <key> <new_key> | replace <key> <old> <new>"
	case Find:
		return "find <query>"
	case Keys:
		return "keys"
	case Dump:
		return "dump"
	case Backup:
		return "backup <path>"
	case Restore:
		return "restore <path>"
	case Undo:
		return "undo"
	case Nuke:
		return "nuke"
	case Help:
		return "help"
	}
	return ""
}
