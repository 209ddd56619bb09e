package cmd

import (
	"fmt"
	"strings"

	"kv/internal/kvstorage"

	"github.com/spf13/cobra"
)

// splitTrailingFlags separates root flags written after the command words
// (kv fruit --copy, kv dump --format yaml) from the positional arguments.
// Only a run of known flags at the very end counts, so values such as
// "-v --verbose" stay values. A "--" after the first argument disables the
// split and is dropped: kv k -- --json stores the literal "--json".
func splitTrailingFlags(cmd *cobra.Command, args []string) (positional, flags []string) {
	for i := 1; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[:i]...)
			return append(positional, args[i+1:]...), nil
		}
	}
	for start := 1; start < len(args); start++ {
		if onlyFlags(cmd, args[start:]) {
			return args[:start], args[start:]
		}
	}
	return args, nil
}

// onlyFlags reports whether args is made entirely of known root flags and
// their values.
func onlyFlags(cmd *cobra.Command, args []string) bool {
	for i := 0; i < len(args); i++ {
		name, short, inline := splitFlag(args[i])
		if name == "" {
			return false
		}
		fs := cmd.Flags()
		f := fs.Lookup(name)
		if short {
			f = fs.ShorthandLookup(name)
		}
		if f == nil {
			return false
		}
		if f.NoOptDefVal == "" && !inline {
			i++
			if i >= len(args) {
				return false
			}
		}
	}
	return true
}

// splitFlag returns the flag name in arg (--name, --name=v, -x or -x=v).
// name is empty when arg is not shaped like a flag.
func splitFlag(arg string) (name string, short, inline bool) {
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		name = arg[2:]
	case strings.HasPrefix(arg, "-") && len(arg) > 1 && arg[1] != '-':
		name, short = arg[1:], true
	default:
		return "", false, false
	}
	if i := strings.IndexByte(name, '='); i >= 0 {
		name, inline = name[:i], true
	}
	if name == "" || (short && len(name) != 1) {
		return "", false, false
	}
	return name, short, inline
}

// parseTrailingFlags applies flags found after the positional arguments.
// It reports whether --help was among them.
func parseTrailingFlags(cmd *cobra.Command, flags []string) (help bool, err error) {
	if len(flags) == 0 {
		return false, nil
	}
	if err := cmd.Flags().Parse(flags); err != nil {
		return false, fmt.Errorf("%v: %w", err, kvstorage.ErrInvalidArgument)
	}
	help, _ = cmd.Flags().GetBool("help")
	return help, nil
}
