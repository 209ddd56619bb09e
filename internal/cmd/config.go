package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"kv/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage kv configuration settings.

Configuration is stored as flat key-value pairs in config.yaml inside
the store directory. Core keys:
  backup.auto       take a snapshot at startup when one is due (true/false)
  backup.interval   minimum time between auto-backups (e.g. 24h)
  backup.file       auto-backup file, relative to the store directory
  log.level         debug, info, warn or error
  dump.format       default format for kv dump: json, yaml or toml

Subcommands:
  get       Get a configuration value
  set       Set a configuration value
  list      List all configuration values
  unset     Remove a configuration value
  validate  Validate configuration`,
	}

	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigListCmd(provider))
	cmd.AddCommand(newConfigUnsetCmd(provider))
	cmd.AddCommand(newConfigValidateCmd(provider))

	return cmd
}

// newConfigGetCmd creates the "config get" subcommand.
func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get the value of a configuration key.

Prints the bare value if the key is set, or "key (not set)" if missing.
Core keys always have a value because defaults are applied.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := provider.Config()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			key := args[0]
			value, ok := store.Get(key)
			if provider.JSONOutput {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
					"set":   ok,
				})
			}
			if ok {
				fmt.Fprintln(out, value)
			} else {
				fmt.Fprintf(out, "%s (not set)\n", key)
			}
			return nil
		},
	}
}

// newConfigSetCmd creates the "config set" subcommand.
func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration key to a value.

Core keys are validated before writing; other keys are stored as-is.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := provider.Config()
			if err != nil {
				return err
			}
			key, value := args[0], args[1]
			if err := config.ValidateValue(key, value); err != nil {
				return err
			}
			if err := store.Set(key, value); err != nil {
				return err
			}
			if provider.JSONOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// newConfigListCmd creates the "config list" subcommand.
func newConfigListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := provider.Config()
			if err != nil {
				return err
			}
			all := store.All()
			out := cmd.OutOrStdout()

			if provider.JSONOutput {
				return json.NewEncoder(out).Encode(all)
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s = %s\n", k, all[k])
			}
			return nil
		},
	}
}

// newConfigUnsetCmd creates the "config unset" subcommand.
func newConfigUnsetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Long: `Remove a key from config.yaml. Core keys fall back to their defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := provider.Config()
			if err != nil {
				return err
			}
			if err := store.Unset(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
			return nil
		},
	}
}

// newConfigValidateCmd creates the "config validate" subcommand.
func newConfigValidateCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := provider.Config()
			if err != nil {
				return err
			}
			if err := config.Validate(store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}
