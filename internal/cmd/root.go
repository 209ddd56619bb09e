package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"kv/internal/clipboard"
	"kv/internal/command"
	"kv/internal/config"
	"kv/internal/config/yamlstore"
	"kv/internal/kvstorage/filesystem"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Config captured from flags before Execute()
	StorePath  string
	JSONOutput bool
	Copy       bool
	Format     string
	AssumeYes  bool
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	if p.app != nil {
		p.app.JSON = p.app.JSON || p.JSONOutput
		p.app.Copy = p.app.Copy || p.Copy
		p.app.AssumeYes = p.app.AssumeYes || p.AssumeYes
		if p.Format != "" {
			p.app.Format = p.Format
		}
	}
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app: app,
		In:  app.In,
		Out: app.Out,
		Err: app.Err,
	}
}

// Config returns the config store without opening the kv store, so a
// broken config can still be inspected and fixed.
func (p *AppProvider) Config() (config.Store, error) {
	if p.app != nil && p.app.ConfigStore != nil {
		return p.app.ConfigStore, nil
	}
	paths, err := config.ResolvePaths(p.StorePath)
	if err != nil {
		return nil, err
	}
	s, err := yamlstore.New(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	config.ApplyDefaults(s)
	config.ApplyEnvOverrides(s)
	return s, nil
}

func (p *AppProvider) init() (*App, error) {
	paths, err := config.ResolvePaths(p.StorePath)
	if err != nil {
		return nil, err
	}

	cfgStore, err := yamlstore.New(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	config.ApplyDefaults(cfgStore)
	config.ApplyEnvOverrides(cfgStore)
	settings, err := config.Load(cfgStore)
	if err != nil {
		return nil, fmt.Errorf("%w (fix with: kv config set <key> <value>)", err)
	}

	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	level, err := log.ParseLevel(settings.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	logger := log.NewWithOptions(errOut, log.Options{
		Prefix: "kv",
		Level:  level,
	})

	store, err := filesystem.Open(context.Background(), paths.StoreDir, filesystem.Options{
		AutoBackup:     settings.AutoBackup,
		BackupInterval: settings.BackupInterval,
		AutoBackupFile: settings.BackupFile,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing store: %w", err)
	}

	return &App{
		Store:       store,
		ConfigStore: cfgStore,
		Settings:    settings,
		StoreDir:    paths.StoreDir,
		Clipboard:   clipboard.New(),
		Logger:      logger,
		In:          in,
		Out:         out,
		Err:         errOut,
		JSON:        p.JSONOutput || config.EnvBool(config.EnvJSON),
		Copy:        p.Copy,
		Format:      p.Format,
		AssumeYes:   p.AssumeYes,
	}, nil
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	}

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command. Everything except config goes
// through command.Parse so the positional <key> [values...] form works.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kv [command] [key] [value...]",
		Short: "A tiny key-value store for lists of strings",
		Long: `kv stores lists of strings under string keys in a JSON file
(default ~/.kv/db.json). The last change can be undone once.

Usage:
  kv                           list all keys with item count
  kv <key>                     get values for a key
  kv <key> --copy              copy the values of a key (or kv --copy <key>)
  kv <key> <value...>          set value(s) for a key
  kv add <key> <value...>      append value(s) to a key
  kv delete <key> [value...]   delete key or specific values
  kv keys                      list all keys
  kv dump                      dump the database to stdout
  kv backup <path>             back up the database to a file
  kv restore <path>            replace the database with a backup
  kv replace <key> <new_key>   rename a key
  kv replace <key> <old> <new> replace a value in a given key
  kv find <query>              search keys and values
  kv undo                      undo the last change
  kv nuke                      delete the database
  kv config ...                manage settings
  kv help                      show this help

Flags may also follow the command (kv dump --format yaml). Put -- before
values that look like flags: kv <key> -- --json`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args, flags := splitTrailingFlags(cmd, args)
			help, err := parseTrailingFlags(cmd, flags)
			if err != nil {
				return err
			}
			if help {
				return cmd.Help()
			}

			c, err := command.Parse(args)
			if err != nil {
				return err
			}
			if c.Kind == command.Help {
				return cmd.Help()
			}

			app, err := provider.Get()
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), c)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().SetInterspersed(false)

	// Global flags - these populate the provider config. Defaults come from
	// the provider so values set before Execute survive flag registration.
	rootCmd.PersistentFlags().StringVarP(&provider.StorePath, "path", "p", provider.StorePath, "Path to the store directory (default: $KV_DIR or ~/.kv)")
	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", provider.JSONOutput, "Output in JSON format")
	rootCmd.Flags().BoolVarP(&provider.Copy, "copy", "c", provider.Copy, "Copy the values of <key> to the clipboard")
	rootCmd.Flags().StringVarP(&provider.Format, "format", "f", provider.Format, "Dump format: json, yaml or toml (default: dump.format setting)")
	rootCmd.Flags().BoolVarP(&provider.AssumeYes, "yes", "y", provider.AssumeYes, "Do not ask for confirmation before nuke")

	rootCmd.AddCommand(newConfigCmd(provider))

	return rootCmd
}
