// Root command for the farmcore CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"farmcore/internal/config"
	"farmcore/internal/core"
	"farmcore/pkg/domain"
)

// Version is the CLI version, overridable at build time via -ldflags.
var Version = "dev"

// Global flag values.
var (
	flagConfigDir string
	flagDriver    string
)

// Resolved in PersistentPreRunE for all subcommands.
var (
	cfg    config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "farmcore",
	Short:   "Farmcore is a local-first farm record keeper",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(resolveConfigDir())
		if err != nil {
			return err
		}
		if flagDriver != "" {
			cfg.Storage.Driver = flagDriver
		}
		logger = newLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.farmcore)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "storage driver override: file|memory|sqlite|postgres")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(backupCmd)
}

// resolveConfigDir precedence: --config-dir flag > FARMCORE_CONFIG_DIR env > $(CWD)/.farmcore.
func resolveConfigDir() string {
	if flagConfigDir != "" {
		return flagConfigDir
	}
	if dir := os.Getenv("FARMCORE_CONFIG_DIR"); dir != "" {
		return dir
	}
	return ".farmcore"
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// openStore builds the persistence adapter and returns an initialized
// document store. Like openBackupStore, a FARMCORE_STORAGE_DRIVER override
// takes the pure-env path; otherwise the adapter comes from the config.
func openStore(cmd *cobra.Command) (*core.Store, error) {
	adapter, err := openAdapter()
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	store := core.NewStore(adapter, core.WithLogger(logger))
	if err := store.Init(cmd.Context()); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return store, nil
}

func openAdapter() (domain.Adapter, error) {
	if flagDriver == "" && os.Getenv("FARMCORE_STORAGE_DRIVER") != "" {
		return core.OpenAdapterFromEnv()
	}
	return core.OpenAdapter(core.StorageOptions{
		Driver:      core.StorageDriver(cfg.Storage.Driver),
		FilePath:    cfg.Storage.FilePath,
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	})
}
