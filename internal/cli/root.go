// Package cli wires the sync engine into a command-line interface: a
// long-running daemon mode plus one-shot commands for sync, resume, reset,
// status, and credential management.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/the-momentum/open-wearables-sync/internal/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigFile string
	BaseURL    string
	DBPath     string
	DataDir    string
}

// NewRootCommand creates the wearsync root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "wearsync",
		Short:         "Resumable health-record sync engine",
		Long:          "wearsync incrementally pulls wearable health records from a local data source\nand delivers them to a collection endpoint in crash-safe, resumable chunks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to JSON config file")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "collection endpoint base URL")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the SQLite state database")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory of per-type record files for the replay provider")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewResumeCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))

	return cmd
}

// flagOverrides converts the global flags into a config overlay merged on
// top of environment variables.
func (o *RootOptions) flagOverrides() *config.EngineConfig {
	overrides := &config.EngineConfig{JSONFilePath: o.ConfigFile}
	overrides.Remote.BaseURL = o.BaseURL
	overrides.Storage.DB.DSN = o.DBPath
	overrides.Storage.DataDir = o.DataDir
	return overrides
}
