package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	EnvFile    string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the recordseal CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recordseal",
		Short: "Seal single-record uploads and detect tampering",
		Long: `recordseal fingerprints a one-row CSV upload, embeds the fingerprint,
encrypts the result under a fresh key and records it in an append-only store.
Validation recomputes the fingerprint and reports whether the record changed.

Configuration comes from --config (or RECORDSEAL_CONFIG) and RECORDSEAL_*
environment variables, optionally loaded from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitFailure, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return loadEnvFile(opts.EnvFile)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "environment file to load (default .env when present)")

	cmd.AddCommand(NewProcessCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRevealCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. An empty path loads .env if it exists.
func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return WrapExitError(ExitFailure, "failed to load .env", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("failed to load env file %s", path), err)
	}
	return nil
}
