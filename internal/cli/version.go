package cli

import (
	"github.com/hengadev/recordseal"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newFormatter(rootOpts, cmd).Success(recordseal.VersionInfo())
		},
	}
}
