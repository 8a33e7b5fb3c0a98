package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hengadev/recordseal"
	"github.com/spf13/cobra"
)

// InitResult is the output of the init command.
type InitResult struct {
	Path string `json:"path"`
}

func (r InitResult) String() string {
	return fmt.Sprintf("✓ wrote default configuration to %s", r.Path)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Write a configuration file with every default",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, output, force, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "recordseal.yaml", "configuration file to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func runInit(opts *RootOptions, output string, force bool, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	if !force {
		_, err := os.Stat(output)
		if err == nil {
			msg := fmt.Sprintf("%s already exists (use --force to overwrite)", output)
			f.Error(ErrCodeConfig, msg, nil)
			return reported(NewExitError(ExitFailure, msg))
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return f.Fail(fmt.Sprintf("failed to check %s", output), err)
		}
	}

	if err := recordseal.SaveConfig(recordseal.DefaultConfig(), output); err != nil {
		return f.Fail("failed to write configuration", err)
	}
	return f.Success(InitResult{Path: output})
}
