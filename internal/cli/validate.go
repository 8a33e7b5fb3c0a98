package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hengadev/recordseal"
	"github.com/spf13/cobra"
)

// ValidateResult is the output of the validate command.
type ValidateResult struct {
	Identifier string `json:"identifier,omitempty"`
	Outcome    string `json:"outcome"`
	Stored     string `json:"stored"`
	Computed   string `json:"computed"`
}

func (r ValidateResult) String() string {
	if r.Outcome == recordseal.Verified.String() {
		return "✓ verified"
	}
	var b strings.Builder
	b.WriteString("✗ mismatch\n")
	fmt.Fprintf(&b, "stored:   %s\n", r.Stored)
	fmt.Fprintf(&b, "computed: %s", r.Computed)
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate [identifier]",
		Short: "Check a sealed record against its embedded fingerprint",
		Long: `Validate recomputes the fingerprint of the sealed record for [identifier]
with the fingerprint field excluded and compares it to the embedded value.
With --file the sealed record is read from the given path instead.

Exits with status 2 when the record does not match.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			}
			return runValidate(rootOpts, identifier, file, cmd)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "validate a sealed record file instead of the stored copy")
	return cmd
}

func runValidate(opts *RootOptions, identifier, file string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	if identifier == "" && file == "" {
		f.Error(ErrCodeInvalidFlag, "an identifier or --file is required", nil)
		return reported(NewExitError(ExitFailure, "an identifier or --file is required"))
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return f.Fail("failed to load configuration", err)
	}

	p, err := openPipeline(cmd.Context(), cfg, f)
	if err != nil {
		return f.Fail("failed to open pipeline", err)
	}
	defer p.Close()

	verdict, err := validate(cmd.Context(), p, identifier, file, f)
	if err != nil {
		return f.Fail("failed to validate", err)
	}

	result := ValidateResult{
		Identifier: identifier,
		Outcome:    verdict.Outcome.String(),
		Stored:     verdict.Stored,
		Computed:   verdict.Computed,
	}
	if err := f.Success(result); err != nil {
		return err
	}
	if !verdict.OK() {
		return reported(NewExitError(ExitMismatch, fmt.Sprintf("fingerprint mismatch [%s]", ErrCodeMismatch)))
	}
	return nil
}

func validate(ctx context.Context, p *recordseal.Pipeline, identifier, file string, f *OutputFormatter) (recordseal.Verdict, error) {
	if file == "" {
		return p.Validate(ctx, identifier)
	}
	f.VerboseLog("Validating %s", file)
	raw, err := os.ReadFile(file)
	if err != nil {
		return recordseal.Verdict{}, fmt.Errorf("%w: %w", recordseal.ErrNotFound, err)
	}
	return p.Verify(ctx, raw)
}
