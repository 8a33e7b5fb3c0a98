package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/hengadev/recordseal"
	"github.com/spf13/cobra"
)

// CheckResult is the output of the check command.
type CheckResult struct {
	recordseal.HealthReport
}

func (r CheckResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status: %s", r.Status)
	for _, res := range r.Results {
		mark := "✓"
		if res.Status != recordseal.HealthHealthy {
			mark = "✗"
		}
		fmt.Fprintf(&b, "\n%s %-10s %-9s %s", mark, res.Name, res.Status, res.Duration.Round(time.Millisecond))
		if res.Error != "" {
			fmt.Fprintf(&b, "  %s", res.Error)
		}
	}
	return b.String()
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the configured source and stores are reachable",
		Long: `Check pings the record source, the entry store and, when keys are
persisted outside the entry store, the key store.

Exits with status 1 when a source or entry store check fails. A failing key
store is reported as degraded without failing the command.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return f.Fail("failed to load configuration", err)
	}

	p, err := openPipeline(cmd.Context(), cfg, f)
	if err != nil {
		return f.Fail("failed to open pipeline", err)
	}
	defer p.Close()

	report := p.Health(cmd.Context())
	if err := f.Success(CheckResult{report}); err != nil {
		return err
	}
	if report.Status == recordseal.HealthUnhealthy {
		return reported(NewExitError(ExitFailure, fmt.Sprintf("backends unhealthy [%s]", ErrCodeStorage)))
	}
	return nil
}
