package cli

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ProcessResult is the output of the process command.
type ProcessResult struct {
	Identifier  string `json:"identifier"`
	EntryID     string `json:"entry_id"`
	Fingerprint string `json:"fingerprint"`
	Suite       string `json:"suite"`
	Key         string `json:"key"` // base64
	KeyStored   bool   `json:"key_stored"`
	Seals       int    `json:"seals"`
}

func (r ProcessResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "identifier:  %s\n", r.Identifier)
	fmt.Fprintf(&b, "entry:       %s\n", r.EntryID)
	fmt.Fprintf(&b, "fingerprint: %s\n", r.Fingerprint)
	fmt.Fprintf(&b, "suite:       %s\n", r.Suite)
	fmt.Fprintf(&b, "seals:       %d\n", r.Seals)
	fmt.Fprintf(&b, "key:         %s", r.Key)
	if !r.KeyStored {
		b.WriteString("\n\nThe key is not stored. Keep it to reveal this record later.")
	}
	return b.String()
}

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process <identifier>",
		Short: "Fingerprint, encrypt and record an uploaded record",
		Long: `Process reads the upload for <identifier>, computes its fingerprint,
writes a fingerprinted copy and the ciphertext next to it, and appends an entry
to the record store. The original upload is not modified.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(rootOpts, args[0], cmd)
		},
	}
}

func runProcess(opts *RootOptions, identifier string, cmd *cobra.Command) error {
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

	sealed, err := p.Process(cmd.Context(), identifier)
	if err != nil {
		return f.Fail(fmt.Sprintf("failed to process %s", identifier), err)
	}

	seals, err := p.Count(cmd.Context(), identifier)
	if err != nil {
		return f.Fail(fmt.Sprintf("failed to count entries for %s", identifier), err)
	}

	return f.Success(ProcessResult{
		Identifier:  sealed.Identifier,
		EntryID:     sealed.EntryID,
		Fingerprint: sealed.Fingerprint,
		Suite:       sealed.Suite,
		Key:         base64.StdEncoding.EncodeToString(sealed.Key),
		KeyStored:   cfg.PersistKey,
		Seals:       seals,
	})
}
