package cli

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// RevealResult is the output of the reveal command.
type RevealResult struct {
	Identifier string            `json:"identifier"`
	Fields     []string          `json:"fields"`
	Values     map[string]string `json:"values"`
	CSV        string            `json:"csv"`
}

func (r RevealResult) String() string {
	return strings.TrimSuffix(r.CSV, "\n")
}

// NewRevealCommand creates the reveal command.
func NewRevealCommand(rootOpts *RootOptions) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "reveal <identifier>",
		Short: "Decrypt the latest sealed entry for an identifier",
		Long: `Reveal decrypts the most recent store entry for <identifier> and prints
the fingerprinted record. The key is taken from --key (base64, as printed by
process) or, when persist_key is enabled, from the key store.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReveal(rootOpts, args[0], key, cmd)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "base64 encryption key returned by process")
	return cmd
}

func runReveal(opts *RootOptions, identifier, encodedKey string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	var key []byte
	if encodedKey != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedKey)
		if err != nil {
			f.Error(ErrCodeInvalidFlag, fmt.Sprintf("invalid --key: %v", err), nil)
			return reported(WrapExitError(ExitFailure, "invalid --key", err))
		}
		key = decoded
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

	rec, err := p.Reveal(cmd.Context(), identifier, key)
	if err != nil {
		return f.Fail(fmt.Sprintf("failed to reveal %s", identifier), err)
	}

	csv, err := p.Canonical(rec)
	if err != nil {
		return f.Fail(fmt.Sprintf("failed to serialize %s", identifier), err)
	}

	return f.Success(RevealResult{
		Identifier: identifier,
		Fields:     rec.Fields(),
		Values:     rec.Map(),
		CSV:        string(csv),
	})
}
