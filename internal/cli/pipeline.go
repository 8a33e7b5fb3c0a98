package cli

import (
	"context"

	"github.com/hengadev/recordseal"
	"github.com/hengadev/recordseal/providers/hashicorp"
	s3bucket "github.com/hengadev/recordseal/providers/s3"
	"github.com/spf13/cobra"
)

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig reads --config (or RECORDSEAL_CONFIG) plus environment overrides.
func loadConfig(opts *RootOptions) (recordseal.Config, error) {
	cfg, err := recordseal.LoadConfig(opts.ConfigFile)
	if err != nil {
		return recordseal.Config{}, err
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// openPipeline opens a pipeline for cfg, wiring the remote backends it names.
func openPipeline(ctx context.Context, cfg recordseal.Config, f *OutputFormatter) (*recordseal.Pipeline, error) {
	var opts []recordseal.Option

	if cfg.Source == recordseal.SourceS3 {
		f.VerboseLog("Using S3 source s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
		bucket, err := s3bucket.New(ctx, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		opts = append(opts, recordseal.WithSource(bucket))
	} else {
		f.VerboseLog("Using source directory %s", cfg.SourceDir)
	}

	if cfg.PersistKey && cfg.KeyStore == recordseal.KeyStoreVault {
		f.VerboseLog("Persisting keys in Vault KV mount %s", cfg.VaultMount)
		keys, err := hashicorp.NewKVKeyStore(cfg.VaultMount)
		if err != nil {
			return nil, err
		}
		opts = append(opts, recordseal.WithKeyStore(keys))
	}

	return recordseal.Open(ctx, cfg, opts...)
}
