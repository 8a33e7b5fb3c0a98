package recordseal

import (
	"context"
	"fmt"
	"os"

	"github.com/hengadev/recordseal/internal/monitoring"
	"github.com/hengadev/recordseal/internal/source"
	"github.com/hengadev/recordseal/internal/store"
	"github.com/sirupsen/logrus"
)

// Open builds a Pipeline with the local backends named by cfg: a directory
// source and a SQLite or Badger store. Options are applied after the defaults,
// so WithSource or WithStore replace them. An S3 source must be passed with
// WithSource (see providers/s3).
//
// The returned pipeline owns the store it opened; call Close when done.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	defaults := []Option{
		WithLogger(logger),
		WithObservabilityHook(monitoring.NewLoggingObservabilityHook(logger)),
	}

	if cfg.Source == SourceDir {
		dir, err := source.NewDir(cfg.SourceDir)
		if err != nil {
			return nil, err
		}
		defaults = append(defaults, WithSource(dir))
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	defaults = append(defaults, WithStore(st))

	p, err := New(cfg, append(defaults, opts...)...)
	if err != nil {
		st.Close()
		return nil, err
	}
	if p.store != st {
		// Replaced by an option; the caller owns its own store.
		if err := st.Close(); err != nil {
			logger.WithError(err).Warn("failed to close unused default store")
		}
	}

	logger.WithFields(logrus.Fields{
		"source":      cfg.Source,
		"store":       cfg.Store,
		"suite":       cfg.Suite,
		"persist_key": cfg.PersistKey,
	}).Debug("pipeline opened")

	return p, nil
}

func openStore(cfg Config, logger *logrus.Logger) (RecordStore, error) {
	switch cfg.Store {
	case StoreSQLite:
		st, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case StoreBadger:
		st, err := store.OpenBadger(store.BadgerConfig{Dir: cfg.BadgerDir, Logger: logger})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w: unknown store %q", ErrInvalidConfiguration, cfg.Store)
	}
}

// NewLogger returns a logrus logger with the level and format named by cfg.
func NewLogger(cfg Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	logger.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", ErrInvalidConfiguration, cfg.LogFormat)
	}
	return logger, nil
}
