package recordseal

import (
	"fmt"

	"github.com/hengadev/recordseal/internal/monitoring"
	"github.com/sirupsen/logrus"
)

// Option configures a Pipeline built with New or Open.
type Option func(*Pipeline) error

// WithSource sets where records are read from and artifacts written to.
func WithSource(source Source) Option {
	return func(p *Pipeline) error {
		if source == nil {
			return fmt.Errorf("%w: source cannot be nil", ErrInvalidConfiguration)
		}
		p.source = source
		return nil
	}
}

// WithStore sets the entry store. The pipeline closes it on Close.
func WithStore(store RecordStore) Option {
	return func(p *Pipeline) error {
		if store == nil {
			return fmt.Errorf("%w: store cannot be nil", ErrInvalidConfiguration)
		}
		p.store = store
		return nil
	}
}

// WithKeyStore sets where keys are persisted when persist_key is enabled.
func WithKeyStore(keys KeyStore) Option {
	return func(p *Pipeline) error {
		if keys == nil {
			return fmt.Errorf("%w: key store cannot be nil", ErrInvalidConfiguration)
		}
		p.keys = keys
		return nil
	}
}

// WithLogger sets the logrus logger used by the pipeline.
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfiguration)
		}
		p.logger = logger
		return nil
	}
}

func WithMetricsCollector(collector monitoring.MetricsCollector) Option {
	return func(p *Pipeline) error {
		if collector == nil {
			return fmt.Errorf("%w: metrics collector cannot be nil", ErrInvalidConfiguration)
		}
		p.metrics = collector
		return nil
	}
}

func WithObservabilityHook(hook monitoring.ObservabilityHook) Option {
	return func(p *Pipeline) error {
		if hook == nil {
			return fmt.Errorf("%w: observability hook cannot be nil", ErrInvalidConfiguration)
		}
		p.hook = hook
		return nil
	}
}
