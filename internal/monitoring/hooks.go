package monitoring

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ObservabilityHook is notified around every pipeline operation.
type ObservabilityHook interface {
	OnProcessStart(ctx context.Context, operation string, metadata map[string]any)
	OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any)
}

// NoOpObservabilityHook ignores every event.
type NoOpObservabilityHook struct{}

func (n *NoOpObservabilityHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]any) {
}
func (n *NoOpObservabilityHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
}

// LoggingObservabilityHook writes operation events to a logrus logger at debug
// level, and failures at error level.
type LoggingObservabilityHook struct {
	logger *logrus.Logger
}

// NewLoggingObservabilityHook returns a hook writing to logger.
func NewLoggingObservabilityHook(logger *logrus.Logger) *LoggingObservabilityHook {
	if logger == nil {
		logger = logrus.New()
	}
	return &LoggingObservabilityHook{logger: logger}
}

func (h *LoggingObservabilityHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]any) {
	h.logger.WithFields(logrus.Fields(metadata)).WithField("operation", operation).Debug("operation started")
}

func (h *LoggingObservabilityHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]any) {
	entry := h.logger.WithFields(logrus.Fields(metadata)).WithFields(logrus.Fields{
		"operation": operation,
		"duration":  duration,
	})
	if err != nil {
		entry.WithError(err).Error("operation failed")
		return
	}
	entry.Debug("operation completed")
}
