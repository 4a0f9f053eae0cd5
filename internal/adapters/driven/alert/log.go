package alert

import (
	"context"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// Ensure LogSink implements the interface.
var _ driven.AlertSink = LogSink{}

// LogSink writes alerts to the log at warn level.
type LogSink struct{}

// Send logs the alert.
func (LogSink) Send(_ context.Context, a domain.Alert) error {
	logger.Warn("alert",
		"event", a.Event,
		"job", a.Job,
		"message", a.Message,
		"processed", a.Processed,
		"total", a.Total,
		"restart_count", a.RestartCount)
	return nil
}
