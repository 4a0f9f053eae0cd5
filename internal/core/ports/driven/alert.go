package driven

import (
	"context"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
)

// AlertSink delivers operational alerts.
// Delivery is best-effort; callers log failures and carry on.
type AlertSink interface {
	// Send delivers an alert. Returns domain.ErrAlertFailed on failure.
	Send(ctx context.Context, alert domain.Alert) error
}
