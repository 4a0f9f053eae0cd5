package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// requestTimeout bounds a single webhook post.
const requestTimeout = 10 * time.Second

// Ensure WebhookSink implements the interface.
var _ driven.AlertSink = (*WebhookSink)(nil)

// payload is the webhook body. "text" makes it readable by chat webhooks
// that ignore the structured fields.
type payload struct {
	Text string `json:"text"`
	domain.Alert
}

// WebhookSink posts alerts as JSON to an HTTP endpoint.
type WebhookSink struct {
	url     string
	client  *http.Client
	limiter *RateLimiter
}

// NewWebhookSink creates a sink posting to url with the default rate limit.
func NewWebhookSink(url string) (*WebhookSink, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("%w: webhook url must be http(s)", domain.ErrInvalidInput)
	}
	return &WebhookSink{
		url:     url,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: NewRateLimiter(DefaultRateLimit),
	}, nil
}

// SetRateLimiter replaces the limiter.
func (s *WebhookSink) SetRateLimiter(l *RateLimiter) {
	s.limiter = l
}

// SetHTTPClient replaces the HTTP client.
func (s *WebhookSink) SetHTTPClient(c *http.Client) {
	s.client = c
}

// Send posts the alert. Halted alerts bypass the rate limit.
func (s *WebhookSink) Send(ctx context.Context, alert domain.Alert) error {
	if alert.Event != domain.AlertHalted && !s.limiter.Allow() {
		return fmt.Errorf("%w: rate limited, dropped %s alert", domain.ErrAlertFailed, alert.Event)
	}

	body, err := json.Marshal(payload{Text: formatText(alert), Alert: alert})
	if err != nil {
		return fmt.Errorf("%w: encoding: %v", domain.ErrAlertFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAlertFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAlertFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		s.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After")))
		return fmt.Errorf("%w: webhook returned %d", domain.ErrAlertFailed, resp.StatusCode)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: webhook returned %d", domain.ErrAlertFailed, resp.StatusCode)
	}

	logger.Debug("alert delivered", "event", alert.Event, "job", alert.Job)
	return nil
}

func formatText(a domain.Alert) string {
	return fmt.Sprintf("[stryda] %s %s: %s (processed %d/%d, restarts %d)",
		a.Job, a.Event, a.Message, a.Processed, a.Total, a.RestartCount)
}

// parseRetryAfter reads a Retry-After header in seconds. HTTP dates are
// not supported and fall back to the default.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
