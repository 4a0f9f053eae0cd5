package domain

import "time"

// AlertEvent names the condition an alert reports.
type AlertEvent string

// Alert events raised by the enrichment executor.
const (
	AlertStalled    AlertEvent = "stalled"
	AlertRestarting AlertEvent = "restarting"
	AlertHalted     AlertEvent = "halted"
)

// Alert is an operational notification sent to the alert sink.
type Alert struct {
	Event        AlertEvent `json:"event"`
	Message      string     `json:"message"`
	Timestamp    time.Time  `json:"timestamp"`
	Processed    int        `json:"processed"`
	Total        int        `json:"total"`
	Job          string     `json:"job"`
	RestartCount int        `json:"restart_count"`
}

// NewAlert builds an alert from the current process state.
func NewAlert(event AlertEvent, message string, state ProcessState) Alert {
	return Alert{
		Event:        event,
		Message:      message,
		Timestamp:    time.Now().UTC(),
		Processed:    state.Processed,
		Total:        state.Total,
		Job:          state.ID,
		RestartCount: state.RestartCount,
	}
}
