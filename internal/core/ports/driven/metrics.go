package driven

import "github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"

// RunMetrics records executor activity.
type RunMetrics interface {
	// BatchProcessed counts records committed with metadata.
	BatchProcessed(n int)

	// RecordsSkipped counts records marked processed with no metadata.
	RecordsSkipped(n int)

	// Restarted counts an automatic restart.
	Restarted()

	// StateChanged records the current run state.
	StateChanged(note domain.RunNote)

	// Heartbeat records progress at a heartbeat tick.
	Heartbeat(processed, total int)
}

// NopMetrics is a RunMetrics that records nothing.
type NopMetrics struct{}

var _ RunMetrics = NopMetrics{}

func (NopMetrics) BatchProcessed(int)             {}
func (NopMetrics) RecordsSkipped(int)             {}
func (NopMetrics) Restarted()                     {}
func (NopMetrics) StateChanged(domain.RunNote)    {}
func (NopMetrics) Heartbeat(processed, total int) {}
