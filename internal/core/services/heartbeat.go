package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// heartbeatMonitor is the only writer of stall transitions. It derives
// progress from store counts rather than from the worker, so the two
// goroutines share no counters.
type heartbeatMonitor struct {
	e     *Executor
	ctl   *runControl
	log   *logger.Logger
	state domain.ProcessState

	lastProcessed int
	lastProgress  time.Time

	// paused is set between a restart request and the supervisor's resume.
	paused bool
}

func newHeartbeatMonitor(e *Executor, state domain.ProcessState, ctl *runControl) *heartbeatMonitor {
	return &heartbeatMonitor{
		e:             e,
		ctl:           ctl,
		log:           logger.With("job", state.ID),
		state:         state,
		lastProcessed: state.Processed,
		lastProgress:  time.Now(),
	}
}

// run ticks until ctx is cancelled or the run halts.
func (m *heartbeatMonitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.e.config.HeartbeatInterval)
	defer ticker.Stop()

	m.setNote(ctx, domain.NoteRunning)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.ctl.resumed:
			m.paused = false
			m.lastProgress = time.Now()
			m.setNote(ctx, domain.NoteRunning)
		case <-ticker.C:
			if halted := m.tick(ctx); halted {
				return
			}
		}
	}
}

// tick refreshes counts, persists the heartbeat and checks for a stall.
// Returns true once the run has been halted.
func (m *heartbeatMonitor) tick(ctx context.Context) bool {
	now := time.Now()
	m.refresh(ctx)

	if m.state.Processed > m.lastProcessed {
		m.log.Debug("heartbeat progress",
			"processed", m.state.Processed,
			"total", m.state.Total,
			"delta", m.state.Processed-m.lastProcessed,
		)
		m.lastProcessed = m.state.Processed
		m.lastProgress = now
	}

	if !m.paused && now.Sub(m.lastProgress) >= m.e.config.StallTimeout {
		return m.stall(ctx, now.Sub(m.lastProgress))
	}

	m.persist(ctx)
	return false
}

// stall handles a detected stall: alert, then restart or halt. Restarts and
// halts each raise their own alert.
func (m *heartbeatMonitor) stall(ctx context.Context, idle time.Duration) bool {
	m.setNote(ctx, domain.NoteStalled)
	m.e.alert(ctx, domain.AlertStalled,
		fmt.Sprintf("no progress for %s at %d/%d records", idle.Round(time.Millisecond), m.state.Processed, m.state.Total),
		m.state)

	if m.state.RestartCount >= m.e.config.MaxRestarts {
		m.setNote(ctx, domain.NoteHalted)
		m.e.alert(ctx, domain.AlertHalted,
			fmt.Sprintf("halted after %d restarts, manual intervention required", m.state.RestartCount),
			m.state)
		close(m.ctl.halt)
		return true
	}

	m.state.RestartCount++
	m.paused = true
	m.setNote(ctx, domain.NoteRestarting)
	m.e.metrics.Restarted()

	select {
	case m.ctl.restart <- struct{}{}:
		m.e.alert(ctx, domain.AlertRestarting,
			fmt.Sprintf("restart %d of %d requested", m.state.RestartCount, m.e.config.MaxRestarts),
			m.state)
	case <-ctx.Done():
	}
	return false
}

// refresh recomputes the aggregate counts. On failure the previous
// counts are kept and the heartbeat is still written.
func (m *heartbeatMonitor) refresh(ctx context.Context) {
	counts, err := m.e.records.Counts(ctx)
	if err != nil {
		m.log.Warn("heartbeat counts unavailable", "error", err)
		return
	}
	m.state.Apply(counts)
	m.e.metrics.Heartbeat(counts.Processed, counts.Total)
}

func (m *heartbeatMonitor) setNote(ctx context.Context, note domain.RunNote) {
	changed := m.state.Note != note
	m.state.Note = note
	m.persist(ctx)
	if changed {
		m.e.transition(m.state)
	}
}

// persist upserts the state row. A failed write is retried on the next tick.
func (m *heartbeatMonitor) persist(ctx context.Context) {
	m.state.LastHeartbeat = time.Now().UTC()
	if err := m.e.states.SaveState(ctx, &m.state); err != nil {
		m.log.Warn("heartbeat not persisted", "note", m.state.Note, "error", err)
		return
	}
	if m.e.progress != nil {
		m.e.progress(m.state)
	}
}
