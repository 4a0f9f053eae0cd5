package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driving"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// Ensure Executor implements the interface.
var _ driving.Enricher = (*Executor)(nil)

const (
	// flushTimeout bounds the final state write after a run ends,
	// including runs ended by cancellation.
	flushTimeout = 10 * time.Second

	// alertTimeout bounds a single alert delivery.
	alertTimeout = 10 * time.Second
)

// Executor drives the enrichment cursor until no unprocessed records
// remain. A heartbeat monitor runs alongside the worker, persists the
// job's ProcessState every interval, detects stalls and requests
// bounded restarts.
type Executor struct {
	jobID     string
	records   driven.RecordStore
	states    driven.ProcessStateStore
	cursor    *EnrichmentCursor
	extractor *MetadataExtractor
	alerts    driven.AlertSink
	metrics   driven.RunMetrics
	config    domain.EnrichmentSettings
	retry     RetryPolicy
	progress  func(domain.ProcessState)

	mu      sync.Mutex
	running bool
}

// NewExecutor creates an executor for the enrichment job.
func NewExecutor(
	records driven.RecordStore,
	states driven.ProcessStateStore,
	extractor *MetadataExtractor,
	config domain.EnrichmentSettings,
) *Executor {
	return &Executor{
		jobID:     domain.JobEnrich,
		records:   records,
		states:    states,
		cursor:    NewEnrichmentCursor(records, config.BatchSize),
		extractor: extractor,
		metrics:   driven.NopMetrics{},
		config:    config,
		retry:     DefaultRetryPolicy(),
	}
}

// SetAlertSink sets where stall and halt alerts are sent.
// A nil sink disables alerting.
func (e *Executor) SetAlertSink(sink driven.AlertSink) {
	e.alerts = sink
}

// SetMetrics sets the metrics recorder.
func (e *Executor) SetMetrics(m driven.RunMetrics) {
	if m == nil {
		m = driven.NopMetrics{}
	}
	e.metrics = m
}

// SetRetryPolicy replaces the transient-error retry policy.
func (e *Executor) SetRetryPolicy(p RetryPolicy) {
	e.retry = p
	e.cursor.SetRetryPolicy(p)
}

// SetProgressFunc registers a callback invoked with the state persisted
// at each heartbeat.
func (e *Executor) SetProgressFunc(fn func(domain.ProcessState)) {
	e.progress = fn
}

// Status returns the persisted state of the job.
func (e *Executor) Status(ctx context.Context) (*domain.ProcessState, error) {
	return e.states.GetState(ctx, e.jobID)
}

// Counts returns live aggregate counts from the record store.
func (e *Executor) Counts(ctx context.Context) (domain.EnrichmentCounts, error) {
	return e.records.Counts(ctx)
}

// runControl carries signals between the heartbeat monitor and the supervisor.
type runControl struct {
	// restart is sent by the monitor when a stalled run should restart.
	restart chan struct{}

	// halt is closed by the monitor when restarts are exhausted.
	halt chan struct{}

	// resumed is sent by the supervisor once a restarted worker is running.
	resumed chan struct{}
}

// Run executes the job until it completes, halts or ctx is cancelled.
// It returns nil for completed and stopped runs and domain.ErrHalted
// when restarts are exhausted.
func (e *Executor) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return domain.ErrRunInProgress
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	logger.Section("Enrichment")

	state, err := e.start(ctx)
	if err != nil {
		return err
	}

	ctl := &runControl{
		restart: make(chan struct{}),
		halt:    make(chan struct{}),
		resumed: make(chan struct{}, 1),
	}
	mon := newHeartbeatMonitor(e, state, ctl)

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()

	var outcome domain.RunNote
	g, gctx := errgroup.WithContext(monitorCtx)
	g.Go(func() error {
		mon.run(gctx)
		return nil
	})
	g.Go(func() error {
		defer stopMonitor()
		outcome = e.supervise(ctx, ctl)
		return nil
	})
	_ = g.Wait()

	final := mon.state
	changed := final.Note != outcome
	final.Note = outcome
	e.flush(ctx, &final, changed)

	if outcome == domain.NoteHalted {
		return fmt.Errorf("job %s after %d restarts: %w", e.jobID, final.RestartCount, domain.ErrHalted)
	}
	return nil
}

// start loads any prior state and writes the starting heartbeat.
// The restart count carries over only when resuming a run that did not
// reach a terminal state.
func (e *Executor) start(ctx context.Context) (domain.ProcessState, error) {
	state := domain.ProcessState{ID: e.jobID}

	prior, err := e.states.GetState(ctx, e.jobID)
	if err != nil {
		return state, fmt.Errorf("load process state: %w", err)
	}
	if prior != nil && !prior.Note.IsTerminal() {
		state.RestartCount = prior.RestartCount
		if state.RestartCount > e.config.MaxRestarts {
			state.RestartCount = e.config.MaxRestarts
		}
		logger.Info("resuming interrupted run", "job", e.jobID, "note", prior.Note, "restart_count", state.RestartCount)
	}

	var counts domain.EnrichmentCounts
	err = retry(ctx, e.retry, "counts", func() error {
		var err error
		counts, err = e.records.Counts(ctx)
		return err
	})
	if err != nil {
		return state, fmt.Errorf("load counts: %w", err)
	}
	state.Apply(counts)
	state.Note = domain.NoteStarting
	state.LastHeartbeat = time.Now().UTC()

	if err := e.states.SaveState(ctx, &state); err != nil {
		return state, fmt.Errorf("save process state: %w", err)
	}
	e.transition(state)
	return state, nil
}

// supervise runs workers until one completes, the monitor halts the run,
// or ctx is cancelled. Restart requests cancel the current worker, wait
// out the backoff and start a new one.
func (e *Executor) supervise(ctx context.Context, ctl *runControl) domain.RunNote {
	for {
		workerCtx, cancelWorker := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- e.work(workerCtx)
		}()

		restart := false
		select {
		case err := <-done:
			cancelWorker()
			if err == nil {
				return domain.NoteCompleted
			}
			if ctx.Err() != nil {
				return domain.NoteStopped
			}
			logger.Error("enrichment worker failed", "job", e.jobID, "error", err)
			// The monitor sees no progress and decides between restart and halt.
			select {
			case <-ctl.restart:
				restart = true
			case <-ctl.halt:
				return domain.NoteHalted
			case <-ctx.Done():
				return domain.NoteStopped
			}
		case <-ctl.restart:
			cancelWorker()
			<-done
			restart = true
		case <-ctl.halt:
			cancelWorker()
			<-done
			return domain.NoteHalted
		case <-ctx.Done():
			cancelWorker()
			<-done
			return domain.NoteStopped
		}

		if restart {
			timer := time.NewTimer(e.config.RestartBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return domain.NoteStopped
			case <-timer.C:
			}
			ctl.resumed <- struct{}{}
		}
	}
}

// work processes batches until the cursor returns an empty batch.
// Each record is committed independently, so a cancelled worker leaves
// every record it touched either fully written or untouched.
func (e *Executor) work(ctx context.Context) error {
	for {
		batch, err := e.cursor.NextBatch(ctx, e.cursor.BatchSize())
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		enriched, skipped := 0, 0
		for _, rec := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			meta := e.extractor.Enrich(rec.Content, rec.Source)
			updated, err := e.cursor.Commit(ctx, rec, meta)
			if err != nil {
				return err
			}
			if !updated {
				continue
			}
			if meta.Section == "" && meta.Clause == "" {
				skipped++
			} else {
				enriched++
			}
		}
		e.metrics.BatchProcessed(enriched)
		e.metrics.RecordsSkipped(skipped)
		logger.Debug("batch committed", "job", e.jobID, "size", len(batch), "enriched", enriched, "skipped", skipped)
	}
}

// flush writes the terminal state with fresh counts. It runs after ctx
// may have been cancelled, so it uses a detached context.
func (e *Executor) flush(ctx context.Context, state *domain.ProcessState, changed bool) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	if counts, err := e.records.Counts(flushCtx); err == nil {
		state.Apply(counts)
	} else {
		logger.Warn("final counts unavailable", "job", e.jobID, "error", err)
	}
	state.LastHeartbeat = time.Now().UTC()
	if err := e.states.SaveState(flushCtx, state); err != nil {
		logger.Error("failed to persist final state", "job", e.jobID, "note", state.Note, "error", err)
	}
	if changed {
		e.transition(*state)
	}
}

// transition logs and records a state change.
func (e *Executor) transition(state domain.ProcessState) {
	logger.Info("enrichment state",
		"job", state.ID,
		"note", state.Note,
		"processed", state.Processed,
		"total", state.Total,
		"restart_count", state.RestartCount,
	)
	e.metrics.StateChanged(state.Note)
}

// alert sends a best-effort alert. Failures are logged, never returned.
func (e *Executor) alert(ctx context.Context, event domain.AlertEvent, message string, state domain.ProcessState) {
	if e.alerts == nil {
		return
	}
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()
	if err := e.alerts.Send(alertCtx, domain.NewAlert(event, message, state)); err != nil {
		if !errors.Is(err, domain.ErrAlertFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrAlertFailed, err)
		}
		logger.Warn("alert not delivered", "job", e.jobID, "event", event, "error", err)
	}
}
