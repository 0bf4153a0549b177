// Package session drives reconciliation runs for an interactive caller.
//
// A Session owns the state that outlives a single call: the published
// snapshot of the last successful run and the export selection. Runs are
// single-flight; a Run started while another is in flight fails with
// errors.ErrRunInProgress. A run publishes its snapshot atomically on
// success and publishes nothing on failure or cancellation.
package session

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/export"
	"github.com/agentstation/rmarecon/pkg/ingest"
	"github.com/agentstation/rmarecon/pkg/logging"
	"github.com/agentstation/rmarecon/pkg/reconcile"
	"github.com/agentstation/rmarecon/pkg/table"
)

// Snapshot is the published outcome of one successful run.
type Snapshot struct {
	Result   *reconcile.Result
	GSX      *ingest.Source
	SA       *ingest.Source
	RunID    string
	Finished utc.Time
}

// Session runs reconciliations and exports their selected records.
type Session struct {
	sink          StatusSink
	reconcileOpts []reconcile.Option
	tableOpts     []table.Option
	now           func() utc.Time

	running   atomic.Bool
	snapshot  atomic.Pointer[Snapshot]
	last      atomic.Pointer[Status]
	selection *Selection
}

// Option configures a Session.
type Option func(*Session)

// WithSink sets the status sink.
func WithSink(sink StatusSink) Option {
	return func(s *Session) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithReconcileOptions passes options to every reconciliation.
func WithReconcileOptions(opts ...reconcile.Option) Option {
	return func(s *Session) {
		s.reconcileOpts = append(s.reconcileOpts, opts...)
	}
}

// WithTableOptions passes options to the table extractors.
func WithTableOptions(opts ...table.Option) Option {
	return func(s *Session) {
		s.tableOpts = append(s.tableOpts, opts...)
	}
}

// WithClock sets the time source used for snapshots.
func WithClock(now func() utc.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an idle session.
func New(opts ...Option) *Session {
	s := &Session{
		sink:      nopSink{},
		now:       utc.Now,
		selection: NewSelection(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.report(Status{State: StateIdle, Message: "Ready"})
	return s
}

// Snapshot returns the last published snapshot, or nil.
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Selection returns the session's export selection.
func (s *Session) Selection() *Selection {
	return s.selection
}

// Status returns the most recent status report.
func (s *Session) Status() Status {
	if st := s.last.Load(); st != nil {
		return *st
	}
	return Status{State: StateIdle}
}

// Running reports whether a run is in flight.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Run loads both reports, reconciles them and publishes the snapshot.
// The previous snapshot and the selection are discarded when the run
// starts. After a run with matches, every closure anomaly is selected.
func (s *Session) Run(ctx context.Context, gsxPath, saPath string) (*Snapshot, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, errors.ErrRunInProgress
	}
	defer s.running.Store(false)

	runID := uuid.NewString()
	ctx = logging.WithOperation(logging.WithRunID(ctx, runID), "reconcile")
	logger := logging.FromContext(ctx)

	s.selection.Clear()
	s.snapshot.Store(nil)
	s.report(Status{State: StateRunning, Message: "Analyzing reports..."})
	logger.Info().
		Str("gsx", gsxPath).
		Str("sa", saPath).
		Msg("Starting reconciliation run")

	gsx, sa, err := ingest.ReadPair(ctx, gsxPath, saPath, s.tableOpts...)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if err := checkCanceled(ctx); err != nil {
		return nil, s.fail(ctx, err)
	}

	result, err := reconcile.Reconcile(ctx, gsx.Table, sa.Table, s.reconcileOpts...)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if err := checkCanceled(ctx); err != nil {
		return nil, s.fail(ctx, err)
	}

	snap := &Snapshot{
		Result:   result,
		GSX:      gsx,
		SA:       sa,
		RunID:    runID,
		Finished: s.now(),
	}
	s.snapshot.Store(snap)

	if result.Outcome() == reconcile.OutcomeNoMatches {
		s.report(Status{State: StateNoMatches, Message: "No matching repair tickets found"})
		return snap, nil
	}

	for _, r := range result.ClosureAnomalies {
		s.selection.Select(r.ID)
	}
	s.report(Status{
		State:   StateSuccess,
		Message: fmt.Sprintf("Analysis complete: %d tickets matched", result.MatchCount),
		Count:   result.MatchCount,
	})
	return snap, nil
}

// Export writes the selected records of the named result set to path and
// returns the terminal status. An empty selection writes nothing and
// yields StateExportCancelled with a nil error.
func (s *Session) Export(path, set string) (Status, error) {
	snap := s.Snapshot()
	if snap == nil {
		return s.exportFailed(errors.ErrNoResult)
	}

	records, err := snap.Result.Set(set)
	if err != nil {
		return s.exportFailed(err)
	}
	selected := s.selection.Selected(records)
	if len(selected) == 0 {
		st := Status{State: StateExportCancelled, Message: "Export cancelled: no tickets selected"}
		s.report(st)
		return st, nil
	}

	if err := export.WriteFile(path, selected); err != nil {
		return s.exportFailed(err)
	}

	st := Status{
		State:   StateExportSucceeded,
		Message: fmt.Sprintf("Exported %d tickets to %s", len(selected), path),
		Count:   len(selected),
	}
	s.report(st)
	return st, nil
}

func (s *Session) fail(ctx context.Context, err error) error {
	logging.FromContext(logging.WithError(ctx, err)).Error().
		Str("kind", errors.Kind(err)).
		Msg("Reconciliation run failed")
	s.report(Status{
		State:   StateFailed,
		Message: fmt.Sprintf("Analysis failed (%s): %v", errors.Kind(err), err),
		Err:     err,
	})
	return err
}

func (s *Session) exportFailed(err error) (Status, error) {
	st := Status{
		State:   StateExportFailed,
		Message: fmt.Sprintf("Export failed: %v", err),
		Err:     err,
	}
	s.report(st)
	return st, err
}

func (s *Session) report(st Status) {
	s.last.Store(&st)
	s.sink.Report(st)
}

func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return nil
}
