package session

import "fmt"

// State is the coarse run state reported to a StatusSink.
type State int

// Run and export states.
const (
	StateIdle State = iota
	StateRunning
	StateSuccess
	StateNoMatches
	StateFailed
	StateExportSucceeded
	StateExportCancelled
	StateExportFailed
)

var stateNames = [...]string{
	StateIdle:            "idle",
	StateRunning:         "running",
	StateSuccess:         "success",
	StateNoMatches:       "no_matches",
	StateFailed:          "failed",
	StateExportSucceeded: "export_succeeded",
	StateExportCancelled: "export_cancelled",
	StateExportFailed:    "export_failed",
}

// String returns the state name.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether s ends a run or an export.
func (s State) Terminal() bool {
	return s != StateIdle && s != StateRunning
}

// Failure reports whether s is a failure state.
func (s State) Failure() bool {
	return s == StateFailed || s == StateExportFailed
}

// Status is one human-readable progress report.
type Status struct {
	State   State
	Message string
	Count   int
	Err     error
}

// StatusSink receives progress reports. Report is called synchronously from
// the goroutine running the operation.
type StatusSink interface {
	Report(Status)
}

// SinkFunc adapts a function to StatusSink.
type SinkFunc func(Status)

// Report calls f(s).
func (f SinkFunc) Report(s Status) { f(s) }

type nopSink struct{}

func (nopSink) Report(Status) {}
