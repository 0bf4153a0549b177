package alerts

import (
	"github.com/agentstation/rmarecon/internal/cmd/hints"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/session"
)

// Sink reports session status changes as alerts.
type Sink struct {
	Writer Writer

	// Progress also reports the running state.
	Progress bool

	// Hints appends next-step guidance to failures and empty results.
	Hints bool
}

var _ session.StatusSink = (*Sink)(nil)

// NewSink returns a sink that writes terminal states to w.
func NewSink(w Writer) *Sink {
	return &Sink{Writer: w}
}

// Report implements session.StatusSink. Write errors are dropped; a status
// line is never worth failing a run over.
func (s *Sink) Report(st session.Status) {
	alert := FromStatus(st)
	if alert == nil {
		return
	}
	if !st.State.Terminal() && !s.Progress {
		return
	}
	if s.Hints {
		for _, h := range hints.ForStatus(st) {
			alert.WithDetails(h.String())
		}
	}
	_ = s.Writer.WriteAlert(alert)
}

// FromStatus converts a session status to an alert, or nil for the idle
// state.
func FromStatus(st session.Status) *Alert {
	if st.State == session.StateIdle {
		return nil
	}
	alert := New(LevelFor(st.State), st.Message)
	alert.Count = st.Count
	if st.Err != nil {
		alert.Kind = errors.Kind(st.Err)
		alert.WithDetails("kind: " + alert.Kind)
	}
	return alert
}
