// Package hints provides actionable guidance for failed or empty runs.
package hints

import (
	"fmt"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/session"
)

// Hint represents actionable user guidance.
type Hint struct {
	Message string // Human-readable guidance message
	Command string // Optional command to run
}

// New creates a new hint with the given message.
func New(message string) *Hint {
	return &Hint{Message: message}
}

// NewCommand creates a new hint with a specific command.
func NewCommand(message, command string) *Hint {
	return &Hint{Message: message, Command: command}
}

// String returns the hint as a single line.
func (h *Hint) String() string {
	if h.Command == "" {
		return "hint: " + h.Message
	}
	return fmt.Sprintf("hint: %s (run: %s)", h.Message, h.Command)
}

// ForStatus returns guidance for a status, or nil when there is nothing
// useful to suggest.
func ForStatus(st session.Status) []*Hint {
	switch st.State {
	case session.StateNoMatches:
		return []*Hint{
			NewCommand("Check that both reports resolve a purchase order column",
				"rmarecon inspect <file> --side sa"),
		}
	case session.StateExportCancelled:
		return []*Hint{
			New("Use --select anomalies or --select all to choose tickets"),
		}
	case session.StateFailed, session.StateExportFailed:
		return forError(st.Err)
	}
	return nil
}

func forError(err error) []*Hint {
	switch errors.Kind(err) {
	case "decode":
		return []*Hint{
			New("Save the report as UTF-8, UTF-16, Big5 or Windows-1252 text, or as .xlsx"),
		}
	case "missing_column":
		return []*Hint{
			NewCommand("See which columns were detected", "rmarecon inspect <file>"),
			New("Map unusual header names with a --vocabulary file"),
		}
	case "io":
		return []*Hint{New("Check that the file exists and is readable")}
	}
	return nil
}
