package alerts

import (
	"fmt"

	"github.com/agentstation/rmarecon/internal/cmd/emoji"
	"github.com/agentstation/rmarecon/pkg/session"
)

// Level is the severity of a status line.
type Level int

const (
	// LevelError indicates a failure or error condition.
	LevelError Level = iota
	// LevelWarning marks a run or export that produced nothing.
	LevelWarning
	// LevelInfo marks progress.
	LevelInfo
	// LevelSuccess marks a completed run or export.
	LevelSuccess
)

// String returns the string representation of the alert level.
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// LevelFor maps a session state to the level it is shown at. Failures are
// errors; empty results and cancelled exports are warnings.
func LevelFor(state session.State) Level {
	switch state {
	case session.StateSuccess, session.StateExportSucceeded:
		return LevelSuccess
	case session.StateNoMatches, session.StateExportCancelled:
		return LevelWarning
	case session.StateFailed, session.StateExportFailed:
		return LevelError
	}
	return LevelInfo
}

// Icon returns the appropriate icon for the alert level.
func (l Level) Icon() string {
	switch l {
	case LevelError:
		return emoji.Error
	case LevelWarning:
		return emoji.Warning
	case LevelInfo:
		return emoji.Info
	case LevelSuccess:
		return emoji.Success
	default:
		return emoji.Unknown
	}
}

// Color returns ANSI color codes for terminal output.
func (l Level) Color() string {
	switch l {
	case LevelError:
		return "\033[31m" // Red
	case LevelWarning:
		return "\033[33m" // Yellow
	case LevelInfo:
		return "\033[36m" // Cyan
	case LevelSuccess:
		return "\033[32m" // Green
	default:
		return "\033[0m" // Reset
	}
}

// ResetColor returns the ANSI reset code.
func ResetColor() string {
	return "\033[0m"
}
