// Package alerts turns session status reports into user-facing status
// lines.
package alerts

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Alert is one status line shown to the user.
type Alert struct {
	Level     Level
	Message   string
	Details   []string
	Kind      string // failure class, empty unless Err is set
	Count     int    // tickets the status refers to, if any
	Timestamp time.Time
	Err       error
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewError creates a new error alert.
func NewError(message string) *Alert {
	return New(LevelError, message)
}

// NewWarning creates a new warning alert.
func NewWarning(message string) *Alert {
	return New(LevelWarning, message)
}

// NewSuccess creates a new success alert.
func NewSuccess(message string) *Alert {
	return New(LevelSuccess, message)
}

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails adds additional context details to the alert.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns the status line: icon, message and the error, if any.
func (a *Alert) String() string {
	message := fmt.Sprintf("%s %s", a.Level.Icon(), a.Message)
	if a.Err != nil {
		message += fmt.Sprintf(": %v", a.Err)
	}
	return message
}

// Writer handles alert output to different formats and destinations.
type Writer interface {
	WriteAlert(alert *Alert) error
}

// WriterFunc is an adapter to allow functions to be used as Writers.
type WriterFunc func(*Alert) error

// WriteAlert calls the function.
func (f WriterFunc) WriteAlert(alert *Alert) error {
	return f(alert)
}

// MultiWriter creates a writer that writes to multiple writers. It stops
// at the first error.
func MultiWriter(writers ...Writer) Writer {
	return WriterFunc(func(alert *Alert) error {
		for _, w := range writers {
			if err := w.WriteAlert(alert); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewLogWriter returns a Writer that records every alert as a debug log
// event, so status history ends up in log files alongside run events.
func NewLogWriter(logger *zerolog.Logger) Writer {
	return WriterFunc(func(alert *Alert) error {
		event := logger.Debug().
			Str("level", alert.Level.String()).
			Str("status", alert.Message)
		if alert.Kind != "" {
			event = event.Str("kind", alert.Kind)
		}
		if alert.Count > 0 {
			event = event.Int("count", alert.Count)
		}
		event.Msg("Status")
		return nil
	})
}
