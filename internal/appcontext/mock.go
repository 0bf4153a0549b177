package appcontext

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/rmarecon/pkg/reconcile"
	"github.com/agentstation/rmarecon/pkg/session"
	"github.com/agentstation/rmarecon/pkg/table"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	LoggerFunc           func() *zerolog.Logger
	OutputFormatFunc     func() string
	ExportDirFunc        func() string
	ReconcileOptionsFunc func() []reconcile.Option
	TableOptionsFunc     func() []table.Option
	NewSessionFunc       func(status io.Writer) *session.Session
	VersionFunc          func() string
	CommitFunc           func() string
	DateFunc             func() string
	BuiltByFunc          func() string
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// ExportDir returns the directory using the mock function or ".".
func (m *Mock) ExportDir() string {
	if m.ExportDirFunc != nil {
		return m.ExportDirFunc()
	}
	return "."
}

// ReconcileOptions returns options using the mock function or none.
func (m *Mock) ReconcileOptions() []reconcile.Option {
	if m.ReconcileOptionsFunc != nil {
		return m.ReconcileOptionsFunc()
	}
	return nil
}

// TableOptions returns options using the mock function or none.
func (m *Mock) TableOptions() []table.Option {
	if m.TableOptionsFunc != nil {
		return m.TableOptionsFunc()
	}
	return nil
}

// NewSession returns a session using the mock function, or a session
// built from the mock's own options that reports nothing.
func (m *Mock) NewSession(status io.Writer) *session.Session {
	if m.NewSessionFunc != nil {
		return m.NewSessionFunc(status)
	}
	return session.New(
		session.WithReconcileOptions(m.ReconcileOptions()...),
		session.WithTableOptions(m.TableOptions()...),
	)
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
