// Package appcontext provides the shared application context interface
// used by all commands, so command packages do not depend on the concrete
// App type.
package appcontext

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/rmarecon/pkg/reconcile"
	"github.com/agentstation/rmarecon/pkg/session"
	"github.com/agentstation/rmarecon/pkg/table"
)

// Interface defines what commands need from the application.
// The App struct from cmd/rmarecon/app implements it; tests use Mock.
type Interface interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, wide, json, yaml).
	OutputFormat() string

	// ExportDir is the directory upload files are written to when no
	// explicit path is given.
	ExportDir() string

	// ReconcileOptions returns the rule and column overrides from config
	// and the vocabulary file.
	ReconcileOptions() []reconcile.Option

	// TableOptions returns the header keyword overrides.
	TableOptions() []table.Option

	// NewSession returns a session that reports status changes to status.
	NewSession(status io.Writer) *session.Session

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
