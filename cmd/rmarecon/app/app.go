// Package app provides the application context and dependency management
// for the rmarecon CLI. It centralizes configuration, logging and the
// construction of reconciliation sessions.
package app

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/rmarecon/internal/appcontext"
	"github.com/agentstation/rmarecon/internal/cmd/alerts"
	"github.com/agentstation/rmarecon/internal/cmd/output"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/reconcile"
	"github.com/agentstation/rmarecon/pkg/session"
	"github.com/agentstation/rmarecon/pkg/table"
)

// App represents the rmarecon application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config     *Config
	vocabulary *Vocabulary
	flags      globalFlags

	// Logger
	logger *zerolog.Logger
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations and can be replaced
// with functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Vocabulary returns the loaded vocabulary, or nil.
func (a *App) Vocabulary() *Vocabulary {
	return a.vocabulary
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured format, or the format detected from
// stdout when none is configured.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// ExportDir returns the configured export directory.
func (a *App) ExportDir() string {
	if a.config.ExportDir == "" {
		return "."
	}
	return a.config.ExportDir
}

// ReconcileOptions returns the engine overrides from config and vocabulary.
func (a *App) ReconcileOptions() []reconcile.Option {
	return ReconcileOptions(a.config, a.vocabulary)
}

// TableOptions returns the extractor overrides from config and vocabulary.
func (a *App) TableOptions() []table.Option {
	return TableOptions(a.config, a.vocabulary)
}

// NewSession returns a session whose status changes are written to status
// in the configured output format. Verbose mode also reports progress.
func (a *App) NewSession(status io.Writer) *session.Session {
	writer := alerts.NewFormatWriter(status, output.Format(a.OutputFormat()))
	if a.config.NoColor {
		writer = writer.WithConfig(alerts.WriterConfig{ShowDetails: true})
	}
	sink := alerts.NewSink(alerts.MultiWriter(writer, alerts.NewLogWriter(a.logger)))
	sink.Progress = a.config.Verbose
	sink.Hints = !a.config.Quiet

	return session.New(
		session.WithSink(sink),
		session.WithReconcileOptions(a.ReconcileOptions()...),
		session.WithTableOptions(a.TableOptions()...),
	)
}

// loadVocabulary reads the configured vocabulary file, if any.
func (a *App) loadVocabulary() error {
	if a.config.VocabularyFile == "" {
		return nil
	}
	vocab, err := LoadVocabulary(a.config.VocabularyFile)
	if err != nil {
		return errors.WrapConfig("vocabulary", err)
	}
	a.vocabulary = vocab
	a.logger.Debug().
		Str("file", a.config.VocabularyFile).
		Msg("Loaded vocabulary")
	return nil
}

// Shutdown performs graceful shutdown of the application. Runs are bound
// to the command context, so there is nothing left to stop once a command
// returns.
func (a *App) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.logger.Debug().Msg("Shutdown complete")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "config cannot be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithVocabulary sets a vocabulary directly, bypassing the vocabulary file.
func WithVocabulary(vocab *Vocabulary) Option {
	return func(a *App) error {
		a.vocabulary = vocab
		return nil
	}
}
