package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/rmarecon/internal/cmd/cmdutil"
	"github.com/agentstation/rmarecon/internal/cmd/output"
	"github.com/agentstation/rmarecon/pkg/constants"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/logging"
)

// globalFlags holds the persistent flag values. They are kept apart from
// Config so that reloading the config file does not detach the bindings.
type globalFlags struct {
	configFile string
	vocabulary string
	verbose    bool
	quiet      bool
	noColor    bool
	format     string
	logLevel   string
}

// Execute runs the rmarecon CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Reconcile SA service-desk tickets against GSX repairs",
		Version: a.version,
		Long: `rmarecon joins an SA service-desk export to a GSX repair export on the
purchase order number and reports tickets whose statuses disagree.

Closure anomalies are tickets the customer has collected in SA that are
still open in GSX. Pickup anomalies are tickets ready for collection in SA
that GSX has not moved to a pickup state. Selected anomalies can be
written as a GSX multi-device upload file.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	f := &a.flags
	rootCmd.PersistentFlags().StringVar(&f.configFile, "config", "", "config file (default is $HOME/.rmarecon.yaml)")
	rootCmd.PersistentFlags().StringVar(&f.vocabulary, "vocabulary", "", "YAML file overriding column names, rule words and header keywords")
	rootCmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&f.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&f.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&f.format, "format", "o", "", "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate(constants.AppName + " {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	f := a.flags

	if f.configFile != "" {
		config, err := LoadConfig(f.configFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	a.config.UpdateFromFlags(f.verbose, f.quiet, f.noColor, f.format, f.logLevel)
	if f.vocabulary != "" {
		a.config.VocabularyFile = f.vocabulary
	}

	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return errors.NewValidationError("format", a.config.Format, err.Error())
	}
	a.config.Format = string(format)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	if err := a.loadVocabulary(); err != nil {
		return err
	}

	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))
	return nil
}

// ExitOnError prints err and exits with status 1. Errors that a command
// has already reported are not printed again.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	if !cmdutil.IsReported(err) {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
	}
	os.Exit(1)
}
