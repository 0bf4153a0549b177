// Package export provides the export command, which writes selected
// anomalies as a GSX multi-device upload file.
package export

import (
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/rmarecon/internal/cmd/cmdutil"
	"github.com/agentstation/rmarecon/internal/cmd/output"
	"github.com/agentstation/rmarecon/pkg/constants"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/export"
	"github.com/agentstation/rmarecon/pkg/reconcile"
	"github.com/agentstation/rmarecon/pkg/session"
)

// Selection keywords accepted by --select. Any other value names a record
// by id, GSX ticket or RMA order.
const (
	SelectPreselected = "preselected"
	SelectAnomalies   = "anomalies"
	SelectAll         = "all"
)

// AppContext defines what the export command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	OutputFormat() string
	ExportDir() string
	NewSession(status io.Writer) *session.Session
}

type exportFlags struct {
	selectors []string
	out       string
	dryRun    bool
}

// NewCommand creates the export command.
func NewCommand(app AppContext) *cobra.Command {
	ef := &exportFlags{}

	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "core",
		Short:   "Write selected anomalies as a GSX multi-device upload file",
		Long: `Export runs a reconciliation and writes the selected tickets of a result
set as a GSX multi-device upload CSV.

After a run every closure anomaly is preselected. --select replaces or
extends that selection:
  preselected  keep the closure anomalies selected by the run
  anomalies    every anomaly in the chosen set
  all          every record in the chosen set
  <value>      the record with that id, GSX ticket or RMA order

An empty selection writes nothing.`,
		Args: cobra.NoArgs,
		Example: `  rmarecon export --gsx gsx.csv --sa sa.csv                       # Closure anomalies
  rmarecon export --gsx gsx.csv --sa sa.csv --set pickup --select all
  rmarecon export --gsx gsx.csv --sa sa.csv --select R100 --out upload.csv
  rmarecon export --gsx gsx.csv --sa sa.csv --dry-run              # Show the selection only`,
	}
	flags := cmdutil.AddInputFlags(cmd, reconcile.SetClosure)
	cmd.Flags().StringSliceVar(&ef.selectors, "select", []string{SelectPreselected},
		"tickets to export: preselected, anomalies, all, or ids")
	cmd.Flags().StringVar(&ef.out, "out", "",
		"output file (default <export_dir>/"+constants.ExportFilePrefix+"_<date>.csv)")
	cmd.Flags().BoolVar(&ef.dryRun, "dry-run", false, "print the selection without writing a file")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := flags.Validate(); err != nil {
			return err
		}
		return run(cmd, app, flags, ef)
	}

	return cmd
}

func run(cmd *cobra.Command, app AppContext, flags *cmdutil.InputFlags, ef *exportFlags) error {
	logger := app.Logger()

	sess := app.NewSession(cmd.ErrOrStderr())
	snap, err := sess.Run(cmd.Context(), flags.GSX, flags.SA)
	if err != nil {
		return cmdutil.Reported(err)
	}

	records, err := snap.Result.Set(flags.Set)
	if err != nil {
		return err
	}
	if err := Apply(sess.Selection(), records, ef.selectors); err != nil {
		return err
	}
	logger.Debug().
		Str("set", flags.Set).
		Strs("select", ef.selectors).
		Int("selected", len(sess.Selection().Selected(records))).
		Msg("Built export selection")

	if ef.dryRun {
		selected := sess.Selection().Selected(records)
		return output.Records(cmd.OutOrStdout(), output.Format(app.OutputFormat()), selected, sess.Selection().IsSelected)
	}

	path := ef.out
	if path == "" {
		path = filepath.Join(app.ExportDir(), export.DefaultFilename(time.Now()))
	}
	if _, err := sess.Export(path, flags.Set); err != nil {
		return cmdutil.Reported(err)
	}
	return nil
}

// Apply builds the export selection for records from selectors. Unless
// selectors include "preselected", the run's preselection is discarded
// first. A selector that names no record is an error.
func Apply(sel *session.Selection, records []*reconcile.MatchedRecord, selectors []string) error {
	if !slices.Contains(selectors, SelectPreselected) {
		sel.Clear()
	}

	for _, s := range selectors {
		switch s {
		case SelectPreselected:
		case SelectAll:
			for _, r := range records {
				sel.Select(r.ID)
			}
		case SelectAnomalies:
			for _, r := range records {
				if r.IsAnomaly {
					sel.Select(r.ID)
				}
			}
		default:
			found := false
			for _, r := range records {
				if r.ID == s || r.GSXTicketID == s || r.RMAOrderID == s {
					sel.Select(r.ID)
					found = true
				}
			}
			if !found {
				return errors.NewValidationError("select", s, "no ticket in the result set matches")
			}
		}
	}
	return nil
}
