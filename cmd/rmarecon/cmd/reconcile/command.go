// Package reconcile provides the reconcile command.
package reconcile

import (
	"io"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/rmarecon/internal/cmd/cmdutil"
	"github.com/agentstation/rmarecon/internal/cmd/output"
	"github.com/agentstation/rmarecon/internal/cmd/table"
	"github.com/agentstation/rmarecon/pkg/reconcile"
	"github.com/agentstation/rmarecon/pkg/session"
)

// AppContext defines what the reconcile command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	OutputFormat() string
	NewSession(status io.Writer) *session.Session
}

// NewCommand creates the reconcile command.
func NewCommand(app AppContext) *cobra.Command {
	var showStats bool

	cmd := &cobra.Command{
		Use:     "reconcile",
		GroupID: "core",
		Short:   "Match SA tickets to GSX repairs and list status anomalies",
		Aliases: []string{"run"},
		Args:    cobra.NoArgs,
		Example: `  rmarecon reconcile --gsx gsx.csv --sa sa.csv                # All matched tickets
  rmarecon reconcile --gsx gsx.csv --sa sa.xlsx --set closure # Closure anomalies only
  rmarecon reconcile --gsx gsx.csv --sa sa.csv -o json        # Machine-readable`,
	}
	flags := cmdutil.AddInputFlags(cmd, reconcile.SetAll)
	cmd.Flags().BoolVar(&showStats, "stats", false, "also print run statistics")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := flags.Validate(); err != nil {
			return err
		}
		return run(cmd, app, flags, showStats)
	}

	return cmd
}

func run(cmd *cobra.Command, app AppContext, flags *cmdutil.InputFlags, showStats bool) error {
	sess := app.NewSession(cmd.ErrOrStderr())
	snap, err := sess.Run(cmd.Context(), flags.GSX, flags.SA)
	if err != nil {
		return cmdutil.Reported(err)
	}

	records, err := snap.Result.Set(flags.Set)
	if err != nil {
		return err
	}
	app.Logger().Debug().
		Str("set", flags.Set).
		Int("records", len(records)).
		Msg("Printing result set")

	format := output.Format(app.OutputFormat())
	out := cmd.OutOrStdout()
	if showStats {
		if format.IsTable() {
			if err := output.NewFormatter(format).Format(out, table.StatsToTableData(snap.Result)); err != nil {
				return err
			}
		} else {
			return output.NewFormatter(format).Format(out, newReport(snap, records))
		}
	}
	if snap.Result.Outcome() == reconcile.OutcomeNoMatches && format.IsTable() {
		return nil
	}
	return output.Records(out, format, records, sess.Selection().IsSelected)
}

// report is the structured output when statistics are requested.
type report struct {
	RunID    string                     `json:"run_id" yaml:"run_id"`
	Finished utc.Time                   `json:"finished" yaml:"finished"`
	Outcome  string                     `json:"outcome" yaml:"outcome"`
	Stats    reconcile.Stats            `json:"stats" yaml:"stats"`
	Records  []*reconcile.MatchedRecord `json:"records" yaml:"records"`
}

func newReport(snap *session.Snapshot, records []*reconcile.MatchedRecord) report {
	if records == nil {
		records = []*reconcile.MatchedRecord{}
	}
	return report{
		RunID:    snap.RunID,
		Finished: snap.Finished,
		Outcome:  snap.Result.Outcome().String(),
		Stats:    snap.Result.Stats,
		Records:  records,
	}
}
