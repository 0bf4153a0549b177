// Package inspect provides the inspect command, which shows how a report
// file is decoded and which columns it resolves to.
package inspect

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/rmarecon/internal/cmd/alerts"
	"github.com/agentstation/rmarecon/internal/cmd/output"
	"github.com/agentstation/rmarecon/internal/cmd/table"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/fields"
	"github.com/agentstation/rmarecon/pkg/ingest"
	"github.com/agentstation/rmarecon/pkg/reconcile"
	tbl "github.com/agentstation/rmarecon/pkg/table"
)

// AppContext defines what the inspect command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	OutputFormat() string
	ReconcileOptions() []reconcile.Option
	TableOptions() []tbl.Option
}

// Report is the structured inspect output.
type Report struct {
	File       string            `json:"file" yaml:"file"`
	Side       string            `json:"side" yaml:"side"`
	Format     string            `json:"format" yaml:"format"`
	Encoding   string            `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	HeaderLine int               `json:"header_line" yaml:"header_line"`
	Delimiter  string            `json:"delimiter" yaml:"delimiter"`
	Headers    []string          `json:"headers" yaml:"headers"`
	Rows       int               `json:"rows" yaml:"rows"`
	Columns    map[string]string `json:"columns" yaml:"columns"`
}

// NewCommand creates the inspect command.
func NewCommand(app AppContext) *cobra.Command {
	var side string

	cmd := &cobra.Command{
		Use:     "inspect FILE",
		GroupID: "core",
		Short:   "Show how a report is decoded and which columns it resolves to",
		Args:    cobra.ExactArgs(1),
		Example: `  rmarecon inspect gsx.csv              # GSX column resolution
  rmarecon inspect sa.xlsx --side sa    # SA column resolution
  rmarecon inspect gsx.csv -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := fields.Side(side)
			if s != fields.GSX && s != fields.SA {
				return errors.NewValidationError("side", side, "must be gsx or sa")
			}
			return run(cmd, app, args[0], s)
		},
	}
	cmd.Flags().StringVar(&side, "side", string(fields.GSX), "which report the file is: gsx or sa")
	_ = cmd.RegisterFlagCompletionFunc("side", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(fields.GSX), string(fields.SA)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func run(cmd *cobra.Command, app AppContext, path string, side fields.Side) error {
	src, err := ingest.ReadFile(cmd.Context(), path, app.TableOptions()...)
	if err != nil {
		return err
	}

	var roles fields.FieldMap
	if side == fields.GSX {
		roles, _, err = reconcile.ResolveColumns(src.Table.Headers, nil, app.ReconcileOptions()...)
	} else {
		_, roles, err = reconcile.ResolveColumns(nil, src.Table.Headers, app.ReconcileOptions()...)
	}
	if err != nil {
		return err
	}
	app.Logger().Debug().
		Str("file", path).
		Str("side", string(side)).
		Int("resolved", len(roles)).
		Msg("Inspected report")

	format := output.Format(app.OutputFormat())
	if err := warnUnresolved(cmd, format, side, roles, src.Table.Headers); err != nil {
		return err
	}

	formatter := output.NewFormatter(format)
	if format.IsTable() {
		return formatter.Format(cmd.OutOrStdout(), table.SourceToTableData(src, roles))
	}
	return formatter.Format(cmd.OutOrStdout(), newReport(src, side, roles))
}

// warnUnresolved writes a warning alert for each role a run would need but
// cannot find.
func warnUnresolved(cmd *cobra.Command, format output.Format, side fields.Side, roles fields.FieldMap, headers []string) error {
	w := alerts.NewFormatWriter(cmd.ErrOrStderr(), format)
	if side == fields.GSX {
		if err := fields.RequireGSX(roles, headers); err != nil {
			return w.WriteAlert(alerts.NewWarning("A run with this GSX report would fail").WithError(err))
		}
		return nil
	}
	for _, role := range []fields.Role{fields.PurchaseOrderKey, fields.TicketStatus} {
		if _, ok := roles.Header(role); !ok {
			msg := fmt.Sprintf("No SA column for %s; every row would be skipped", role)
			if err := w.WriteAlert(alerts.NewWarning(msg)); err != nil {
				return err
			}
		}
	}
	return nil
}

func newReport(src *ingest.Source, side fields.Side, roles fields.FieldMap) Report {
	columns := make(map[string]string, len(roles))
	for role, header := range roles {
		columns[string(role)] = header
	}
	headers := src.Table.Headers
	if headers == nil {
		headers = []string{}
	}
	return Report{
		File:       src.Name,
		Side:       string(side),
		Format:     string(src.Format),
		Encoding:   string(src.Encoding),
		HeaderLine: src.Table.HeaderLine + 1,
		Delimiter:  table.DelimiterName(src.Table.Delimiter),
		Headers:    headers,
		Rows:       src.Table.Len(),
		Columns:    columns,
	}
}
