package output

import (
	"io"

	"github.com/agentstation/rmarecon/internal/cmd/table"
	"github.com/agentstation/rmarecon/pkg/reconcile"
)

// Records writes a record set. Table formats get a selection column drawn
// from selected; structured formats get the records themselves.
func Records(w io.Writer, format Format, records []*reconcile.MatchedRecord, selected func(id string) bool) error {
	formatter := NewFormatter(format)
	if format.IsTable() {
		return formatter.Format(w, table.RecordsToTableData(records, selected, format == FormatWide))
	}
	if records == nil {
		records = []*reconcile.MatchedRecord{}
	}
	return formatter.Format(w, records)
}
