// Package table converts pipeline values into rows for CLI table output.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/rmarecon/internal/cmd/emoji"
	"github.com/agentstation/rmarecon/pkg/fields"
	"github.com/agentstation/rmarecon/pkg/ingest"
	"github.com/agentstation/rmarecon/pkg/reconcile"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// RecordsToTableData converts matched records to table format. selected
// marks the rows chosen for export; it may be nil.
func RecordsToTableData(records []*reconcile.MatchedRecord, selected func(id string) bool, wide bool) Data {
	headers := []string{"", "#", "GSX Ticket", "RMA Order", "SA Status", "GSX Status", "Created"}
	align := []Align{AlignCenter, AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Anomaly", "ID")
		align = append(align, AlignCenter, AlignLeft)
	}

	rows := make([][]string, 0, len(records))
	for i, r := range records {
		mark := ""
		if selected != nil && selected(r.ID) {
			mark = emoji.Success
		}
		row := []string{
			mark,
			strconv.Itoa(i + 1),
			r.GSXTicketID,
			r.RMAOrderID,
			r.SAStatus,
			r.GSXStatus,
			r.CreatedDate,
		}
		if wide {
			anomaly := ""
			if r.IsAnomaly {
				anomaly = emoji.Warning
			}
			row = append(row, anomaly, r.ID)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// StatsToTableData converts run statistics to a key-value table.
func StatsToTableData(result *reconcile.Result) Data {
	s := result.Stats
	return KeyValue(
		[2]string{"GSX rows", strconv.Itoa(s.GSXRows)},
		[2]string{"SA rows", strconv.Itoa(s.SARows)},
		[2]string{"Indexed keys", strconv.Itoa(s.Indexed)},
		[2]string{"Duplicate keys", strconv.Itoa(s.DuplicateKeys)},
		[2]string{"Skipped SA rows", strconv.Itoa(s.Skipped)},
		[2]string{"Unmatched SA rows", strconv.Itoa(s.Unmatched)},
		[2]string{"Matched", strconv.Itoa(result.MatchCount)},
		[2]string{"Closure anomalies", strconv.Itoa(len(result.ClosureAnomalies))},
		[2]string{"Pickup anomalies", strconv.Itoa(len(result.PickupAnomalies))},
		[2]string{"Duration", s.Duration.String()},
	)
}

// SourceToTableData describes a loaded report and the columns its side
// resolved to.
func SourceToTableData(src *ingest.Source, roles fields.FieldMap) Data {
	encoding := string(src.Encoding)
	if encoding == "" {
		encoding = "-"
	}
	pairs := [][2]string{
		{"File", src.Name},
		{"Format", string(src.Format)},
		{"Encoding", encoding},
		{"Header line", strconv.Itoa(src.Table.HeaderLine + 1)},
		{"Delimiter", DelimiterName(src.Table.Delimiter)},
		{"Headers", strings.Join(src.Table.Headers, " | ")},
		{"Rows", strconv.Itoa(src.Table.Len())},
	}
	for _, role := range fields.Roles() {
		header, ok := roles.Header(role)
		if !ok {
			header = emoji.Error + " unresolved"
		}
		pairs = append(pairs, [2]string{"Column " + string(role), header})
	}
	return KeyValue(pairs...)
}

// KeyValue builds a two-column Property/Value table.
func KeyValue(pairs ...[2]string) Data {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

// DelimiterName returns a readable name for a field delimiter.
func DelimiterName(d rune) string {
	switch d {
	case '\t':
		return "tab"
	case ',':
		return "comma"
	case 0:
		return "none (workbook)"
	}
	return fmt.Sprintf("%q", d)
}
