// Package table extracts a header row and keyed rows from loosely formatted
// report exports.
//
// Exports often carry title or filter lines above the real header, so the
// header is found by keyword rather than assumed to be the first line.
package table

import (
	"strings"
)

// Row maps a header name to the cell value in that column. A header with no
// value on a short line is absent, not empty.
type Row map[string]string

// RawTable is a parsed report. It is not modified after Extract returns.
type RawTable struct {
	Headers []string
	Rows    []Row

	// HeaderLine is the index, among non-empty lines, of the header row.
	HeaderLine int
	// Delimiter is the field separator, or 0 when cells came pre-split.
	Delimiter rune
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// DefaultHeaderKeywords are the terms whose presence marks a header line:
// "purchase", "order number", "order" and "status" as they appear in the
// Chinese- and English-locale exports.
var DefaultHeaderKeywords = []string{"採購", "Purchase", "單號", "Order", "Status"}

type options struct {
	keywords []string
}

// Option configures Extract and ExtractWorkbook.
type Option func(*options)

// WithHeaderKeywords replaces the header detection keywords.
// An empty list keeps the defaults.
func WithHeaderKeywords(keywords ...string) Option {
	return func(o *options) {
		if len(keywords) > 0 {
			o.keywords = keywords
		}
	}
}

func newOptions(opts ...Option) *options {
	o := &options{keywords: DefaultHeaderKeywords}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extract parses decoded report text. It never fails: when no line contains
// a header keyword the first line is used as the header, and text with no
// non-empty lines yields an empty table.
func Extract(text string, opts ...Option) *RawTable {
	o := newOptions(opts...)
	lines := splitLines(text)
	if len(lines) == 0 {
		return &RawTable{Delimiter: ','}
	}

	headerIdx := detectHeader(lines, o.keywords)
	delim := ','
	if strings.ContainsRune(lines[headerIdx], '\t') {
		delim = '\t'
	}

	headers := splitFields(lines[headerIdx], delim)
	rows := make([]Row, 0, len(lines)-headerIdx-1)
	for _, line := range lines[headerIdx+1:] {
		if row, ok := zip(headers, splitFields(line, delim)); ok {
			rows = append(rows, row)
		}
	}

	return &RawTable{
		Headers:    headers,
		Rows:       rows,
		HeaderLine: headerIdx,
		Delimiter:  delim,
	}
}

// splitLines splits on every newline variant and drops empty lines.
// Lines holding only spaces are kept.
func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
			return true
		}
		return false
	})
}

func detectHeader(lines []string, keywords []string) int {
	for i, line := range lines {
		for _, kw := range keywords {
			if strings.Contains(line, kw) {
				return i
			}
		}
	}
	return 0
}

func splitFields(line string, delim rune) []string {
	fields := strings.Split(line, string(delim))
	for i, f := range fields {
		fields[i] = cleanField(f)
	}
	return fields
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// zip pairs values with headers by position. Lines with fewer than two
// fields are rejected. Later duplicate headers overwrite earlier ones.
func zip(headers, values []string) (Row, bool) {
	if len(values) <= 1 {
		return nil, false
	}
	row := make(Row, len(headers))
	for i, h := range headers {
		if i >= len(values) {
			break
		}
		row[h] = values[i]
	}
	return row, true
}
