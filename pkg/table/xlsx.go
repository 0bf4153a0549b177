package table

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/rmarecon/pkg/errors"
)

// ExtractWorkbook parses the first sheet of an .xlsx workbook with the same
// header detection and row admission rules as Extract. Cells arrive already
// split, so the returned table has Delimiter 0.
func ExtractWorkbook(r io.Reader, opts ...Option) (*RawTable, error) {
	o := newOptions(opts...)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParseError("xlsx", "", "cannot open workbook", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.NewParseError("xlsx", "", "workbook has no sheets", nil)
	}

	sheetRows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParseError("xlsx", "", "cannot read sheet "+sheet, err)
	}

	lines := make([][]string, 0, len(sheetRows))
	for _, cells := range sheetRows {
		if isBlank(cells) {
			continue
		}
		cleaned := make([]string, len(cells))
		for i, c := range cells {
			cleaned[i] = cleanField(c)
		}
		lines = append(lines, cleaned)
	}
	if len(lines) == 0 {
		return &RawTable{}, nil
	}

	headerIdx := 0
search:
	for i, cells := range lines {
		for _, c := range cells {
			for _, kw := range o.keywords {
				if strings.Contains(c, kw) {
					headerIdx = i
					break search
				}
			}
		}
	}

	headers := lines[headerIdx]
	rows := make([]Row, 0, len(lines)-headerIdx-1)
	for _, cells := range lines[headerIdx+1:] {
		if row, ok := zip(headers, cells); ok {
			rows = append(rows, row)
		}
	}

	return &RawTable{
		Headers:    headers,
		Rows:       rows,
		HeaderLine: headerIdx,
	}, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
