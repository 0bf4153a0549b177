// Package export renders matched records into the GSX multi-device upload
// template.
package export

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/rmarecon/pkg/constants"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/reconcile"
)

// Template lines required by the upload system, in order.
const (
	HeaderLine   = "Status,Repair ID,Repair Status,Technician ID,Part Details,Error Message"
	TemplateLine = `,repairId,repairStatus,technicianId,"parts[number, kgbDeviceDetail.id]",`

	// StatusCode is the status every uploaded ticket is moved to.
	StatusCode = "SPCM"
)

const bom = "\uFEFF"

// Format renders records as upload CSV: a byte order mark, the two template
// lines, then one line per record carrying only its GSX ticket id. Every
// line ends in "\n". An empty selection returns ErrNothingSelected.
func Format(records []*reconcile.MatchedRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, errors.ErrNothingSelected
	}

	var buf bytes.Buffer
	buf.WriteString(bom)
	buf.WriteString(HeaderLine)
	buf.WriteByte('\n')
	buf.WriteString(TemplateLine)
	buf.WriteByte('\n')
	for _, r := range records {
		buf.WriteByte(',')
		buf.WriteString(r.GSXTicketID)
		buf.WriteString("," + StatusCode + ",,,\n")
	}
	return buf.Bytes(), nil
}

// WriteFile formats records and writes them to path. The file is written to
// a temporary name in the same directory and renamed into place, so a
// failed export never leaves a partial file behind.
func WriteFile(path string, records []*reconcile.MatchedRecord) error {
	data, err := Format(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", path, err)
	}
	if err := tempFile.Chmod(constants.FilePermissions); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", path, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("close", path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// DefaultFilename returns the suggested file name for an export made at t.
func DefaultFilename(t time.Time) string {
	return constants.ExportFilePrefix + "_" + t.Format(constants.ExportDateLayout) + ".csv"
}
