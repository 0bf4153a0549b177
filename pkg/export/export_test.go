package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/reconcile"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		records []*reconcile.MatchedRecord
		want    string
	}{
		{
			name:    "single record",
			records: []*reconcile.MatchedRecord{{GSXTicketID: "R100"}},
			want: "\uFEFF" +
				"Status,Repair ID,Repair Status,Technician ID,Part Details,Error Message\n" +
				",repairId,repairStatus,technicianId,\"parts[number, kgbDeviceDetail.id]\",\n" +
				",R100,SPCM,,,\n",
		},
		{
			name: "order is preserved",
			records: []*reconcile.MatchedRecord{
				{GSXTicketID: "R2"},
				{GSXTicketID: "R1"},
				{GSXTicketID: "-"},
			},
			want: "\uFEFF" + HeaderLine + "\n" + TemplateLine + "\n" +
				",R2,SPCM,,,\n,R1,SPCM,,,\n,-,SPCM,,,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.records)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestFormatEmpty(t *testing.T) {
	for _, records := range [][]*reconcile.MatchedRecord{nil, {}} {
		got, err := Format(records)
		assert.ErrorIs(t, err, errors.ErrNothingSelected)
		assert.Nil(t, got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", DefaultFilename(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

	err := WriteFile(path, []*reconcile.MatchedRecord{{GSXTicketID: "R100"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, _ := Format([]*reconcile.MatchedRecord{{GSXTicketID: "R100"}})
	assert.Equal(t, want, data)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is renamed away")
}

func TestWriteFileNothingSelected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	err := WriteFile(path, nil)
	assert.ErrorIs(t, err, errors.ErrNothingSelected)
	assert.NoFileExists(t, path)
}

func TestDefaultFilename(t *testing.T) {
	got := DefaultFilename(time.Date(2024, 12, 3, 15, 4, 5, 0, time.Local))
	assert.Equal(t, "gsx-multi-device-upload_2024-12-03.csv", got)
}
