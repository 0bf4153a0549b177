package ingest

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/agentstation/rmarecon/pkg/decode"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/logging"
	"github.com/agentstation/rmarecon/pkg/table"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadFileText(t *testing.T) {
	path := writeFile(t, "gsx.csv", []byte("report\nexported today\n採購訂單,維修,維修狀態\nA1-9,R100,維修中\n"))

	src, err := ReadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, src.Name)
	assert.Equal(t, FormatText, src.Format)
	assert.Equal(t, decode.UTF8, src.Encoding)
	assert.Equal(t, 2, src.Table.HeaderLine)
	assert.Equal(t, []string{"採購訂單", "維修", "維修狀態"}, src.Table.Headers)
	assert.Equal(t, []table.Row{{"採購訂單": "A1-9", "維修": "R100", "維修狀態": "維修中"}}, src.Table.Rows)
}

func TestReadLogsLoad(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	data := "單號,狀態\nA1-9,顧客領回\n"

	_, err := Read(ctx, "exports/sa.csv", strings.NewReader(data))
	require.NoError(t, err)

	tl.AssertField(t, "Loaded report", "file", "sa.csv")
	tl.AssertField(t, "Loaded report", "format", "text")
	tl.AssertField(t, "Loaded report", "bytes", float64(len(data)))
	tl.AssertField(t, "Loaded report", "encoding", "utf-8")
	tl.AssertNotContains(t, "Failed to load report")

	tl.Clear()
	_, err = Read(ctx, "book.xlsx", strings.NewReader("not a workbook"))
	require.Error(t, err)
	tl.AssertField(t, "Failed to load report", "format", "xlsx")
}

func TestReadFileBig5(t *testing.T) {
	text := "單號\t狀態\nA1-9\t顧客領回\n"
	encoded, err := traditionalchinese.Big5.NewEncoder().String(text)
	require.NoError(t, err)
	path := writeFile(t, "sa.txt", []byte(encoded))

	src, err := ReadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, decode.Big5, src.Encoding)
	assert.Equal(t, '\t', src.Table.Delimiter)
	assert.Equal(t, []table.Row{{"單號": "A1-9", "狀態": "顧客領回"}}, src.Table.Rows)
}

func TestReadFileWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Order No", "Status"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"A1-9", "Customer Picked Up"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	path := writeFile(t, "sa.XLSX", buf.Bytes())

	src, err := ReadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, FormatWorkbook, src.Format)
	assert.Empty(t, src.Encoding)
	assert.Equal(t, []table.Row{{"Order No": "A1-9", "Status": "Customer Picked Up"}}, src.Table.Rows)
}

func TestReadFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
		var ioErr *errors.IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "open", ioErr.Operation)
		assert.Equal(t, "io", errors.Kind(err))
	})

	t.Run("undecodable", func(t *testing.T) {
		path := writeFile(t, "bad.csv", []byte{0x81})
		_, err := ReadFile(context.Background(), path)
		require.True(t, errors.IsDecode(err))

		var de *errors.DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, path, de.Path)
	})

	t.Run("broken workbook", func(t *testing.T) {
		path := writeFile(t, "bad.xlsx", []byte("not a zip"))
		_, err := ReadFile(context.Background(), path)

		var pe *errors.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, path, pe.File)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Read(ctx, "x.csv", strings.NewReader("a,b\n1,2"))
		assert.True(t, errors.IsCanceled(err))
	})
}

func TestReadPair(t *testing.T) {
	gsxPath := writeFile(t, "gsx.csv", []byte("採購訂單,維修\nA1-9,R100\n"))
	saPath := writeFile(t, "sa.csv", []byte("單號,狀態\nA1-9,顧客領回\n"))

	gsx, sa, err := ReadPair(context.Background(), gsxPath, saPath)
	require.NoError(t, err)
	assert.Equal(t, gsxPath, gsx.Name)
	assert.Equal(t, saPath, sa.Name)
	assert.Equal(t, 1, gsx.Table.Len())
	assert.Equal(t, 1, sa.Table.Len())
}

func TestReadPairFailure(t *testing.T) {
	gsxPath := writeFile(t, "gsx.csv", []byte("採購訂單,維修\nA1-9,R100\n"))
	saPath := writeFile(t, "sa.csv", []byte{0x81})

	gsx, sa, err := ReadPair(context.Background(), gsxPath, saPath)
	require.Error(t, err)
	assert.Nil(t, gsx)
	assert.Nil(t, sa)
	assert.True(t, errors.IsDecode(err))
	assert.Contains(t, err.Error(), "loading SA report")

	var de *errors.DecodeError
	assert.True(t, stderrors.As(err, &de))
}
