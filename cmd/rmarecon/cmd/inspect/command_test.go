package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rmarecon/internal/appcontext"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/fields"
	"github.com/agentstation/rmarecon/pkg/reconcile"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, app AppContext, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func jsonApp() *appcontext.Mock {
	return &appcontext.Mock{OutputFormatFunc: func() string { return "json" }}
}

func TestInspectGSX(t *testing.T) {
	path := writeFile(t, "gsx.tsv", "Export generated 2024-05-01\n\n採購訂單\t維修\t維修狀態\t建立日期\nA1,R1,x\t1\t2\t3\n")

	stdout, stderr, err := execute(t, jsonApp(), path)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "gsx", report.Side)
	assert.Equal(t, "text", report.Format)
	assert.Equal(t, "utf-8", report.Encoding)
	assert.Equal(t, 2, report.HeaderLine)
	assert.Equal(t, "tab", report.Delimiter)
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, "採購訂單", report.Columns[string(fields.PurchaseOrderKey)])
	assert.Equal(t, "建立日期", report.Columns[string(fields.CreationDate)])
}

func TestInspectSA(t *testing.T) {
	path := writeFile(t, "sa.csv", "單號,保固狀態,狀態\nA1,x,顧客領回\n")

	stdout, _, err := execute(t, jsonApp(), path, "--side", "sa")
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "單號", report.Columns[string(fields.PurchaseOrderKey)])
	assert.Equal(t, "狀態", report.Columns[string(fields.TicketStatus)])
}

func TestInspectWarnings(t *testing.T) {
	tests := []struct {
		name string
		side string
		want string
	}{
		{"gsx without purchase order", "gsx", "A run with this GSX report would fail"},
		{"sa without status", "sa", "No SA column for ticket_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "report.csv", "Order No,Note\nA1,x\n")
			if tt.side == "gsx" {
				path = writeFile(t, "report.csv", "Vendor,Note\nA1,x\n")
			}

			app := &appcontext.Mock{OutputFormatFunc: func() string { return "table" }}
			stdout, stderr, err := execute(t, app, path, "--side", tt.side)
			require.NoError(t, err)
			assert.Contains(t, stderr, tt.want)
			assert.NotEmpty(t, stdout)
		})
	}
}

func TestInspectVocabularyOverride(t *testing.T) {
	path := writeFile(t, "gsx.csv", "Ref,Ticket\nA1,R1\n")
	app := &appcontext.Mock{
		OutputFormatFunc: func() string { return "json" },
		ReconcileOptionsFunc: func() []reconcile.Option {
			return []reconcile.Option{reconcile.WithGSXCandidates(fields.CandidateTable{
				fields.PurchaseOrderKey: {{Equals: []string{"Ref"}}},
			})}
		},
	}

	stdout, stderr, err := execute(t, app, path)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	var report Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "Ref", report.Columns[string(fields.PurchaseOrderKey)])
}

func TestInspectErrors(t *testing.T) {
	_, _, err := execute(t, jsonApp(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, "io", errors.Kind(err))

	path := writeFile(t, "gsx.csv", "採購訂單\nA1\n")
	_, _, err = execute(t, jsonApp(), path, "--side", "both")
	assert.True(t, errors.IsValidationError(err))
}
