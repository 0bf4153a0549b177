package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rmarecon/internal/appcontext"
	"github.com/agentstation/rmarecon/internal/cmd/alerts"
	"github.com/agentstation/rmarecon/internal/cmd/cmdutil"
	"github.com/agentstation/rmarecon/internal/cmd/output"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/reconcile"
	"github.com/agentstation/rmarecon/pkg/session"
)

const (
	gsxReport = "採購訂單,維修,維修狀態,建立日期\nA1-9,R100,維修中,2024-05-01\nB2,R200,待取件,2024-05-02\n"
	saReport  = "單號,狀態\nA1-9,顧客領回\nB2,抵達門市\nZZ,顧客領回\n"
)

func writeReports(t *testing.T, gsx, sa string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	gsxPath := filepath.Join(dir, "gsx.csv")
	saPath := filepath.Join(dir, "sa.csv")
	require.NoError(t, os.WriteFile(gsxPath, []byte(gsx), 0o600))
	require.NoError(t, os.WriteFile(saPath, []byte(sa), 0o600))
	return gsxPath, saPath
}

// finishedAt is the fixed session clock used by newApp.
var finishedAt = utc.New(time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))

func newApp(format string) *appcontext.Mock {
	return &appcontext.Mock{
		OutputFormatFunc: func() string { return format },
		NewSessionFunc: func(status io.Writer) *session.Session {
			return session.New(
				session.WithSink(alerts.NewSink(alerts.NewFormatWriter(status, output.FormatTable))),
				session.WithClock(func() utc.Time { return finishedAt }),
			)
		},
	}
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

func TestReconcileCommandJSON(t *testing.T) {
	gsx, sa := writeReports(t, gsxReport, saReport)

	tests := []struct {
		set     string
		tickets []string
	}{
		{reconcile.SetAll, []string{"R100", "R200"}},
		{reconcile.SetClosure, []string{"R100"}},
		{reconcile.SetPickup, nil},
	}

	for _, tt := range tests {
		t.Run(tt.set, func(t *testing.T) {
			stdout, stderr, err := execute(t, newApp("json"), "--gsx", gsx, "--sa", sa, "--set", tt.set)
			require.NoError(t, err)
			assert.Contains(t, stderr, "Analysis complete: 2 tickets matched")

			var records []reconcile.MatchedRecord
			require.NoError(t, json.Unmarshal([]byte(stdout), &records))
			var tickets []string
			for _, r := range records {
				tickets = append(tickets, r.GSXTicketID)
			}
			assert.Equal(t, tt.tickets, tickets)
		})
	}
}

func TestReconcileCommandTable(t *testing.T) {
	gsx, sa := writeReports(t, gsxReport, saReport)

	stdout, _, err := execute(t, newApp("table"), "--gsx", gsx, "--sa", sa, "--stats")
	require.NoError(t, err)
	assert.Contains(t, stdout, "R100")
	assert.Contains(t, stdout, "顧客領回")
	assert.Contains(t, stdout, "Unmatched")
}

func TestReconcileCommandStatsJSON(t *testing.T) {
	gsx, sa := writeReports(t, gsxReport, saReport)

	stdout, _, err := execute(t, newApp("json"), "--gsx", gsx, "--sa", sa, "--stats", "--set", "closure")
	require.NoError(t, err)

	var got struct {
		RunID    string          `json:"run_id"`
		Finished utc.Time        `json:"finished"`
		Outcome  string          `json:"outcome"`
		Stats    reconcile.Stats `json:"stats"`
		Records  []any           `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "matched", got.Outcome)
	assert.Equal(t, 1, got.Stats.Unmatched)
	assert.Len(t, got.Records, 1)
	assert.NotEmpty(t, got.RunID)
	assert.Contains(t, stdout, `"finished": "2024-05-01T09:30:00Z"`)
	assert.True(t, finishedAt.Equal(got.Finished), "finished = %s", got.Finished.RFC3339())
}

func TestReconcileCommandStatsYAML(t *testing.T) {
	gsx, sa := writeReports(t, gsxReport, saReport)

	stdout, _, err := execute(t, newApp("yaml"), "--gsx", gsx, "--sa", sa, "--stats")
	require.NoError(t, err)

	var got struct {
		Finished utc.Time `yaml:"finished"`
		Outcome  string   `yaml:"outcome"`
		Stats    struct {
			Indexed int `yaml:"indexed"`
		} `yaml:"stats"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "matched", got.Outcome)
	assert.Equal(t, 2, got.Stats.Indexed)
	assert.True(t, finishedAt.Equal(got.Finished), "finished = %s", got.Finished.RFC3339())
}

func TestReconcileCommandNoMatches(t *testing.T) {
	gsx, sa := writeReports(t, gsxReport, "單號,狀態\nQQ,顧客領回\n")

	stdout, stderr, err := execute(t, newApp("table"), "--gsx", gsx, "--sa", sa)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "No matching repair tickets found")
}

func TestReconcileCommandFailure(t *testing.T) {
	gsx, sa := writeReports(t, "Vendor,Note\nx,y\n", saReport)

	_, stderr, err := execute(t, newApp("table"), "--gsx", gsx, "--sa", sa)
	require.Error(t, err)
	assert.True(t, cmdutil.IsReported(err))
	assert.True(t, errors.IsMissingColumn(err))
	assert.Contains(t, stderr, "Analysis failed (missing_column)")
}

func TestReconcileCommandInvalidSet(t *testing.T) {
	gsx, sa := writeReports(t, gsxReport, saReport)

	_, _, err := execute(t, newApp("table"), "--gsx", gsx, "--sa", sa, "--set", "bogus")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.False(t, cmdutil.IsReported(err))
}
