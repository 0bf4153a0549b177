package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/rmarecon/internal/cmd/cmdutil"
	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/reconcile"
)

// newTestApp creates an app isolated from the developer's environment.
func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := chdir(t)
	t.Setenv("LOG_OUTPUT", "discard")

	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app, dir
}

// run executes the root command and captures both streams.
func run(t *testing.T, app *App, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := app.createRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) failed: %v", name, err)
	}
	return path
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, _ := newTestApp(t)

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
	if app.ExportDir() != "." {
		t.Errorf("ExportDir() = %s, want .", app.ExportDir())
	}
	if app.Vocabulary() != nil {
		t.Error("Vocabulary() should be nil without a vocabulary file")
	}
}

// TestApp_WithConfig verifies functional options.
func TestApp_WithConfig(t *testing.T) {
	chdir(t)

	config := &Config{Format: "yaml", ExportDir: "/tmp/uploads", LogOutput: "discard"}
	app, err := New("1.0.0", "", "", "", WithConfig(config))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if app.OutputFormat() != "yaml" {
		t.Errorf("OutputFormat() = %s, want yaml", app.OutputFormat())
	}
	if app.ExportDir() != "/tmp/uploads" {
		t.Errorf("ExportDir() = %s, want /tmp/uploads", app.ExportDir())
	}

	logger := zerolog.Nop()
	app, err = New("1.0.0", "", "", "", WithLogger(&logger))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if app.Logger() != &logger {
		t.Error("Logger() did not return the injected logger")
	}

	if _, err := New("1.0.0", "", "", "", WithConfig(nil)); !errors.IsValidationError(err) {
		t.Errorf("WithConfig(nil) error = %v, want validation error", err)
	}
}

// TestApp_Execute_Reconcile runs a reconciliation through the root command.
func TestApp_Execute_Reconcile(t *testing.T) {
	app, dir := newTestApp(t)
	gsx := writeFile(t, dir, "gsx.csv", "採購訂單,維修,維修狀態,建立日期\nA1-9,R100,維修中,2024-05-01\n")
	sa := writeFile(t, dir, "sa.csv", "單號,狀態\nA1-9,顧客領回\n")

	stdout, _, err := run(t, app, "-o", "json", "reconcile", "--gsx", gsx, "--sa", sa, "--set", "closure")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	var records []reconcile.MatchedRecord
	if err := json.Unmarshal([]byte(stdout), &records); err != nil {
		t.Fatalf("invalid JSON output %q: %v", stdout, err)
	}
	if len(records) != 1 || records[0].GSXTicketID != "R100" {
		t.Errorf("records = %+v, want one record for R100", records)
	}
}

// TestApp_Execute_Vocabulary verifies that --vocabulary changes the rules.
func TestApp_Execute_Vocabulary(t *testing.T) {
	app, dir := newTestApp(t)
	gsx := writeFile(t, dir, "gsx.csv", "採購訂單,維修,維修狀態\nA1,R100,維修中\n")
	sa := writeFile(t, dir, "sa.csv", "單號,狀態\nA1,已交付\n")
	vocab := writeFile(t, dir, "vocab.yaml", "rules:\n  closure:\n    sa_triggers: [已交付]\n")

	stdout, _, err := run(t, app, "-o", "json", "--vocabulary", vocab, "reconcile", "--gsx", gsx, "--sa", sa, "--set", "closure")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if app.Vocabulary() == nil {
		t.Fatal("vocabulary was not loaded")
	}
	if !strings.Contains(stdout, "R100") {
		t.Errorf("output %q does not contain R100", stdout)
	}
}

// TestApp_WithVocabulary verifies that an injected vocabulary drives a run
// without a vocabulary file.
func TestApp_WithVocabulary(t *testing.T) {
	dir := chdir(t)
	t.Setenv("LOG_OUTPUT", "discard")

	var vocab Vocabulary
	vocab.Rules.Closure = &reconcile.Rule{SATriggers: []string{"已交付"}}
	app, err := New("1.0.0", "", "", "", WithVocabulary(&vocab))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if app.Vocabulary() != &vocab {
		t.Fatal("Vocabulary() did not return the injected vocabulary")
	}

	gsx := writeFile(t, dir, "gsx.csv", "採購訂單,維修,維修狀態\nA1,R100,維修中\n")
	sa := writeFile(t, dir, "sa.csv", "單號,狀態\nA1,已交付\nA1,顧客領回\n")

	stdout, _, err := run(t, app, "-o", "json", "reconcile", "--gsx", gsx, "--sa", sa, "--set", "closure")
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	var records []reconcile.MatchedRecord
	if err := json.Unmarshal([]byte(stdout), &records); err != nil {
		t.Fatalf("invalid JSON output %q: %v", stdout, err)
	}
	if len(records) != 1 || records[0].SAStatus != "已交付" {
		t.Errorf("records = %+v, want only the 已交付 ticket", records)
	}
}

// TestApp_Execute_Errors verifies flag validation and error reporting.
func TestApp_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(dir string) []string
		reported bool
	}{
		{
			name:     "invalid format",
			args:     func(string) []string { return []string{"-o", "xml", "version"} },
			reported: false,
		},
		{
			name: "missing vocabulary",
			args: func(dir string) []string {
				return []string{"--vocabulary", filepath.Join(dir, "nope.yaml"), "version"}
			},
			reported: false,
		},
		{
			name: "missing report",
			args: func(dir string) []string {
				return []string{"reconcile", "--gsx", filepath.Join(dir, "nope.csv"), "--sa", filepath.Join(dir, "nope.csv")}
			},
			reported: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, dir := newTestApp(t)
			_, _, err := run(t, app, tt.args(dir)...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := cmdutil.IsReported(err); got != tt.reported {
				t.Errorf("IsReported() = %v, want %v (err: %v)", got, tt.reported, err)
			}
		})
	}
}

// TestApp_Shutdown verifies shutdown honors its context.
func TestApp_Shutdown(t *testing.T) {
	app, _ := newTestApp(t)

	if err := app.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.Shutdown(ctx); err == nil {
		t.Error("Shutdown() with cancelled context should fail")
	}
}
