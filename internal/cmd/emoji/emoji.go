// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols shared by table output and status lines.
const (
	// Success marks completed operations and selected records.
	Success = "✓"

	// Error marks failures and unresolved columns.
	Error = "✗"

	// Warning marks anomalies and non-fatal notices.
	Warning = "!"

	// Info marks informational messages.
	Info = "i"

	// Skipped marks a cancelled or empty operation.
	Skipped = "-"

	// Unknown represents unknown or indeterminate states.
	Unknown = "?"
)
