// Package constants provides shared constants used throughout the rmarecon codebase.
// This includes file permissions, naming conventions, and timeouts that
// should be consistent between the library packages and the CLI.
package constants

import "time"

// Application identity
const (
	// AppName is the binary and config-file stem.
	AppName = "rmarecon"

	// EnvPrefix is the prefix for environment variables read through viper.
	EnvPrefix = "RMARECON"

	// ConfigFileName is the config file name searched in $HOME and the working directory.
	ConfigFileName = ".rmarecon"
)

// Timeout constants
const (
	// CommandTimeout is the default timeout for a single CLI command
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds graceful shutdown after a failed command
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limits
const (
	// MaxInputBytes caps the size of a single report file read into memory.
	MaxInputBytes = 256 << 20
)

// Export naming
const (
	// ExportFilePrefix is the stem of the suggested upload file name.
	ExportFilePrefix = "gsx-multi-device-upload"

	// ExportDateLayout is appended to ExportFilePrefix.
	ExportDateLayout = "2006-01-02"
)
