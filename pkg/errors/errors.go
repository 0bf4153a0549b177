// Package errors provides custom error types for the rmarecon pipeline.
// Every failure the pipeline can surface is detected at whole-file or
// whole-run granularity; there is no per-row error channel.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the rmarecon pipeline
var (
	// ErrDecode indicates that no supported text encoding could decode an input
	ErrDecode = errors.New("undecodable input")

	// ErrMissingColumn indicates that a required column could not be resolved
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunInProgress indicates that a reconciliation run is already executing
	ErrRunInProgress = errors.New("run already in progress")

	// ErrNothingSelected indicates that an export was requested with an empty selection
	ErrNothingSelected = errors.New("nothing selected")

	// ErrNoResult indicates that no reconciliation result has been published yet
	ErrNoResult = errors.New("no result available")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// DecodeError reports that none of the supported encodings could decode a file.
type DecodeError struct {
	Path      string
	Attempted []string
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("cannot decode %s (tried %v)", e.Path, e.Attempted)
	}
	return fmt.Sprintf("cannot decode input (tried %v)", e.Attempted)
}

// Is implements errors.Is support
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// NewDecodeError creates a new DecodeError
func NewDecodeError(path string, attempted []string) *DecodeError {
	return &DecodeError{Path: path, Attempted: attempted}
}

// MissingColumnError reports a required logical field with no matching header.
type MissingColumnError struct {
	Side    string // "gsx" or "sa"
	Role    string
	Headers []string
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s report has no column for %s", e.Side, e.Role)
}

// Is implements errors.Is support
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// NewMissingColumnError creates a new MissingColumnError
func NewMissingColumnError(side, role string, headers []string) *MissingColumnError {
	return &MissingColumnError{Side: side, Role: role, Headers: headers}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "xlsx", "yaml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsDecode checks if an error is a decode failure
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsMissingColumn checks if an error is a missing required column
func IsMissingColumn(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRunInProgress checks if an error was caused by a concurrent run
func IsRunInProgress(err error) bool {
	return errors.Is(err, ErrRunInProgress)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Kind returns a short, stable name for the failure class of err.
// It is used for user-visible failure strings and structured logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrRunInProgress):
		return "run_in_progress"
	case errors.Is(err, ErrNothingSelected):
		return "nothing_selected"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return "io"
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "parse"
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return "config"
	}
	return "internal"
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapConfig wraps an error as a ConfigError
func WrapConfig(component string, err error) error {
	if err == nil {
		return nil
	}
	return NewConfigError(component, err.Error(), err)
}
