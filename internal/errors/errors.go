// Package errors defines the typed error values used across the scan
// pipeline. Every error carries enough context to become a user-facing
// notification without re-deriving state at the report site.
package errors

import "fmt"

// ErrorType groups errors by subsystem.
type ErrorType string

const (
	ErrorTypeScan    ErrorType = "scan"
	ErrorTypeParse   ErrorType = "parse"
	ErrorTypeResolve ErrorType = "resolve"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeWorker  ErrorType = "worker"
)

// ScanError represents a scan failure outside parsing, such as a
// source file that cannot be read.
type ScanError struct {
	Type       ErrorType
	Operation  string
	Path       string
	Underlying error
}

// NewScanError creates a scan error for an operation on a path.
func NewScanError(op, path string, err error) *ScanError {
	return &ScanError{Type: ErrorTypeScan, Operation: op, Path: path, Underlying: err}
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *ScanError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a per-file parse failure. The scan records it
// as an error-severity file outcome and continues with other files.
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Reason     string
	Underlying error
}

// NewParseError creates a parse error for a file.
func NewParseError(path, reason string, err error) *ParseError {
	return &ParseError{Type: ErrorTypeParse, FilePath: path, Reason: reason, Underlying: err}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("parse failed for %s: %s: %v", e.FilePath, e.Reason, e.Underlying)
	}
	return fmt.Sprintf("parse failed for %s: %s", e.FilePath, e.Reason)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// ResolveError represents a module-resolution failure: an alias or
// workspace rule matched the specifier but no candidate file exists.
type ResolveError struct {
	Type       ErrorType
	Specifier  string
	FromFile   string
	Underlying error
}

// NewResolveError creates a resolve error for a specifier.
func NewResolveError(specifier, fromFile string, err error) *ResolveError {
	return &ResolveError{Type: ErrorTypeResolve, Specifier: specifier, FromFile: fromFile, Underlying: err}
}

// Error implements the error interface
func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve failed for %q from %s: %v", e.Specifier, e.FromFile, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ResolveError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration problem. The scan proceeds
// with defaults after surfacing it as a warn notification.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
}

// NewConfigError creates a config error for a field/value pair.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// WorkerError represents a fatal worker failure. Unlike every other
// error in this package it aborts the scan.
type WorkerError struct {
	Type       ErrorType
	WorkerID   int
	Underlying error
}

// NewWorkerError creates a worker error.
func NewWorkerError(workerID int, err error) *WorkerError {
	return &WorkerError{Type: ErrorTypeWorker, WorkerID: workerID, Underlying: err}
}

// Error implements the error interface
func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d failed: %v", e.WorkerID, e.Underlying)
}

// Unwrap returns the underlying error
func (e *WorkerError) Unwrap() error {
	return e.Underlying
}
