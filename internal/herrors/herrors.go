// Package herrors classifies engine errors the way the rest of the codebase
// already reports them (wrapped with fmt.Errorf, sentinel values for
// equality checks) but adds a stable Code and Severity so a caller — the
// CLI, a pool worker deciding whether to log and continue versus abort —
// can branch on error class without string matching.
package herrors

import "fmt"

// Severity indicates how the engine expects the caller to react.
type Severity int

const (
	// SeverityWarning is recoverable: the current request failed but the
	// Context/Pool remain usable.
	SeverityWarning Severity = iota
	// SeverityError aborts the current request; the Context is still usable.
	SeverityError
	// SeverityFatal means the underlying resource or driver is no longer
	// trustworthy; the Context should be closed.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code groups errors into the four classes the engine distinguishes.
type Code string

const (
	// CodeFormat covers malformed HDF5 structures: bad signatures, version
	// numbers out of range, message bodies that don't parse.
	CodeFormat Code = "format"
	// CodeResource covers driver-level failures: short reads, a closed
	// resource, a network error from the S3 driver.
	CodeResource Code = "resource"
	// CodePipeline covers chunk-filter failures: a corrupt deflate stream,
	// an unsupported filter id.
	CodePipeline Code = "pipeline"
	// CodeConcurrency covers misuse of the async surface: waiting on an
	// already-discarded Future, submitting after Pool.Close.
	CodeConcurrency Code = "concurrency_state"
)

// Error wraps an underlying error with a Code and Severity.
type Error struct {
	Code     Code
	Severity Severity
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Code, e.Severity, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an *Error from a format string, mirroring fmt.Errorf so
// existing %w call sites convert with a one-line change.
func Wrap(code Code, sev Severity, format string, args ...interface{}) *Error {
	return &Error{Code: code, Severity: sev, Err: fmt.Errorf(format, args...)}
}

// New attaches a Code and Severity to an existing error.
func New(code Code, sev Severity, err error) *Error {
	return &Error{Code: code, Severity: sev, Err: err}
}
