package pciids

import (
	"errors"
	"fmt"

	"github.com/exodus-project/pciids/parser"
)

// Sentinel errors for common database error conditions. They can be matched
// with errors.Is().
var (
	// ErrNotReady indicates a query was issued before a successful load.
	ErrNotReady = errors.New("database not ready")

	// ErrLoadFailed indicates a reload did not complete; the database is
	// empty and not ready. The underlying cause is wrapped.
	ErrLoadFailed = errors.New("database load failed")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents entity construction failures: wrong id
	// width or a blank name.
	KindValidation = "validation"

	// KindFormat represents lines that do not match the grammar of their
	// classified type.
	KindFormat = "format"

	// KindContext represents lines whose indentation cannot legally follow
	// the preceding line.
	KindContext = "context"

	// KindNotReady represents queries issued before a successful load.
	KindNotReady = "not_ready"

	// KindNetwork represents retrieval failures.
	KindNetwork = "network"

	// KindConfiguration represents invalid configuration.
	KindConfiguration = "configuration"

	// KindInternal represents internal failures, such as a reader error
	// during parsing.
	KindInternal = "internal"
)

// DBError is a structured error type that wraps underlying errors with the
// operation that failed and the category of error.
//
// DBError implements the error interface and supports unwrapping, making it
// compatible with errors.Is() and errors.As().
type DBError struct {
	// Op is the operation that failed (e.g., "Database.Load").
	Op string

	// Kind categorizes the error (e.g., KindFormat, KindNotReady).
	Kind string

	// Err is the underlying error that caused this error.
	Err error
}

// Error implements the error interface.
func (e *DBError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("pciids: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("pciids: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *DBError) Unwrap() error {
	return e.Err
}

// Is matches either another DBError with the same kind (and, if set, the
// same op) or delegates to the underlying error.
func (e *DBError) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*DBError); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// newNotReadyError creates the error returned by queries on an unloaded
// database.
func newNotReadyError(op string) *DBError {
	return &DBError{Op: op, Kind: KindNotReady, Err: ErrNotReady}
}

// classifyLoadError wraps a load failure, deriving the kind from the parse
// error taxonomy: format errors, context errors and everything else
// (validation failures from entity construction, reader errors).
func classifyLoadError(op string, err error) *DBError {
	kind := KindValidation

	var formatErr *parser.FormatError
	var contextErr *parser.ContextError
	switch {
	case errors.As(err, &formatErr):
		kind = KindFormat
	case errors.As(err, &contextErr),
		errors.Is(err, parser.ErrUnexpectedDevice),
		errors.Is(err, parser.ErrUnexpectedSubsystem),
		errors.Is(err, parser.ErrUnexpectedSubclass),
		errors.Is(err, parser.ErrUnexpectedInterface):
		kind = KindContext
	}

	return &DBError{Op: op, Kind: kind, Err: fmt.Errorf("%w: %w", ErrLoadFailed, err)}
}
