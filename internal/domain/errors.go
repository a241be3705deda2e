package domain

import (
	"errors"
	"fmt"
)

// EngineError is the unified error type for tierforge.
// Each error has a numeric code and human-readable message. Cause carries the
// underlying driver error for storage failures.
type EngineError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tierforge error %d: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("tierforge error %d: %s", e.Code, e.Message)
}

// Is reports whether target is an EngineError with the same code, so detailed
// errors derived from a sentinel still match it with errors.Is.
func (e *EngineError) Is(target error) bool {
	var t *EngineError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Unwrap returns the underlying cause, if any.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: msg, Cause: cause}
}

// Detail derives an error with the sentinel's code and an extended message.
func Detail(sentinel *EngineError, format string, args ...any) *EngineError {
	return &EngineError{
		Code:    sentinel.Code,
		Message: sentinel.Message + ": " + fmt.Sprintf(format, args...),
	}
}

// StorageFailure wraps a raw driver error as ErrStorage. Errors that already
// carry an engine code pass through unchanged.
func StorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return WrapEngineError(ErrStorage.Code, ErrStorage.Message+": "+op, err)
}

// ---- Agent / registration errors (-32010 to -32029) ----

var (
	ErrAgentNotFound   = &EngineError{Code: -32010, Message: "agent not found"}
	ErrAgentExists     = &EngineError{Code: -32011, Message: "agent already registered with a different display name"}
	ErrInvalidArgument = &EngineError{Code: -32012, Message: "invalid argument"}
)

// ---- Contribution errors (-32040 to -32059) ----

var ErrInvalidContribution = &EngineError{Code: -32040, Message: "invalid contribution"}

// ---- Tier / catalog errors (-32070 to -32089) ----

var (
	ErrBackwardTier   = &EngineError{Code: -32070, Message: "refusing to move agent to a lower tier"}
	ErrUnknownTier    = &EngineError{Code: -32071, Message: "unknown tier"}
	ErrCatalogInvalid = &EngineError{Code: -32072, Message: "invalid tier catalog"}
)

// ---- Store / config errors (-32130 to -32159) ----

var (
	ErrStorage         = &EngineError{Code: -32130, Message: "storage failure"}
	ErrSchemaMigration = &EngineError{Code: -32133, Message: "schema migration failed"}
	ErrConfigInvalid   = &EngineError{Code: -32136, Message: "invalid configuration"}
)
