package core

import (
	"errors"
	"fmt"

	"github.com/Streamline-Precision-Apps/shift-scan-server-sub008/timesheet/model"
)

// Sentinel errors surfaced by the lifecycle service. Callers match with
// errors.Is / errors.As.
var (
	ErrNotFound               = errors.New("not_found")
	ErrConcurrentModification = errors.New("concurrent_modification")
	ErrChangeReasonRequired   = errors.New("change_reason_required")
	ErrStatusCommentRequired  = errors.New("status_comment_required")
	ErrDuplicateAuditEntry    = errors.New("duplicate_audit_entry")
)

// ValidationError reports a bad or missing input field. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError reports a state-machine violation. The check runs
// before any field write, so no partial mutation escapes.
type InvalidTransitionError struct {
	From model.Status
	To   model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// IncompatibleWorkTypeError reports a sub-log kind that does not match the
// timesheet's work type.
type IncompatibleWorkTypeError struct {
	Kind     SubLogKind
	WorkType model.WorkType
}

func (e *IncompatibleWorkTypeError) Error() string {
	return fmt.Sprintf("sub-log kind %s is not permitted on a %s timesheet", e.Kind, e.WorkType)
}

// PersistenceError wraps a storage failure that survived the repository's
// internal retry. The message deliberately hides storage internals.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("operation failed: %s", e.Op)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
