package lambdastack

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies resolution and planning failures. Every failure the
// resolver or planner can produce carries exactly one kind, so callers can
// branch on the failure class without string matching.
type ErrorKind string

// Failure kinds detected during config resolution and planning.
const (
	KindMissingField          ErrorKind = "missing_field"
	KindInvalidEnum           ErrorKind = "invalid_enum"
	KindFileNotFound          ErrorKind = "file_not_found"
	KindParseError            ErrorKind = "parse_error"
	KindEmptyDirectory        ErrorKind = "empty_directory"
	KindInvalidJSON           ErrorKind = "invalid_json"
	KindMissingKey            ErrorKind = "missing_key"
	KindInvalidImageReference ErrorKind = "invalid_image_reference"
)

// PlanError is a structured error describing why resolution or planning
// failed. It includes the failure kind, the subject (field name, file path,
// or JSON key), and an optional remediation hint.
type PlanError struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Subject names the field, path, or key that failed.
	Subject string
	// Message is the primary error description.
	Message string
	// Hint is a human-readable hint on how to fix the issue.
	Hint string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Kind)
	if e.Subject != "" {
		fmt.Fprintf(&b, " %q", e.Subject)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " [hint: %s]", e.Hint)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PlanError) Unwrap() error {
	return e.Cause
}

// newPlanError creates a PlanError without a cause.
func newPlanError(kind ErrorKind, subject, message string) *PlanError {
	return &PlanError{Kind: kind, Subject: subject, Message: message}
}

// wrapPlanError creates a PlanError wrapping an underlying cause.
func wrapPlanError(kind ErrorKind, subject string, cause error) *PlanError {
	return &PlanError{Kind: kind, Subject: subject, Cause: cause}
}

// IsPlanError returns the PlanError if err is (or wraps) one.
func IsPlanError(err error) *PlanError {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// HasKind reports whether err is (or wraps) a PlanError of the given kind.
func HasKind(err error, kind ErrorKind) bool {
	pe := IsPlanError(err)
	return pe != nil && pe.Kind == kind
}
