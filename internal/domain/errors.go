package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind is the closed set of failure categories the service layer can
// produce. Callers branch on the kind rather than on message text.
type ErrorKind int

const (
	// KindValidation: malformed input, attributable to specific fields.
	KindValidation ErrorKind = iota + 1
	// KindBusinessRule: well-formed input rejected by a domain rule.
	// Not retryable without changing the request.
	KindBusinessRule
	// KindNotFound: the route or point does not exist or is not visible to
	// the caller. Existence and ownership are deliberately reported the
	// same way.
	KindNotFound
	// KindPersistence: a storage failure; the whole operation was rolled
	// back and may be retried from scratch.
	KindPersistence
)

// Error is the single error type crossing the service boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	// Fields maps field name to message for KindValidation errors.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for f := range e.Fields {
			names = append(names, f)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, f := range names {
			parts = append(parts, f+": "+e.Fields[f])
		}
		return "validation failed: " + strings.Join(parts, "; ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

func NewBusinessRuleError(message string) *Error {
	return &Error{Kind: KindBusinessRule, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewPersistenceError(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: op, Err: err}
}

// IsKind reports whether err (or anything it wraps) is a domain Error of
// the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
