package shared

import (
	"errors"
	"fmt"
)

// ErrorKind is the coarse classification callers switch on
type ErrorKind string

const (
	KindValidation  ErrorKind = "VALIDATION"
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindConcurrency ErrorKind = "CONCURRENCY"
	KindStore       ErrorKind = "STORE"
	KindUnknown     ErrorKind = "UNKNOWN"
)

// ValidationError reports bad input detected before any persistence
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Is implements the errors.Is interface for ValidationError
func (e ValidationError) Is(target error) bool {
	t, ok := target.(ValidationError)
	if !ok {
		return false
	}
	// An empty target matches any ValidationError
	if t.Field == "" && t.Message == "" {
		return true
	}
	return e.Field == t.Field && (t.Message == "" || e.Message == t.Message)
}

// NotFoundError indicates a lookup miss the caller did not expect
type NotFoundError struct {
	Resource string
	Key      string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// Is implements the errors.Is interface for NotFoundError
func (e NotFoundError) Is(target error) bool {
	t, ok := target.(NotFoundError)
	if !ok {
		return false
	}
	if t.Resource != "" && t.Resource != e.Resource {
		return false
	}
	return t.Key == "" || t.Key == e.Key
}

// ConcurrencyError is raised on lock timeouts and lost compare-and-swap races; callers may retry
type ConcurrencyError struct {
	Key    string
	Reason string
}

func (e ConcurrencyError) Error() string {
	return fmt.Sprintf("concurrent modification on %s: %s", e.Key, e.Reason)
}

// Is implements the errors.Is interface for ConcurrencyError
func (e ConcurrencyError) Is(target error) bool {
	t, ok := target.(ConcurrencyError)
	if !ok {
		return false
	}
	return t.Key == "" || t.Key == e.Key
}

// StoreError wraps an underlying persistence failure
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// Is implements the errors.Is interface for StoreError
func (e StoreError) Is(target error) bool {
	t, ok := target.(StoreError)
	if !ok {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// KindOf classifies err by the first taxonomy error found in its chain
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ValidationError{}):
		return KindValidation
	case errors.Is(err, NotFoundError{}):
		return KindNotFound
	case errors.Is(err, ConcurrencyError{}):
		return KindConcurrency
	case errors.Is(err, StoreError{}):
		return KindStore
	default:
		return KindUnknown
	}
}
