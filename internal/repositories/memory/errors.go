package memory

import "fmt"

// Error implements repositories.RepositoryError for the in-memory stores.
type Error struct {
	op       string
	msg      string
	notFound bool
	conflict bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.op != "" {
		return fmt.Sprintf("%s: %s", e.op, e.msg)
	}
	return e.msg
}

// IsNotFound reports whether the error represents a missing record.
func (e *Error) IsNotFound() bool {
	return e != nil && e.notFound
}

// IsConflict reports whether the error represents a conflicting write.
func (e *Error) IsConflict() bool {
	return e != nil && e.conflict
}

// IsUnavailable always reports false; the in-memory store has no backend.
func (e *Error) IsUnavailable() bool {
	return false
}

func notFoundError(op, format string, args ...any) error {
	return &Error{op: op, msg: fmt.Sprintf(format, args...), notFound: true}
}

func conflictError(op, format string, args ...any) error {
	return &Error{op: op, msg: fmt.Sprintf(format, args...), conflict: true}
}
