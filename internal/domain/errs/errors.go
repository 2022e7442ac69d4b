// Package errs holds the error kinds shared by the domain, services and
// transport layers. Callers wrap them with fmt.Errorf("...: %w", ErrX) and
// classify with errors.Is.
package errs

import "errors"

var (
	// ErrAlreadyExists is returned when creating a record whose natural key is taken
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned for unknown checklists, items or projects
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed input (unknown checklist type, empty fields)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidInterval is returned when a shift interval is misordered or overlaps another
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrUpstream is returned when a persistence or delivery collaborator fails
	ErrUpstream = errors.New("upstream failure")

	// ErrConflict is reserved for conditional writes; no record carries a version yet.
	ErrConflict = errors.New("conflict")
)

// Upstream wraps err as an upstream failure while keeping the original cause
// reachable through errors.Is / errors.As.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &upstreamError{op: op, err: err}
}

type upstreamError struct {
	op  string
	err error
}

func (e *upstreamError) Error() string {
	return e.op + ": " + ErrUpstream.Error() + ": " + e.err.Error()
}

func (e *upstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.err}
}

// IsValidation reports whether err is a caller input error
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrInvalidInterval)
}
