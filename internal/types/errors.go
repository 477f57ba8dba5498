package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingInput    = errors.New("missing input")
	ErrPrecondition    = errors.New("precondition violation")
	ErrMalformedWord   = errors.New("malformed word entry")
	ErrExternalProcess = errors.New("external process failure")
)

// ExternalProcessError carries the diagnostic text captured from a failed
// subprocess or remote call.
type ExternalProcessError struct {
	Op          string
	Diagnostics string
	Err         error
}

func (e *ExternalProcessError) Error() string {
	msg := e.Op
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if d := strings.TrimSpace(e.Diagnostics); d != "" {
		msg += "\n" + d
	}
	return msg
}

func (e *ExternalProcessError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExternalProcess}
	}
	return []error{ErrExternalProcess, e.Err}
}

func ExternalFailure(op string, diag []byte, err error) error {
	return &ExternalProcessError{Op: op, Diagnostics: string(diag), Err: err}
}

func Missing(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMissingInput, fmt.Sprintf(format, args...))
}
