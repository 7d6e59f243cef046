package document

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by who can correct it.
type Kind int

const (
	// KindValidation is a caller-side precondition violation (empty merge, bad page reference).
	KindValidation Kind = iota + 1
	// KindParsing means the adapter could not read the bytes or a page's text.
	KindParsing
	// KindSystem is a resource or I/O failure, including resource-limit violations.
	KindSystem
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindParsing:
		return "parsing"
	case KindSystem:
		return "system"
	}
	return "unknown"
}

// ErrLimitExceeded marks a SystemError caused by a configured resource ceiling.
var ErrLimitExceeded = errors.New("resource limit exceeded")

// Error is the error type returned by the core services and adapters.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "extract" or "pdf.write"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationErrorf builds a KindValidation error.
func ValidationErrorf(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ParsingError wraps err as a KindParsing error.
func ParsingError(op, msg string, err error) error {
	return &Error{Kind: KindParsing, Op: op, Msg: msg, Err: err}
}

// SystemError wraps err as a KindSystem error.
func SystemError(op, msg string, err error) error {
	return &Error{Kind: KindSystem, Op: op, Msg: msg, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsParsing(err error) bool    { return KindOf(err) == KindParsing }
func IsSystem(err error) bool     { return KindOf(err) == KindSystem }
