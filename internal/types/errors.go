package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures reported by the store.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindAlreadyExists
	KindSchemaMismatch
	KindUnknownType
	KindUnknownFunction
	KindUnknownOperator
	KindParseError
	KindIOFailure
	KindMissingColumn
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindSchemaMismatch:
		return "schema mismatch"
	case KindUnknownType:
		return "unknown type"
	case KindUnknownFunction:
		return "unknown function"
	case KindUnknownOperator:
		return "unknown operator"
	case KindParseError:
		return "parse error"
	case KindIOFailure:
		return "io failure"
	case KindMissingColumn:
		return "missing column"
	}
	return "unknown error"
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrAlreadyExists   = &Error{Kind: KindAlreadyExists}
	ErrSchemaMismatch  = &Error{Kind: KindSchemaMismatch}
	ErrUnknownType     = &Error{Kind: KindUnknownType}
	ErrUnknownFunction = &Error{Kind: KindUnknownFunction}
	ErrUnknownOperator = &Error{Kind: KindUnknownOperator}
	ErrParse           = &Error{Kind: KindParseError}
	ErrIOFailure       = &Error{Kind: KindIOFailure}
	ErrMissingColumn   = &Error{Kind: KindMissingColumn}
)

// Error is a classified store error.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Errorf returns a new *Error of the given kind.
func Errorf(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrapf returns a new *Error of the given kind wrapping err.
func Wrapf(kind ErrorKind, err error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
