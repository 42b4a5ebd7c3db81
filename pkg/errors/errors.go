// Package errors provides coded errors for netview.
//
// Every error that crosses a package boundary carries a [Code]. A code
// belongs to a [Kind], which is what callers branch on: the HTTP server maps
// kinds to status codes and the CLI prints [UserMessage] without the code.
//
//	err := errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
//	if errors.IsNotFound(err) {
//	    ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidPathRecord, cause, "paths of type %q", typ)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

// Kind groups codes by how a caller should react.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindUnavailable
)

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidPathRecord Code = "INVALID_PATH_RECORD"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidMode       Code = "INVALID_MODE"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNodeNotFound    Code = "NODE_NOT_FOUND"
	ErrCodeEdgeNotFound    Code = "EDGE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// ErrCodeUnavailable reports a server that is shutting down.
	ErrCodeUnavailable Code = "UNAVAILABLE"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

var kinds = map[Code]Kind{
	ErrCodeInvalidInput:      KindInvalid,
	ErrCodeInvalidPathRecord: KindInvalid,
	ErrCodeInvalidFormat:     KindInvalid,
	ErrCodeInvalidMode:       KindInvalid,
	ErrCodeInvalidPath:       KindInvalid,
	ErrCodeNotFound:          KindNotFound,
	ErrCodeNodeNotFound:      KindNotFound,
	ErrCodeEdgeNotFound:      KindNotFound,
	ErrCodeSessionNotFound:   KindNotFound,
	ErrCodeUnavailable:       KindUnavailable,
}

// Kind returns the kind of c. Unknown codes are internal.
func (c Code) Kind() Kind { return kinds[c] }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code and a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// outermost returns the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := outermost(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost coded error, or "" when err
// carries none.
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// KindOf returns the kind of err's code. Uncoded errors are internal.
func KindOf(err error) Kind { return GetCode(err).Kind() }

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
func IsInvalid(err error) bool  { return KindOf(err) == KindInvalid }

// UserMessage returns the message of a coded error without its code, or
// err's text otherwise.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}
