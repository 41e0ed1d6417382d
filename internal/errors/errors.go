// Package errors carries coded errors through the engine. Every rule
// rejection and storage failure is an *Error whose Code survives wrapping,
// so callers branch on codes instead of message text.
package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Code categorizes an error
type Code string

const (
	CodeUnknown         Code = "unknown"
	CodeInvalidArgument Code = "invalid_argument"
	CodeNotFound        Code = "not_found"
	CodeAlreadyExists   Code = "already_exists"
	// CodeInternal marks corrupt stored data or an engine bug, never caller input
	CodeInternal Code = "internal"
	// CodeValidation marks rules or configuration that failed their checks
	CodeValidation Code = "validation"

	// Rule rejections. A command failing with one of these leaves the
	// character as it was.
	CodeFailedPrecondition Code = "failed_precondition"
	CodeAttunementLimit    Code = "attunement_limit"
	CodeResourceExhausted  Code = "resource_exhausted"
	CodeInsufficientFunds  Code = "insufficient_funds"
)

var rejections = map[Code]bool{
	CodeInvalidArgument:    true,
	CodeFailedPrecondition: true,
	CodeAttunementLimit:    true,
	CodeResourceExhausted:  true,
	CodeInsufficientFunds:  true,
}

// Error is a coded error with optional cause and metadata
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithMeta attaches a key/value pair and returns e for chaining
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap adds context to err. A coded cause keeps its code and a copy of its
// metadata; anything else becomes CodeUnknown.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := &Error{Code: CodeUnknown, Message: message, Cause: err}
	if coded, ok := asError(err); ok {
		wrapped.Code = coded.Code
		if coded.Meta != nil {
			wrapped.Meta = maps.Clone(coded.Meta)
		}
	}
	return wrapped
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err and forces code, whatever the cause carried
func WrapWithCode(err error, code Code, message string) *Error {
	wrapped := Wrap(err, message)
	if wrapped != nil {
		wrapped.Code = code
	}
	return wrapped
}

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func NotFoundf(format string, args ...any) *Error { return Newf(CodeNotFound, format, args...) }

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

func AlreadyExists(message string) *Error { return New(CodeAlreadyExists, message) }

func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

func Internalf(format string, args ...any) *Error { return Newf(CodeInternal, format, args...) }

func Validationf(format string, args ...any) *Error { return Newf(CodeValidation, format, args...) }

func FailedPreconditionf(format string, args ...any) *Error {
	return Newf(CodeFailedPrecondition, format, args...)
}

func AttunementLimitf(format string, args ...any) *Error {
	return Newf(CodeAttunementLimit, format, args...)
}

func ResourceExhaustedf(format string, args ...any) *Error {
	return Newf(CodeResourceExhausted, format, args...)
}

func InsufficientFundsf(format string, args ...any) *Error {
	return Newf(CodeInsufficientFunds, format, args...)
}

// Is reports whether the outermost coded error in err's chain has code
func Is(err error, code Code) bool {
	coded, ok := asError(err)
	return ok && coded.Code == code
}

func IsNotFound(err error) bool           { return Is(err, CodeNotFound) }
func IsInvalidArgument(err error) bool    { return Is(err, CodeInvalidArgument) }
func IsAlreadyExists(err error) bool      { return Is(err, CodeAlreadyExists) }
func IsInternal(err error) bool           { return Is(err, CodeInternal) }
func IsValidation(err error) bool         { return Is(err, CodeValidation) }
func IsFailedPrecondition(err error) bool { return Is(err, CodeFailedPrecondition) }

// IsRejection reports whether err is a rule rejection, i.e. the command
// left the character untouched.
func IsRejection(err error) bool {
	return rejections[GetCode(err)]
}

// GetCode returns err's code, CodeUnknown for uncoded errors
func GetCode(err error) Code {
	if coded, ok := asError(err); ok {
		return coded.Code
	}
	return CodeUnknown
}

// GetMeta returns the metadata of the outermost coded error
func GetMeta(err error) map[string]any {
	if coded, ok := asError(err); ok {
		return coded.Meta
	}
	return nil
}

func asError(err error) (*Error, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}
