package core

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Error codes used throughout the shaping packages.
const (
	NOERROR   int = 0
	EMISSING  int = 122 // resource (font, table, glyph) does not exist
	EINVALID  int = 123 // malformed input or protocol
	EINTERNAL int = 125 // contract violation, i.e. a bug in calling code
)

func errorText(ecode int) string {
	switch ecode {
	case NOERROR:
		return "OK"
	case EMISSING:
		return "not found"
	case EINVALID:
		return "invalid"
	case EINTERNAL:
		return "internal error"
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type shapingError struct {
	error
	code int
	msg  string
}

func (e shapingError) Unwrap() error {
	return e.error
}

func (e shapingError) Error() string {
	if e.msg == "" || e.msg == e.error.Error() {
		return fmt.Sprintf("[%d] %v", e.code, e.error)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.error)
}

func (e shapingError) ErrorCode() int {
	return e.code
}

func (e shapingError) UserMessage() string {
	return e.msg
}

var _ AppError = shapingError{}

// WrapError wraps an error in an AppError, featuring an error code and
// a user message.
// If err is nil, a plain error for code is wrapped.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	return shapingError{err, code, fmt.Sprintf(format, v...)}
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return shapingError{
		errors.New(errorText(code)),
		code,
		fmt.Sprintf(format, v...),
	}
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) (code int) {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the user message associated with an error.
// If no message is found, it checks Code and returns that message.
// If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// UserError prints an error to stderr, in a form suitable for end users.
func UserError(err error) {
	printUserError(os.Stderr, err)
}

func printUserError(w io.Writer, err error) {
	if e := AppError(nil); errors.As(err, &e) {
		fmt.Fprintf(w, "[%d] %s\n", e.ErrorCode(), e.UserMessage())
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}
