// Package apperr classifies errors into the taxonomy streamchron's actors
// and top-level Run loop use to decide between logging and continuing versus
// aborting the stream: Configuration, Connectivity, Protocol, Authorization,
// Resource, and Fatal.
package apperr

import (
	"errors"
	"fmt"
)

// Class is one of the six error categories.
type Class int

const (
	Configuration Class = iota
	Connectivity
	Protocol
	Authorization
	Resource
	Fatal
)

func (c Class) String() string {
	switch c {
	case Configuration:
		return "configuration"
	case Connectivity:
		return "connectivity"
	case Protocol:
		return "protocol"
	case Authorization:
		return "authorization"
	case Resource:
		return "resource"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Class so callers further up the
// stack can branch on severity without string matching.
type Error struct {
	class Class
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// ClassOf reports the category of err, or Protocol if err isn't an *Error —
// callers that only care about one class should use Is instead.
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.class
	}
	return Protocol
}

// Is reports whether err (or something it wraps) was classified as class.
func Is(err error, class Class) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.class == class
	}
	return false
}

func newf(class Class, format string, args ...any) *Error {
	return &Error{class: class, msg: fmt.Sprintf(format, args...)}
}

func wrap(class Class, msg string, cause error) *Error {
	return &Error{class: class, msg: msg, cause: cause}
}

func Configurationf(format string, args ...any) error { return newf(Configuration, format, args...) }
func Connectivityf(format string, args ...any) error  { return newf(Connectivity, format, args...) }
func Protocolf(format string, args ...any) error      { return newf(Protocol, format, args...) }
func Authorizationf(format string, args ...any) error { return newf(Authorization, format, args...) }
func Resourcef(format string, args ...any) error      { return newf(Resource, format, args...) }
func Fatalf(format string, args ...any) error         { return newf(Fatal, format, args...) }

func WrapConfiguration(msg string, err error) error { return wrap(Configuration, msg, err) }
func WrapConnectivity(msg string, err error) error  { return wrap(Connectivity, msg, err) }
func WrapProtocol(msg string, err error) error      { return wrap(Protocol, msg, err) }
func WrapAuthorization(msg string, err error) error { return wrap(Authorization, msg, err) }
func WrapResource(msg string, err error) error      { return wrap(Resource, msg, err) }
func WrapFatal(msg string, err error) error         { return wrap(Fatal, msg, err) }
