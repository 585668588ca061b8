package csftp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Kind classifies an Error. The set is closed.
type Kind int

const (
	// KindInvalidCommand is an unrecognized operator command.
	KindInvalidCommand Kind = iota + 1

	// KindArgCount is an operator command with the wrong number of arguments.
	KindArgCount

	// KindProcessing is a server status outside the accepted set of a command.
	KindProcessing

	// KindAccess is a denied resource: a local file that cannot be created,
	// or a remote listing the server refuses (450).
	KindAccess

	// KindDataConnect means the data connection could not be established.
	KindDataConnect

	// KindDataIO is a failure while a transfer was in progress.
	KindDataIO

	// KindControlIO is a read or write failure on the control connection.
	KindControlIO

	// KindMalformedReply is a control reply that does not follow the reply format.
	KindMalformedReply

	// KindServiceUnavailable is a greeting other than 220.
	KindServiceUnavailable

	// KindInput is a failure reading operator input.
	KindInput
)

var kindNames = map[Kind]string{
	KindInvalidCommand:     "invalid command",
	KindArgCount:           "incorrect number of arguments",
	KindProcessing:         "processing error",
	KindAccess:             "access denied",
	KindDataConnect:        "data connection failed to open",
	KindDataIO:             "data connection I/O error",
	KindControlIO:          "control connection I/O error",
	KindMalformedReply:     "malformed reply",
	KindServiceUnavailable: "service unavailable",
	KindInput:              "input error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Fatal reports whether errors of this kind leave the session unusable.
func (k Kind) Fatal() bool {
	switch k {
	case KindControlIO, KindMalformedReply, KindServiceUnavailable, KindInput:
		return true
	}
	return false
}

// Error is the error type returned by every Session operation. Only the
// fields relevant to its Kind are set.
type Error struct {
	// Kind classifies the failure
	Kind Kind

	// Command is the protocol verb in flight (e.g. "RETR"), without arguments
	Command string

	// Code is the server status code, if a reply was involved
	Code int

	// Message is the server reply text, or a detail for local failures
	Message string

	// Host and Port name the data endpoint for KindDataConnect
	Host string
	Port int

	// Path is the local file for KindAccess
	Path string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("csftp: ")
	if e.Command != "" {
		b.WriteString(e.Command)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Host != "" {
		fmt.Fprintf(&b, " (%s)", net.JoinHostPort(e.Host, strconv.Itoa(e.Port)))
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, ": %s (code %d)", e.Message, e.Code)
	} else if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal reports whether the session is unusable after this error.
func (e *Error) Fatal() bool {
	return e.Kind.Fatal()
}

// IsFatal reports whether err carries a fatal Kind.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Fatal()
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// statusError builds the error for a reply outside a command's accepted codes.
func statusError(command string, resp *Response) *Error {
	return &Error{
		Kind:    KindProcessing,
		Command: command,
		Code:    resp.Code,
		Message: resp.Message,
	}
}
