package saltapi

import (
	"errors"
	"fmt"
)

// Kind classifies a salt-api failure. The value is surfaced verbatim in the
// error payload MCP callers receive.
type Kind string

const (
	// KindAuth covers rejected credentials and sessions that salt-api still
	// rejects after one re-authentication.
	KindAuth Kind = "auth"
	// KindTransport covers connection failures and timeouts. Transport
	// failures are never retried.
	KindTransport Kind = "transport"
	// KindProtocol covers non-JSON bodies, unexpected response shapes and
	// HTTP statuses outside the salt-api contract.
	KindProtocol Kind = "protocol"
	// KindNotFound marks a minion that is absent from a result set.
	KindNotFound Kind = "not_found"
)

// Error is the failure type returned by every Client operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the Kind carried by err, or "" when err did not originate
// from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
