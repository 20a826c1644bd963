package search

import (
	"errors"
	"fmt"
)

type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureTransport FailureKind = "transport"
	FailureMalformed FailureKind = "malformed"
)

var (
	ErrRemoteTimeout   = errors.New("remote parser timed out")
	ErrRemoteTransport = errors.New("remote parser request failed")
	ErrRemoteMalformed = errors.New("remote parser returned malformed output")
)

// RemoteParseError describes why the remote parser produced no filters.
// errors.Is matches both the kind sentinel and the underlying cause.
type RemoteParseError struct {
	Kind FailureKind
	Err  error
}

func (e *RemoteParseError) Error() string {
	return fmt.Sprintf("remote parse %s: %v", e.Kind, e.Err)
}

func (e *RemoteParseError) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

func (e *RemoteParseError) sentinel() error {
	switch e.Kind {
	case FailureTimeout:
		return ErrRemoteTimeout
	case FailureMalformed:
		return ErrRemoteMalformed
	default:
		return ErrRemoteTransport
	}
}

// FailureKindOf returns the kind of a remote parse failure, or transport for foreign errors.
func FailureKindOf(err error) FailureKind {
	var rpe *RemoteParseError
	if errors.As(err, &rpe) {
		return rpe.Kind
	}
	return FailureTransport
}
