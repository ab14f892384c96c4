package simulation

import (
	"errors"
	"fmt"
)

var (
	ErrRunInProgress = errors.New("a simulation run is already in progress")
	ErrNoActiveRun   = errors.New("no active simulation run")
	ErrRunNotFound   = errors.New("simulation run not found")
	ErrTransport     = errors.New("simulation transport error")
)

type ParseError struct {
	Payload string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed frame: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed frame: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(payload []byte, reason string, err error) error {
	return &ParseError{
		Payload: string(payload),
		Reason:  reason,
		Err:     err,
	}
}

func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var parseError *ParseError
	return errors.As(err, &parseError)
}

// TransportError reports that the simulation stream could not be opened.
// Message is safe to show to users.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func NewTransportError(message string, err error) error {
	return &TransportError{Message: message, Err: err}
}
