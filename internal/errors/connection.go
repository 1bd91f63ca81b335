// ABOUTME: Connection errors for chat transports
// ABOUTME: Used when dialing, the token handshake, or the stream itself fails

package errors

import "fmt"

type ConnectionError struct {
	Transport string
	Address   string
	Stage     string
	Err       error
}

func NewConnectionError(transport, address, stage string, err error) *ConnectionError {
	return &ConnectionError{
		Transport: transport,
		Address:   address,
		Stage:     stage,
		Err:       err,
	}
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s to %s: %v", e.Transport, e.Stage, e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) UserMessage() string {
	switch e.Stage {
	case "dial":
		return fmt.Sprintf("Cannot reach chat server at %s", e.Address)
	case "handshake":
		return "Chat server rejected the session"
	default:
		return "Connection lost"
	}
}
