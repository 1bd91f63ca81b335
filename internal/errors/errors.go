// ABOUTME: Typed client errors with short user-facing banner text
// ABOUTME: Shared helpers and sentinels for connection, auth and theme failures

package errors

import stderrors "errors"

var (
	// ErrAuthTimeout is returned when the auth handshake exceeds its bounded wait.
	ErrAuthTimeout = stderrors.New("authentication timed out")

	// ErrConnectionClosed is returned when the server closes the chat stream.
	ErrConnectionClosed = stderrors.New("connection closed by server")
)

// UserFacing is implemented by errors that carry a short banner message.
type UserFacing interface {
	error
	UserMessage() string
}

// UserMessage returns the banner text for err, falling back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var uf UserFacing
	if stderrors.As(err, &uf) {
		return uf.UserMessage()
	}
	if stderrors.Is(err, ErrAuthTimeout) {
		return "Server did not answer in time"
	}
	if stderrors.Is(err, ErrConnectionClosed) {
		return "Connection lost: server closed the connection"
	}
	return err.Error()
}
