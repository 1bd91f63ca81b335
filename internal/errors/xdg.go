// ABOUTME: XDG path errors
// ABOUTME: Used when the config or log directory cannot be created

package errors

import "fmt"

type XDGPathError struct {
	Variable      string
	AttemptedPath string
	UnderlyingErr error
}

func NewXDGPathError(variable, path string, err error) *XDGPathError {
	return &XDGPathError{
		Variable:      variable,
		AttemptedPath: path,
		UnderlyingErr: err,
	}
}

func (e *XDGPathError) Error() string {
	return fmt.Sprintf("cannot create %s directory at %s: %v", e.Variable, e.AttemptedPath, e.UnderlyingErr)
}

func (e *XDGPathError) Unwrap() error {
	return e.UnderlyingErr
}

func (e *XDGPathError) UserMessage() string {
	return fmt.Sprintf("Check permissions: ls -ld %s", e.AttemptedPath)
}
