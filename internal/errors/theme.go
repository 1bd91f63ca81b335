// ABOUTME: Theme file errors
// ABOUTME: A missing or malformed theme file is fatal at startup

package errors

import "fmt"

type ThemeError struct {
	Path string
	Err  error
}

func NewThemeError(path string, err error) *ThemeError {
	return &ThemeError{Path: path, Err: err}
}

func (e *ThemeError) Error() string {
	return fmt.Sprintf("theme %s: %v", e.Path, e.Err)
}

func (e *ThemeError) Unwrap() error {
	return e.Err
}

func (e *ThemeError) UserMessage() string {
	return fmt.Sprintf("Cannot load theme file %s (set ui.theme_file in the config)", e.Path)
}
