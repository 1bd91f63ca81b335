// ABOUTME: Authentication errors returned by register/login collaborators
// ABOUTME: Carries the server's reason so the auth screen can show it in a banner

package errors

import "fmt"

type AuthError struct {
	Op     string // "register" or "login"
	Reason string
}

func NewAuthError(op, reason string) *AuthError {
	return &AuthError{Op: op, Reason: reason}
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Reason)
}

func (e *AuthError) UserMessage() string {
	op := "Login"
	if e.Op == "register" {
		op = "Register"
	}
	if e.Reason == "" {
		return op + " failed"
	}
	return fmt.Sprintf("%s failed: %s", op, e.Reason)
}
