package gitsource

import (
	"fmt"
	"strings"
)

// AuthError indicates the remote rejected our credentials.
type AuthError struct {
	Op  string
	URL string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s %s: authentication failed: %v", e.Op, e.URL, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError indicates the repository or branch does not exist on the
// remote, or is hidden behind missing permissions.
type NotFoundError struct {
	Op  string
	URL string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: repository not found: %v", e.Op, e.URL, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// classifyError inspects transport errors and wraps the recognizable ones in
// typed errors. go-git surfaces most remote failures as plain strings, so
// message sniffing is the only portable signal.
func classifyError(op, url string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication required"),
		strings.Contains(msg, "authorization failed"),
		strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "401"),
		strings.Contains(msg, "403"):
		return &AuthError{Op: op, URL: url, Err: err}
	case strings.Contains(msg, "repository not found"),
		strings.Contains(msg, "couldn't find remote ref"),
		strings.Contains(msg, "404"):
		return &NotFoundError{Op: op, URL: url, Err: err}
	default:
		return fmt.Errorf("%s %s: %w", op, url, err)
	}
}
