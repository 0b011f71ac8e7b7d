package errors

import "fmt"

// ClassifiedError is an error tagged with a category, a severity, and
// free-form context. Callers construct one through ErrorBuilder rather than
// directly, which keeps the severity defaulting in one place.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Message() string         { return e.message }
func (e *ClassifiedError) Cause() error            { return e.cause }
func (e *ClassifiedError) Context() ErrorContext   { return e.context }

// IsFatal reports whether the error should stop the whole build.
func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// Is matches two classified errors on category and message, so sentinel-style
// comparisons with errors.Is work without identity.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// AsClassified returns err as a ClassifiedError when it is one. The check is
// a direct assertion, not an unwrap walk: classification describes the error
// a caller actually returned, not causes buried in its chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	classified, ok := err.(*ClassifiedError)
	return classified, ok
}

// HasCategory reports whether err is a classified error of the given category.
func HasCategory(err error, category ErrorCategory) bool {
	classified, ok := AsClassified(err)
	return ok && classified.category == category
}

// ErrorContext carries structured key/value detail alongside an error.
type ErrorContext map[string]any

// Set stores a value, allocating the map on first use.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// GetString retrieves a string value; the second return is false when the key
// is absent or holds a non-string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
