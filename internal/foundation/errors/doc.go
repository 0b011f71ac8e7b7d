// Package errors defines the classified error model shared across pagepress.
//
// A ClassifiedError tags a failure with a category (who must act: the
// operator, the content author, the environment) and a severity (how much of
// the build it takes down). The CLI adapter at the bottom of this package
// maps categories onto process exit codes so scripts can branch on failure
// class without parsing messages.
//
// Typical construction:
//
//	err := errors.WrapError(cause, errors.CategorySchema, "metadata rejected").
//		WithContext("source", doc.Source).
//		Build()
package errors
