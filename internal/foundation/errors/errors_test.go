package errors

import (
	"errors"
	"testing"
)

func TestBuilder_DefaultsAndOverrides(t *testing.T) {
	err := NewError(CategorySchema, "metadata rejected").Build()

	if err.Category() != CategorySchema {
		t.Errorf("Category() = %s, want %s", err.Category(), CategorySchema)
	}
	if err.Severity() != SeverityError {
		t.Errorf("default Severity() = %s, want %s", err.Severity(), SeverityError)
	}
	if err.IsFatal() {
		t.Error("default severity should not be fatal")
	}

	fatal := NewError(CategoryCorpus, "duplicate identity").Fatal().Build()
	if !fatal.IsFatal() {
		t.Error("Fatal() should mark the error build-stopping")
	}

	warned := NewError(CategoryHistory, "store unavailable").
		WithSeverity(SeverityWarning).Build()
	if warned.Severity() != SeverityWarning {
		t.Errorf("Severity() = %s, want %s", warned.Severity(), SeverityWarning)
	}
}

func TestWrapError_PreservesChain(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := WrapError(cause, CategoryParse, "document parsing failed").
		WithContext("source", "posts/hello.md").
		Build()

	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if err.Cause() != cause {
		t.Error("Cause() should return the wrapped error")
	}

	source, ok := err.Context().GetString("source")
	if !ok || source != "posts/hello.md" {
		t.Errorf("Context().GetString(source) = %q, %v", source, ok)
	}
}

func TestErrorString_IncludesClassification(t *testing.T) {
	bare := NewError(CategoryConfig, "output.dir cannot be empty").Fatal().Build()
	if got, want := bare.Error(), "[config:fatal] output.dir cannot be empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := WrapError(errors.New("permission denied"), CategoryFileSystem, "site output failed").Build()
	if got, want := wrapped.Error(), "[filesystem:error] site output failed: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestHasCategory(t *testing.T) {
	err := ConfigError("configuration file not found").Build()

	if !HasCategory(err, CategoryConfig) {
		t.Error("HasCategory should match the error's own category")
	}
	if HasCategory(err, CategorySchema) {
		t.Error("HasCategory should not match a different category")
	}
	if HasCategory(errors.New("plain"), CategoryConfig) {
		t.Error("HasCategory should reject unclassified errors")
	}
	if !err.IsFatal() {
		t.Error("ConfigError should default to fatal")
	}
}

func TestIs_MatchesOnCategoryAndMessage(t *testing.T) {
	a := NewError(CategoryGit, "content fetch failed").Build()
	b := WrapError(errors.New("remote hung up"), CategoryGit, "content fetch failed").Build()
	c := NewError(CategoryGit, "reset failed").Build()

	if !errors.Is(b, a) {
		t.Error("same category and message should match")
	}
	if errors.Is(c, a) {
		t.Error("different messages should not match")
	}
}

func TestErrorContext_NilSafety(t *testing.T) {
	var ctx ErrorContext
	ctx = ctx.Set("stage", "write_site")

	stage, ok := ctx.GetString("stage")
	if !ok || stage != "write_site" {
		t.Errorf("GetString(stage) = %q, %v", stage, ok)
	}

	if _, ok := ctx.GetString("absent"); ok {
		t.Error("absent key should report false")
	}

	ctx = ctx.Set("count", 3)
	if _, ok := ctx.GetString("count"); ok {
		t.Error("non-string value should report false")
	}
}
