package pipeline

import (
	"errors"

	"git.home.luguber.info/inful/pagepress/internal/corpus"
	"git.home.luguber.info/inful/pagepress/internal/document"
	"git.home.luguber.info/inful/pagepress/internal/frontmatter"
	"git.home.luguber.info/inful/pagepress/internal/source"
)

// StageOutcome is the normalized result of stage execution.
type StageOutcome struct {
	Stage     StageName
	Error     *StageError
	Result    StageResult
	IssueCode ReportIssueCode
	Severity  IssueSeverity
	Abort     bool
}

// resultFromStageErrorKind maps a StageErrorKind to a StageResult.
func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	case StageErrorFatal:
		return StageResultFatal
	default:
		return StageResultFatal
	}
}

// severityFromStageErrorKind maps StageErrorKind to IssueSeverity.
func severityFromStageErrorKind(k StageErrorKind) IssueSeverity {
	if k == StageErrorWarning {
		return SeverityWarning
	}
	return SeverityError
}

// ClassifyStageResult converts a raw error from a stage into a StageOutcome.
func ClassifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !errors.As(err, &se) {
		// Not a StageError - treat as fatal
		se = NewFatalStageError(stage, err)
	}

	if se.Kind == StageErrorCanceled {
		return StageOutcome{
			Stage:     stage,
			Error:     se,
			Result:    StageResultCanceled,
			IssueCode: IssueCanceled,
			Severity:  SeverityError,
			Abort:     true,
		}
	}

	return StageOutcome{
		Stage:     stage,
		Error:     se,
		Result:    resultFromStageErrorKind(se.Kind),
		IssueCode: classifyIssueCode(se),
		Severity:  severityFromStageErrorKind(se.Kind),
		Abort:     se.Kind == StageErrorFatal,
	}
}

// classifyIssueCode determines the issue code based on stage type and error.
func classifyIssueCode(se *StageError) ReportIssueCode {
	switch se.Stage {
	case StageFetchContent:
		return IssueFetchFailure
	case StageDiscoverSources:
		return IssueDiscoveryFailure
	case StageParseDocuments:
		if errors.Is(se.Err, frontmatter.ErrMalformedDocument) {
			return IssueMalformedDocument
		}
		var fieldErr *document.FieldError
		if errors.As(se.Err, &fieldErr) {
			return IssueSchemaViolation
		}
		if errors.Is(se.Err, source.ErrFileReadFailed) {
			return IssueReadFailure
		}
		return IssueGenericStageError
	case StageBuildCorpus:
		if errors.Is(se.Err, corpus.ErrDuplicateIdentity) {
			return IssueDuplicateIdentity
		}
		return IssueGenericStageError
	case StageRenderDocuments:
		return IssueRenderFailure
	case StageWriteSite:
		return IssueWriteFailure
	case StageComputeKey, StageAssemblePages:
		return IssueGenericStageError
	default:
		return IssueGenericStageError
	}
}
