package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagepress/internal/logfields"
)

// RunStages executes stages in order, recording timing and stopping on first fatal error.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(IssueCanceled, st.Name, SeverityError, "", se.Error(), se)
			bs.Report.RecordStageResult(st.Name, StageResultCanceled, bs.Recorder)
			return se
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)

		bs.Report.StageDurations[string(st.Name)] = dur
		bs.Recorder.ObserveStageDuration(string(st.Name), dur)

		out := ClassifyStageResult(st.Name, err)

		if out.Error != nil {
			bs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			bs.Report.AddIssue(out.IssueCode, out.Stage, out.Severity, "", out.Error.Error(), out.Error)
		}

		bs.Report.RecordStageResult(st.Name, out.Result, bs.Recorder)

		slog.Debug("Stage complete",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Milliseconds())),
			logfields.Outcome(string(out.Result)))

		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", st.Name)
		}

		if st.Name == StageComputeKey && bs.SkipBuild {
			slog.Info("Early build exit: content and configuration unchanged and existing output valid; skipping remaining stages",
				logfields.BuildID(bs.Report.BuildID))
			bs.Report.SkipReason = "no_changes"
			bs.Report.DeriveOutcome()
			bs.Report.Finish()
			return nil
		}
	}

	return nil
}
