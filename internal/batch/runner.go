// Package batch drives the serial classification loop over a loaded dataset:
// resume seeding, short-text short-circuiting, per-record failure isolation,
// periodic whole-snapshot checkpoints, and pacing between records.
package batch

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"policyscan/internal/dataset"
	"policyscan/internal/logging"
	"policyscan/internal/report"
	"policyscan/internal/schema"
)

// Analyzer produces a structured verdict for one policy text.
type Analyzer interface {
	Analyze(ctx context.Context, appID, policyText string) (*schema.ClassificationResult, error)
	Model() string
}

// Status tracks the runner through its lifecycle.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusAborted    Status = "aborted"
)

// Options tunes one batch run. A zero MinPolicyChars disables the
// short-text short-circuit; a zero CheckpointEvery falls back to the default.
type Options struct {
	Delay           time.Duration
	CheckpointEvery int
	MinPolicyChars  int
	ResumeFrom      int
}

// DefaultOptions returns the standard batch tuning.
func DefaultOptions() Options {
	return Options{
		Delay:           500 * time.Millisecond,
		CheckpointEvery: 50,
		MinPolicyChars:  100,
	}
}

// Result reports a finished or aborted run.
type Result struct {
	Status  Status
	Total   int // rows in the final artifact
	Errors  int // rows with a non-empty error column
	Skipped int // records below the resume offset
}

// Runner walks an ordered dataset one record at a time. Classifier failures
// degrade to error rows; only bookkeeping failures (seed read, snapshot
// write) abort the run. A Runner is single-use and not safe for concurrent
// Run calls.
type Runner struct {
	analyzer Analyzer
	opts     Options
	status   Status
	log      *logging.Logger
	audit    *logging.AuditTrail

	writeSnapshot func(path string, records []report.FlatRecord) error
}

// New builds a Runner. The audit trail may be nil.
func New(analyzer Analyzer, opts Options, audit *logging.AuditTrail) *Runner {
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = DefaultOptions().CheckpointEvery
	}
	if opts.MinPolicyChars < 0 {
		opts.MinPolicyChars = DefaultOptions().MinPolicyChars
	}
	return &Runner{
		analyzer:      analyzer,
		opts:          opts,
		status:        StatusNotStarted,
		log:           logging.Get(logging.CategoryBatch),
		audit:         audit,
		writeSnapshot: report.WriteSnapshot,
	}
}

// Status returns the runner's current lifecycle state.
func (r *Runner) Status() Status {
	return r.status
}

// Run classifies every record at or past the resume offset and persists the
// accumulated rows to outputPath. Cancellation is honored between records;
// the partial snapshot is persisted before returning.
func (r *Runner) Run(ctx context.Context, records []dataset.PolicyRecord, outputPath string) (Result, error) {
	r.status = StatusRunning
	total := len(records)

	rows, err := r.seedResumeState(outputPath)
	if err != nil {
		r.status = StatusAborted
		return Result{Status: StatusAborted}, err
	}

	r.log.Info("Batch run starting: %d records, resume_from=%d, model=%s, output=%s",
		total, r.opts.ResumeFrom, r.analyzer.Model(), outputPath)
	r.audit.Record(logging.AuditRunStart, map[string]interface{}{
		"records":     total,
		"resume_from": r.opts.ResumeFrom,
		"model":       r.analyzer.Model(),
		"output":      outputPath,
	})

	skipped := 0
	for idx, rec := range records {
		if idx < r.opts.ResumeFrom {
			skipped++
			continue
		}

		if ctx.Err() != nil {
			return r.abort(ctx.Err(), outputPath, rows, skipped)
		}

		appID := rec.AppID
		if appID == "" {
			appID = fmt.Sprintf("app_%d", idx)
		}

		r.log.Info("Analyzing %d/%d: %s", idx+1, total, appID)
		rows = append(rows, r.processRecord(ctx, appID, rec))

		if idx%r.opts.CheckpointEvery == 0 || idx == total-1 {
			if err := r.writeSnapshot(outputPath, rows); err != nil {
				r.status = StatusAborted
				return Result{Status: StatusAborted, Skipped: skipped},
					fmt.Errorf("failed to checkpoint results: %w", err)
			}
			r.log.Info("Checkpoint: %d rows persisted after record %d/%d", len(rows), idx+1, total)
			r.audit.Record(logging.AuditCheckpoint, map[string]interface{}{
				"record": idx,
				"rows":   len(rows),
			})
		}

		if idx < total-1 {
			if err := sleepCtx(ctx, r.opts.Delay); err != nil {
				return r.abort(err, outputPath, rows, skipped)
			}
		}
	}

	// Always land a final snapshot, even when the cadence just wrote one.
	if err := r.writeSnapshot(outputPath, rows); err != nil {
		r.status = StatusAborted
		return Result{Status: StatusAborted, Skipped: skipped},
			fmt.Errorf("failed to write final results: %w", err)
	}

	r.status = StatusCompleted
	res := r.buildResult(StatusCompleted, rows, skipped)
	r.log.Info("Batch complete: %d rows, %d errors, %d skipped", res.Total, res.Errors, res.Skipped)
	r.audit.Record(logging.AuditRunComplete, map[string]interface{}{
		"rows":    res.Total,
		"errors":  res.Errors,
		"skipped": res.Skipped,
	})
	return res, nil
}

// seedResumeState loads rows from an existing artifact when resuming past
// record zero. A missing artifact is not an error: the run simply starts
// with an empty accumulator, as it always has.
func (r *Runner) seedResumeState(outputPath string) ([]report.FlatRecord, error) {
	if r.opts.ResumeFrom <= 0 {
		return nil, nil
	}
	if _, err := os.Stat(outputPath); err != nil {
		return nil, nil
	}

	rows, err := report.ReadSnapshot(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to seed resume state: %w", err)
	}
	r.log.Info("Resuming from record %d with %d rows already on disk", r.opts.ResumeFrom, len(rows))
	return rows, nil
}

// processRecord turns one dataset record into exactly one output row.
// Classifier errors never escape: they degrade to an analysis_failed row.
func (r *Runner) processRecord(ctx context.Context, appID string, rec dataset.PolicyRecord) report.FlatRecord {
	trimmed := strings.TrimSpace(rec.PolicyText)
	if utf8.RuneCountInString(trimmed) < r.opts.MinPolicyChars {
		r.log.Info("Skipping %s: policy text empty or too short (%d chars)", appID, utf8.RuneCountInString(trimmed))
		r.audit.Record(logging.AuditRecordError, map[string]interface{}{
			"app_id": appID,
			"error":  report.ErrEmptyOrShortPolicy,
		})
		return report.ErrorRecord(appID, rec.AppName, report.ErrEmptyOrShortPolicy)
	}

	result, err := r.analyzer.Analyze(ctx, appID, rec.PolicyText)
	if err != nil {
		r.log.Error("Analysis failed for %s: %v", appID, err)
		r.audit.Record(logging.AuditRecordError, map[string]interface{}{
			"app_id": appID,
			"error":  err.Error(),
		})
		return report.ErrorRecord(appID, rec.AppName, report.ErrAnalysisFailed)
	}
	return report.Flatten(appID, rec.AppName, result)
}

// abort persists what the run has so far and surfaces the cause. A failed
// persist here only costs rows since the last checkpoint.
func (r *Runner) abort(cause error, outputPath string, rows []report.FlatRecord, skipped int) (Result, error) {
	if err := r.writeSnapshot(outputPath, rows); err != nil {
		r.log.Error("Failed to persist partial snapshot on abort: %v", err)
	}
	r.status = StatusAborted
	res := r.buildResult(StatusAborted, rows, skipped)
	r.log.Warn("Batch aborted after %d rows: %v", res.Total, cause)
	return res, cause
}

func (r *Runner) buildResult(status Status, rows []report.FlatRecord, skipped int) Result {
	summary := report.Summarize(rows)
	return Result{
		Status:  status,
		Total:   summary.Total,
		Errors:  summary.Errors,
		Skipped: skipped,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
