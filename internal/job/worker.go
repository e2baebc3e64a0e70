package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/baixafy/baixafy-api/internal/apperror"
	"github.com/baixafy/baixafy-api/internal/entitlement"
	"github.com/baixafy/baixafy-api/internal/fetcher"
)

// Archiver bundles produced files into one archive at destPath.
type Archiver interface {
	Build(files []string, destPath string) error
}

// Runner implements Processor. It owns every mutation of a record between
// submission and its terminal state: health check, fetch with incremental
// item progress, packaging, and scratch cleanup.
type Runner struct {
	store       *Store
	fetch       fetcher.Fetcher
	archiver    Archiver
	history     entitlement.Recorder
	scratchRoot string
	archiveRoot string
}

func NewRunner(store *Store, fetch fetcher.Fetcher, archiver Archiver, history entitlement.Recorder, scratchRoot, archiveRoot string) *Runner {
	return &Runner{
		store:       store,
		fetch:       fetch,
		archiver:    archiver,
		history:     history,
		scratchRoot: scratchRoot,
		archiveRoot: archiveRoot,
	}
}

// Process drives one job to completed or failed. Nothing downstream listens
// for errors from here, so every failure mode, panics included, ends up in
// the record instead of escaping the worker goroutine.
func (r *Runner) Process(ctx context.Context, jobID string) {
	rec, ok := r.store.Get(jobID)
	if !ok {
		slog.Warn("worker: unknown job", "job", jobID)
		return
	}

	scratch := filepath.Join(r.scratchRoot, jobID)
	// Scratch space is reclaimed whether the job succeeds or fails.
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			slog.Error("worker: remove scratch dir", "job", jobID, "error", err)
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			slog.Error("worker: panic recovered", "job", jobID, "panic", p)
			r.fail(jobID, apperror.Internal, "")
		}
	}()

	if err := r.fetch.Healthy(ctx); err != nil {
		slog.Error("worker: fetch tool health check", "job", jobID, "error", err)
		r.fail(jobID, apperror.SourceUnavailable, "")
		return
	}

	r.store.Update(jobID, func(j *Record) {
		j.Status = StatusFetching
		j.Progress = ProgressFetching
		j.Message = "Starting fetch"
	})

	files, itemErrs, err := r.fetch.Fetch(ctx, rec.SourceRef, scratch, func(item string, total, completed int) {
		r.store.Update(jobID, func(j *Record) {
			j.CurrentItem = item
			j.TotalItems = total
			j.CompletedItems = completed
			j.Progress = fetchProgress(total, completed)
			j.Message = fmt.Sprintf("Fetched %s", item)
		})
	})
	if err != nil {
		slog.Error("worker: fetch", "job", jobID, "error", err)
		r.fail(jobID, fetchErrorKind(err), "")
		return
	}
	for _, ie := range itemErrs {
		slog.Warn("worker: item failed", "job", jobID, "item", ie.Item, "error", ie.Err)
	}
	if len(files) == 0 {
		r.fail(jobID, apperror.NothingProduced, "")
		return
	}

	r.store.Update(jobID, func(j *Record) {
		j.Status = StatusPackaging
		j.Progress = ProgressPackaging
		j.Message = "Packaging results"
	})

	archiveName := jobID + ".zip"
	if err := r.archiver.Build(files, filepath.Join(r.archiveRoot, archiveName)); err != nil {
		slog.Error("worker: package", "job", jobID, "error", err)
		r.fail(jobID, apperror.PackagingFailure, "")
		return
	}

	// Record history before the record goes terminal so a poller that sees
	// "completed" can rely on the download already counting against the
	// free limit.
	if r.history != nil {
		if err := r.history.RecordDownload(ctx, rec.UserKey, rec.SourceRef, archiveName); err != nil {
			slog.Error("worker: record download history", "job", jobID, "error", err)
		}
	}

	r.store.Update(jobID, func(j *Record) {
		j.Status = StatusCompleted
		j.Progress = ProgressDone
		j.Message = completionMessage(len(files), len(itemErrs))
		j.CurrentItem = ""
		j.CompletedItems = len(files)
		if j.TotalItems < len(files) {
			j.TotalItems = len(files) + len(itemErrs)
		}
		j.ResultPath = archiveName
		j.TerminalAt = time.Now().UTC()
	})
	slog.Info("worker: job completed", "job", jobID, "files", len(files), "failed_items", len(itemErrs))
}

// fail marks the job terminal with a taxonomy kind and a user-safe message.
// Progress keeps its last known value.
func (r *Runner) fail(jobID string, kind apperror.Code, message string) {
	if message == "" {
		message = apperror.UserMessage(kind)
	}
	r.store.Update(jobID, func(j *Record) {
		j.Status = StatusFailed
		j.Message = message
		j.ErrorKind = kind
		j.Error = message
		j.CurrentItem = ""
		j.TerminalAt = time.Now().UTC()
	})
}

func fetchErrorKind(err error) apperror.Code {
	switch {
	case errors.Is(err, fetcher.ErrTimeout):
		return apperror.Timeout
	case errors.Is(err, fetcher.ErrUnavailable):
		return apperror.SourceUnavailable
	default:
		// The tool ran and yielded nothing usable.
		return apperror.NothingProduced
	}
}

// fetchProgress maps item counters onto the fetch band.
func fetchProgress(total, completed int) int {
	if total <= 0 {
		return ProgressFetching
	}
	frac := float64(completed) / float64(total)
	if frac > 1 {
		frac = 1
	}
	return ProgressFetching + int(frac*float64(ProgressFetched-ProgressFetching))
}

func completionMessage(files, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("Completed, %d file(s) archived", files)
	}
	return fmt.Sprintf("Completed, %d of %d item(s) fetched", files, files+failed)
}
