// Package cleanup reclaims disk space after jobs finish. Scratch
// directories are removed synchronously by the worker; archives are removed
// by a periodic sweep once their retention window has elapsed.
package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/baixafy/baixafy-api/internal/job"
)

// Store is the slice of the job store the sweeper needs.
type Store interface {
	List() []job.Record
	Delete(id string)
}

// Sweeper periodically deletes expired archives and their job records. A
// sweep over terminalAt timestamps replaces one ad-hoc timer per job.
type Sweeper struct {
	store       Store
	scratchRoot string
	archiveRoot string
	retention   time.Duration
	interval    time.Duration
}

func NewSweeper(store Store, scratchRoot, archiveRoot string, retention, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:       store,
		scratchRoot: scratchRoot,
		archiveRoot: archiveRoot,
		retention:   retention,
		interval:    interval,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

// Sweep removes every terminal record whose retention window elapsed before
// now, along with its archive. It returns the number of records removed.
func (s *Sweeper) Sweep(now time.Time) int {
	removed := 0
	for _, rec := range s.store.List() {
		if !rec.Status.Terminal() || rec.TerminalAt.IsZero() {
			continue
		}
		if now.Sub(rec.TerminalAt) < s.retention {
			continue
		}
		if rec.ResultPath != "" {
			path := filepath.Join(s.archiveRoot, filepath.Base(rec.ResultPath))
			if err := Remove(path); err != nil {
				slog.Error("sweeper: remove archive", "job", rec.ID, "error", err)
				continue
			}
		}
		s.store.Delete(rec.ID)
		removed++
	}
	if removed > 0 {
		slog.Info("sweeper: reclaimed expired jobs", "count", removed)
	}
	return removed
}

// SweepOrphans removes scratch directories that belong to no live record.
// The job store is in-memory, so a process restart strands the scratch dirs
// of whatever was in flight.
func (s *Sweeper) SweepOrphans() {
	entries, err := os.ReadDir(s.scratchRoot)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("sweeper: read scratch root", "error", err)
		}
		return
	}

	live := make(map[string]bool)
	for _, rec := range s.store.List() {
		live[rec.ID] = true
	}

	for _, entry := range entries {
		if !entry.IsDir() || live[entry.Name()] {
			continue
		}
		if err := RemoveDir(filepath.Join(s.scratchRoot, entry.Name())); err != nil {
			slog.Error("sweeper: remove orphan scratch dir", "dir", entry.Name(), "error", err)
		}
	}
}

// Remove deletes a file. A path that never existed or is already gone is
// not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveDir deletes a directory tree, idempotently.
func RemoveDir(path string) error {
	return os.RemoveAll(path)
}
