// Package fetcher defines the boundary to the external tool that retrieves
// and converts referenced media into local files.
package fetcher

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the external tool is missing or failing its
	// health check. Transient; callers may retry later.
	ErrUnavailable = errors.New("fetch tool unavailable")

	// ErrTimeout means the fetch exceeded its bounded execution ceiling.
	ErrTimeout = errors.New("fetch timed out")
)

// ItemError records a single failed item inside a multi-item fetch. Item
// failures do not abort the batch.
type ItemError struct {
	Item string
	Err  string
}

// Progress is invoked as items are produced. total may be zero until the
// tool has announced how many items the reference resolves to.
type Progress func(currentItem string, total, completed int)

// Fetcher wraps the external download tool. Implementations contain no
// business logic; they translate the tool's exit status and output into
// produced file paths and per-item errors.
type Fetcher interface {
	// Healthy reports whether the external tool is operable.
	Healthy(ctx context.Context) error

	// Fetch runs the tool against ref, writing produced files into
	// scratchDir. It blocks for at most the implementation's execution
	// ceiling; exceeding it returns ErrTimeout, never a silent empty
	// result.
	Fetch(ctx context.Context, ref string, scratchDir string, onProgress Progress) (files []string, itemErrs []ItemError, err error)
}
