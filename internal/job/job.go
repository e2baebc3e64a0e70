package job

import (
	"time"

	"github.com/baixafy/baixafy-api/internal/apperror"
)

type Status string

const (
	StatusStarting  Status = "starting"
	StatusFetching  Status = "fetching"
	StatusPackaging Status = "packaging"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress milestones of the worker state machine. Item downloads scale
// linearly between ProgressFetching and ProgressFetched.
const (
	ProgressFetching  = 15
	ProgressFetched   = 80
	ProgressPackaging = 85
	ProgressDone      = 100
)

// Record is the state of one fetch-and-package job. It is created at
// submission, mutated only by the worker that owns it, and read
// concurrently by pollers through Store snapshots.
type Record struct {
	ID             string        `json:"id"`
	SourceRef      string        `json:"sourceReference"`
	UserKey        string        `json:"-"`
	Status         Status        `json:"status"`
	Progress       int           `json:"progress"`
	Message        string        `json:"message"`
	CurrentItem    string        `json:"currentItem,omitempty"`
	TotalItems     int           `json:"totalItems"`
	CompletedItems int           `json:"completedItems"`
	ResultPath     string        `json:"resultPath,omitempty"`
	ErrorKind      apperror.Code `json:"errorKind,omitempty"`
	Error          string        `json:"error,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	TerminalAt     time.Time     `json:"terminalAt,omitzero"`
}
