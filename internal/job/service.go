package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/baixafy/baixafy-api/internal/apperror"
	"github.com/baixafy/baixafy-api/internal/entitlement"
)

// Scheduler hands a created job to the background workers. Enqueue must not
// block; it reports false when no capacity is left.
type Scheduler interface {
	Enqueue(jobID string) bool
}

// Service is the public entry point for submitting and polling jobs.
type Service struct {
	store       *Store
	entitle     entitlement.Decider
	sched       Scheduler
	scratchRoot string
}

func NewService(store *Store, entitle entitlement.Decider, sched Scheduler, scratchRoot string) *Service {
	return &Service{
		store:       store,
		entitle:     entitle,
		sched:       sched,
		scratchRoot: scratchRoot,
	}
}

// Submit validates the request, records the initial job and schedules the
// worker. It returns as soon as the record exists and the job is queued; it
// never waits for any fetch or package step.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if appErr := req.Validate(); appErr != nil {
		return "", appErr
	}

	decision, err := s.entitle.CanDownload(ctx, req.UserKey)
	if err != nil {
		return "", fmt.Errorf("entitlement check: %w", err)
	}
	if !decision.Allowed {
		return "", apperror.New(apperror.Forbidden, decision.Reason)
	}

	id := s.newJobID()

	scratch := filepath.Join(s.scratchRoot, id)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	rec := &Record{
		ID:        id,
		SourceRef: req.SourceReference,
		UserKey:   req.UserKey,
		Status:    StatusStarting,
		Progress:  0,
		Message:   "Queued",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(rec); err != nil {
		return "", err
	}

	if !s.sched.Enqueue(id) {
		s.store.Delete(id)
		_ = os.RemoveAll(scratch)
		return "", apperror.New(apperror.Internal, "job queue is full, try again later")
	}

	slog.Info("job submitted", "job", id, "reference", req.SourceReference)
	return id, nil
}

// Get is the read-only poll surface over the store.
func (s *Service) Get(req GetJobRequest) (*Record, error) {
	if appErr := req.Validate(); appErr != nil {
		return nil, appErr
	}
	rec, ok := s.store.Get(req.ID)
	if !ok {
		return nil, apperror.New(apperror.NotFound, apperror.UserMessage(apperror.NotFound))
	}
	return &rec, nil
}

// List returns recent jobs, newest first.
func (s *Service) List() []Record {
	return s.store.List()
}

// newJobID draws uuids until one is unused. uuid collisions are effectively
// impossible, but ids must be unique by contract, not by probability.
func (s *Service) newJobID() string {
	for {
		id := uuid.NewString()
		if _, exists := s.store.Get(id); !exists {
			return id
		}
	}
}
