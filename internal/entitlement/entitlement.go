// Package entitlement decides whether a caller may start a download job.
// The orchestrator consumes only the boolean decision plus a human-readable
// reason; the bookkeeping behind it (free-tier counters, premium expiry,
// download history) stays on this side of the boundary.
package entitlement

import (
	"context"
	"fmt"
	"time"
)

// Decision is the only thing the orchestrator ever sees.
type Decision struct {
	Allowed bool
	Reason  string
}

// Decider is consumed at submission time.
type Decider interface {
	CanDownload(ctx context.Context, userKey string) (Decision, error)
}

// Recorder appends a download-history entry once a job completes.
type Recorder interface {
	RecordDownload(ctx context.Context, userKey, sourceRef, resultPath string) error
}

type User struct {
	ID           int64
	Key          string
	PremiumUntil time.Time
	CreatedAt    time.Time
}

// PremiumActive reports whether the user's subscription covers now.
func (u *User) PremiumActive(now time.Time) bool {
	return !u.PremiumUntil.IsZero() && now.Before(u.PremiumUntil)
}

type Download struct {
	ID         int64     `json:"id"`
	UserKey    string    `json:"-"`
	SourceRef  string    `json:"sourceReference"`
	ResultPath string    `json:"resultPath"`
	Premium    bool      `json:"premium"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Repository interface {
	GetOrCreateUser(ctx context.Context, key string) (*User, error)
	SetPremiumUntil(ctx context.Context, key string, until time.Time) error
	CountFreeDownloads(ctx context.Context, key string) (int64, error)
	SaveDownload(ctx context.Context, d *Download) error
	ListDownloads(ctx context.Context, key string) ([]Download, error)
}

type Service struct {
	repo      Repository
	freeLimit int64
}

func NewService(repo Repository, freeLimit int64) *Service {
	if freeLimit < 0 {
		freeLimit = 0
	}
	return &Service{repo: repo, freeLimit: freeLimit}
}

func (s *Service) CanDownload(ctx context.Context, userKey string) (Decision, error) {
	user, err := s.repo.GetOrCreateUser(ctx, userKey)
	if err != nil {
		return Decision{}, fmt.Errorf("load user: %w", err)
	}

	if user.PremiumActive(time.Now()) {
		return Decision{Allowed: true, Reason: "premium subscription active"}, nil
	}

	used, err := s.repo.CountFreeDownloads(ctx, userKey)
	if err != nil {
		return Decision{}, fmt.Errorf("count free downloads: %w", err)
	}
	if used >= s.freeLimit {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("free download limit of %d reached, subscribe for unlimited downloads", s.freeLimit),
		}, nil
	}
	return Decision{
		Allowed: true,
		Reason:  fmt.Sprintf("free download available (%d remaining)", s.freeLimit-used),
	}, nil
}

// ActivatePremium extends the user's subscription by the given number of
// days, from now or from the current expiry, whichever is later.
func (s *Service) ActivatePremium(ctx context.Context, userKey string, days int) error {
	user, err := s.repo.GetOrCreateUser(ctx, userKey)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	from := time.Now()
	if user.PremiumUntil.After(from) {
		from = user.PremiumUntil
	}
	return s.repo.SetPremiumUntil(ctx, userKey, from.AddDate(0, 0, days))
}

// History returns the caller's past downloads, newest first.
func (s *Service) History(ctx context.Context, userKey string) ([]Download, error) {
	return s.repo.ListDownloads(ctx, userKey)
}

func (s *Service) RecordDownload(ctx context.Context, userKey, sourceRef, resultPath string) error {
	user, err := s.repo.GetOrCreateUser(ctx, userKey)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	return s.repo.SaveDownload(ctx, &Download{
		UserKey:    userKey,
		SourceRef:  sourceRef,
		ResultPath: resultPath,
		Premium:    user.PremiumActive(time.Now()),
	})
}
