package entitlement

import (
	"context"
	"testing"
	"time"
)

type mockRepo struct {
	users     map[string]*User
	downloads []Download
	nextID    int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]*User), nextID: 1}
}

func (m *mockRepo) GetOrCreateUser(_ context.Context, key string) (*User, error) {
	if u, ok := m.users[key]; ok {
		cp := *u
		return &cp, nil
	}
	u := &User{ID: m.nextID, Key: key, CreatedAt: time.Now()}
	m.nextID++
	m.users[key] = u
	cp := *u
	return &cp, nil
}

func (m *mockRepo) SetPremiumUntil(_ context.Context, key string, until time.Time) error {
	m.users[key].PremiumUntil = until
	return nil
}

func (m *mockRepo) CountFreeDownloads(_ context.Context, key string) (int64, error) {
	var n int64
	for _, d := range m.downloads {
		if d.UserKey == key && !d.Premium {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) SaveDownload(_ context.Context, d *Download) error {
	d.ID = m.nextID
	m.nextID++
	m.downloads = append(m.downloads, *d)
	return nil
}

func (m *mockRepo) ListDownloads(_ context.Context, key string) ([]Download, error) {
	var out []Download
	for _, d := range m.downloads {
		if d.UserKey == key {
			out = append(out, d)
		}
	}
	return out, nil
}

func TestCanDownload_FreeTier(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 1)
	ctx := context.Background()

	dec, err := svc.CanDownload(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("first free download must be allowed: %s", dec.Reason)
	}

	if err := svc.RecordDownload(ctx, "u1", "ref", "a.zip"); err != nil {
		t.Fatal(err)
	}

	dec, err = svc.CanDownload(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if dec.Allowed {
		t.Error("free limit of 1 must deny the second download")
	}
	if dec.Reason == "" {
		t.Error("denial must carry a human-readable reason")
	}
}

func TestCanDownload_LimitIsPerUser(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 1)
	ctx := context.Background()

	if err := svc.RecordDownload(ctx, "u1", "ref", "a.zip"); err != nil {
		t.Fatal(err)
	}

	dec, err := svc.CanDownload(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if !dec.Allowed {
		t.Error("another user's downloads must not count against u2")
	}
}

func TestCanDownload_PremiumBypassesLimit(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 1)
	ctx := context.Background()

	if err := svc.ActivatePremium(ctx, "u1", 30); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if err := svc.RecordDownload(ctx, "u1", "ref", "a.zip"); err != nil {
			t.Fatal(err)
		}
	}

	dec, err := svc.CanDownload(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !dec.Allowed {
		t.Errorf("active premium must always be allowed: %s", dec.Reason)
	}
}

func TestCanDownload_ExpiredPremium(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 1)
	ctx := context.Background()

	if _, err := repo.GetOrCreateUser(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetPremiumUntil(ctx, "u1", time.Now().Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	dec, err := svc.CanDownload(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	// Expired premium falls back to the free tier, which is still unused.
	if !dec.Allowed {
		t.Errorf("expected free-tier fallback: %s", dec.Reason)
	}
}

func TestRecordDownload_MarksPremium(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, 1)
	ctx := context.Background()

	if err := svc.ActivatePremium(ctx, "u1", 30); err != nil {
		t.Fatal(err)
	}
	if err := svc.RecordDownload(ctx, "u1", "ref", "a.zip"); err != nil {
		t.Fatal(err)
	}

	history, err := svc.History(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || !history[0].Premium {
		t.Errorf("expected one premium download, got %+v", history)
	}
}

func TestPremiumActive(t *testing.T) {
	now := time.Now()
	u := &User{}
	if u.PremiumActive(now) {
		t.Error("zero premium_until must not be active")
	}
	u.PremiumUntil = now.Add(time.Hour)
	if !u.PremiumActive(now) {
		t.Error("future premium_until must be active")
	}
	u.PremiumUntil = now.Add(-time.Hour)
	if u.PremiumActive(now) {
		t.Error("past premium_until must not be active")
	}
}
