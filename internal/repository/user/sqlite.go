package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/baixafy/baixafy-api/internal/entitlement"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetOrCreateUser(ctx context.Context, key string) (*entitlement.User, error) {
	const insert = `INSERT INTO users (user_key) VALUES (?)
		ON CONFLICT (user_key) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, insert, key); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	const query = `SELECT id, user_key, premium_until, created_at
		FROM users WHERE user_key = ?`

	u := &entitlement.User{}
	var premiumStr sql.NullString
	var createdStr string

	err := r.db.QueryRowContext(ctx, query, key).Scan(&u.ID, &u.Key, &premiumStr, &createdStr)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if premiumStr.Valid {
		u.PremiumUntil, _ = time.Parse(time.RFC3339, premiumStr.String)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return u, nil
}

func (r *Repository) SetPremiumUntil(ctx context.Context, key string, until time.Time) error {
	const query = `UPDATE users SET premium_until = ? WHERE user_key = ?`

	res, err := r.db.ExecContext(ctx, query, until.UTC().Format(time.RFC3339), key)
	if err != nil {
		return fmt.Errorf("set premium: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set premium: unknown user %s", key)
	}
	return nil
}

func (r *Repository) CountFreeDownloads(ctx context.Context, key string) (int64, error) {
	const query = `SELECT COUNT(*) FROM downloads WHERE user_key = ? AND is_premium = 0`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&n); err != nil {
		return 0, fmt.Errorf("count free downloads: %w", err)
	}
	return n, nil
}

func (r *Repository) SaveDownload(ctx context.Context, d *entitlement.Download) error {
	const query = `INSERT INTO downloads (user_key, source_ref, result_path, is_premium)
		VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, d.UserKey, d.SourceRef, d.ResultPath, d.Premium)
	if err != nil {
		return fmt.Errorf("save download: %w", err)
	}

	d.ID, _ = res.LastInsertId()
	d.CreatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) ListDownloads(ctx context.Context, key string) ([]entitlement.Download, error) {
	const query = `SELECT id, user_key, source_ref, result_path, is_premium, created_at
		FROM downloads WHERE user_key = ? ORDER BY id DESC LIMIT 100`

	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var downloads []entitlement.Download
	for rows.Next() {
		var d entitlement.Download
		var createdStr string
		if err := rows.Scan(&d.ID, &d.UserKey, &d.SourceRef, &d.ResultPath, &d.Premium, &createdStr); err != nil {
			return nil, fmt.Errorf("scan download: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		downloads = append(downloads, d)
	}

	return downloads, rows.Err()
}
