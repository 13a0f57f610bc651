package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RateLimitSnapshot is the last Keap quota observed by a running server.
type RateLimitSnapshot struct {
	API        string    `json:"api"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	ObservedAt time.Time `json:"observed_at"`
}

// GetRateLimitSnapshot returns the stored snapshot for api, or nil when none
// has been saved.
func (s *Store) GetRateLimitSnapshot(ctx context.Context, api string) (*RateLimitSnapshot, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	api = strings.TrimSpace(api)
	if api == "" {
		return nil, errors.New("api is required")
	}

	var (
		remaining  int
		resetAt    int64
		observedAt int64
	)
	row := s.DB.QueryRowContext(ctx, `
		SELECT remaining, reset_at, observed_at
		FROM rate_limit_snapshots
		WHERE api = ?
	`, api)
	if err := row.Scan(&remaining, &resetAt, &observedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch rate limit snapshot: %w", err)
	}

	return &RateLimitSnapshot{
		API:        api,
		Remaining:  remaining,
		ResetAt:    time.Unix(resetAt, 0).UTC(),
		ObservedAt: time.Unix(observedAt, 0).UTC(),
	}, nil
}

// SaveRateLimitSnapshot upserts the snapshot for snap.API.
func (s *Store) SaveRateLimitSnapshot(ctx context.Context, snap RateLimitSnapshot) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(snap.API) == "" {
		return errors.New("api is required")
	}
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = time.Now()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO rate_limit_snapshots (api, remaining, reset_at, observed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(api) DO UPDATE SET
			remaining = excluded.remaining,
			reset_at = excluded.reset_at,
			observed_at = excluded.observed_at
	`, snap.API, snap.Remaining, snap.ResetAt.UTC().Unix(), snap.ObservedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store rate limit snapshot: %w", err)
	}
	return nil
}
