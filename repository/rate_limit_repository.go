package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RateLimitRepository implements a sliding-window call counter per user and
// action. The row is locked for the duration of the check so concurrent
// requests serialize and the window can never be oversubscribed.
type RateLimitRepository struct {
	db *pgxpool.Pool
}

// NewRateLimitRepository creates a new rate limit repository
func NewRateLimitRepository(db *pgxpool.Pool) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// TryAcquire records one call for the action if the user is under limit
// within the window. When denied it returns how long until the oldest
// counted call leaves the window.
func (r *RateLimitRepository) TryAcquire(ctx context.Context, userID uuid.UUID, action string, limit int, window time.Duration) (bool, time.Duration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback(ctx)

	// Ensure the row exists so FOR UPDATE has something to lock
	_, err = tx.Exec(ctx, `
		INSERT INTO rate_limits (user_id, action, calls)
		VALUES ($1, $2, '{}')
		ON CONFLICT (user_id, action) DO NOTHING`,
		userID, action,
	)
	if err != nil {
		return false, 0, err
	}

	var calls []time.Time
	err = tx.QueryRow(ctx, `
		SELECT calls FROM rate_limits
		WHERE user_id = $1 AND action = $2
		FOR UPDATE`,
		userID, action,
	).Scan(&calls)
	if err != nil {
		return false, 0, err
	}

	now := time.Now()
	cutoff := now.Add(-window)

	recent := calls[:0]
	for _, t := range calls {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= limit {
		oldest := recent[0]
		for _, t := range recent {
			if t.Before(oldest) {
				oldest = t
			}
		}
		retryAfter := oldest.Add(window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		// Persist the pruned window even on denial
		if _, err := tx.Exec(ctx, `
			UPDATE rate_limits SET calls = $3
			WHERE user_id = $1 AND action = $2`,
			userID, action, recent,
		); err != nil {
			return false, 0, err
		}
		if err := tx.Commit(ctx); err != nil {
			return false, 0, err
		}
		return false, retryAfter, nil
	}

	recent = append(recent, now)
	_, err = tx.Exec(ctx, `
		UPDATE rate_limits SET calls = $3
		WHERE user_id = $1 AND action = $2`,
		userID, action, recent,
	)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, err
	}
	return true, 0, nil
}
