package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRateLimitStore struct {
	allowed    bool
	retryAfter time.Duration
	err        error

	gotUser   uuid.UUID
	gotAction string
	gotLimit  int
	gotWindow time.Duration
	calls     int
}

func (f *fakeRateLimitStore) TryAcquire(ctx context.Context, userID uuid.UUID, action string, limit int, window time.Duration) (bool, time.Duration, error) {
	f.calls++
	f.gotUser = userID
	f.gotAction = action
	f.gotLimit = limit
	f.gotWindow = window
	return f.allowed, f.retryAfter, f.err
}

// windowStore mirrors the Postgres repository's locked prune-and-append
// sequence in memory, so sliding-window behavior can be exercised without
// a database.
type windowStore struct {
	mu    sync.Mutex
	calls map[string][]time.Time
}

func newWindowStore() *windowStore {
	return &windowStore{calls: make(map[string][]time.Time)}
}

func (s *windowStore) TryAcquire(ctx context.Context, userID uuid.UUID, action string, limit int, window time.Duration) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID.String() + ":" + action
	now := time.Now()
	cutoff := now.Add(-window)

	kept := s.calls[key][:0]
	for _, at := range s.calls[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) >= limit {
		s.calls[key] = kept
		return false, kept[0].Sub(cutoff), nil
	}
	s.calls[key] = append(kept, now)
	return true, 0, nil
}

func TestRateLimitCheckAllowed(t *testing.T) {
	store := &fakeRateLimitStore{allowed: true}
	limiter := NewRateLimitService(WithRateLimitStore(store))

	userID := uuid.New()
	err := limiter.Check(context.Background(), userID, ActionPetitionAnalysis)
	require.NoError(t, err)
	assert.Equal(t, userID, store.gotUser)
	assert.Equal(t, ActionPetitionAnalysis, store.gotAction)
	assert.Equal(t, 20, store.gotLimit)
	assert.Equal(t, time.Hour, store.gotWindow)
}

func TestRateLimitCheckDenied(t *testing.T) {
	store := &fakeRateLimitStore{allowed: false, retryAfter: 5 * time.Minute}
	limiter := NewRateLimitService(WithRateLimitStore(store))

	err := limiter.Check(context.Background(), uuid.New(), ActionPetitionGeneration)
	require.Error(t, err)

	var rateErr *RateLimitedError
	require.True(t, errors.As(err, &rateErr))
	assert.Equal(t, ActionPetitionGeneration, rateErr.Action)
	assert.Equal(t, 10, rateErr.Limit)
	assert.Equal(t, 5*time.Minute, rateErr.RetryAfter)
}

func TestRateLimitUnknownActionPasses(t *testing.T) {
	store := &fakeRateLimitStore{}
	limiter := NewRateLimitService(WithRateLimitStore(store))

	err := limiter.Check(context.Background(), uuid.New(), "bulk_export")
	require.NoError(t, err)
	assert.Equal(t, 0, store.calls)
}

func TestRateLimitOverrides(t *testing.T) {
	store := &fakeRateLimitStore{allowed: true}
	limiter := NewRateLimitService(
		WithRateLimitStore(store),
		WithRateLimits(map[string]int{ActionChatMessage: 5}),
	)

	require.NoError(t, limiter.Check(context.Background(), uuid.New(), ActionChatMessage))
	assert.Equal(t, 5, store.gotLimit)

	// Actions outside the override map are unchecked
	require.NoError(t, limiter.Check(context.Background(), uuid.New(), ActionPetitionAnalysis))
	assert.Equal(t, 1, store.calls)
}

func TestRateLimitWindowsArePerUser(t *testing.T) {
	limiter := NewRateLimitService(
		WithRateLimitStore(newWindowStore()),
		WithRateLimits(map[string]int{ActionJudgeAnalysis: 2, ActionChatMessage: 2}),
	)

	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, limiter.Check(context.Background(), alice, ActionJudgeAnalysis))
	require.NoError(t, limiter.Check(context.Background(), alice, ActionJudgeAnalysis))
	require.ErrorIs(t, limiter.Check(context.Background(), alice, ActionJudgeAnalysis), ErrRateLimited)

	// A colleague in the same office keeps their own quota.
	require.NoError(t, limiter.Check(context.Background(), bob, ActionJudgeAnalysis))
	require.NoError(t, limiter.Check(context.Background(), bob, ActionJudgeAnalysis))
	require.ErrorIs(t, limiter.Check(context.Background(), bob, ActionJudgeAnalysis), ErrRateLimited)

	// A different action for the exhausted user is also untouched.
	require.NoError(t, limiter.Check(context.Background(), alice, ActionChatMessage))
}

func TestRateLimitConcurrentChecks(t *testing.T) {
	const (
		limit   = 10
		callers = 25
	)
	limiter := NewRateLimitService(
		WithRateLimitStore(newWindowStore()),
		WithRateLimits(map[string]int{ActionChatMessage: limit}),
	)
	userID := uuid.New()

	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = limiter.Check(context.Background(), userID, ActionChatMessage)
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, err := range results {
		if err == nil {
			allowed++
		} else {
			require.ErrorIs(t, err, ErrRateLimited)
		}
	}
	assert.Equal(t, limit, allowed)
}
