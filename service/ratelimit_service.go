package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Rate-limited actions and their hourly quotas per user
const (
	ActionPetitionAnalysis   = "petition_analysis"
	ActionPetitionGeneration = "petition_generation"
	ActionJudgeAnalysis      = "judge_analysis"
	ActionChatMessage        = "chat_message"
)

const rateLimitWindow = time.Hour

var defaultRateLimits = map[string]int{
	ActionPetitionAnalysis:   20,
	ActionPetitionGeneration: 10,
	ActionJudgeAnalysis:      10,
	ActionChatMessage:        100,
}

// RateLimitService enforces per-user hourly quotas on expensive AI actions
type RateLimitService struct {
	store  RateLimitStore
	limits map[string]int
}

// RateLimitServiceOption is a functional option for RateLimitService
type RateLimitServiceOption func(*RateLimitService)

// WithRateLimitStore sets the counter backend
func WithRateLimitStore(store RateLimitStore) RateLimitServiceOption {
	return func(s *RateLimitService) {
		s.store = store
	}
}

// WithRateLimits overrides the default quotas
func WithRateLimits(limits map[string]int) RateLimitServiceOption {
	return func(s *RateLimitService) {
		s.limits = limits
	}
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(opts ...RateLimitServiceOption) *RateLimitService {
	s := &RateLimitService{limits: defaultRateLimits}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check consumes one quota unit for the action, returning a RateLimitedError
// when the user is over its hourly limit. Unknown actions pass unchecked.
func (s *RateLimitService) Check(ctx context.Context, userID uuid.UUID, action string) error {
	limit, ok := s.limits[action]
	if !ok {
		return nil
	}

	allowed, retryAfter, err := s.store.TryAcquire(ctx, userID, action, limit, rateLimitWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return &RateLimitedError{Action: action, Limit: limit, RetryAfter: retryAfter}
	}
	return nil
}
