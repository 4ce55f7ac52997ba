package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Sentinel errors shared across services. Handlers map these to HTTP status
// codes and stable error codes.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidState     = errors.New("operation not allowed in current status")
	ErrRateLimited      = errors.New("rate limit exceeded")

	ErrAnalysisFailed    = errors.New("analysis failed")
	ErrStructuringFailed = errors.New("structuring failed")
	ErrGenerationFailed  = errors.New("generation failed")
	ErrRenderFailed      = errors.New("document rendering failed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is deactivated")
)

// RateLimitedError carries how long the caller must wait before the action
// becomes available again.
type RateLimitedError struct {
	Action     string
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit of %d %s per hour reached, retry in %s", e.Limit, e.Action, e.RetryAfter.Round(time.Second))
}

// Unwrap lets errors.Is(err, ErrRateLimited) match
func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// RetryAfterHeader renders the wait as whole seconds for the Retry-After
// header, never less than 1.
func (e *RateLimitedError) RetryAfterHeader() string {
	secs := int(e.RetryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
