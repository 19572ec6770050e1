package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OPGLOL/opgl-matchboard-service/internal/repository"
)

// RateLimitResult contains the result of a rate limit check.
// Limit is 0 when the key is unknown or inactive.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetTime time.Time
}

// RateLimiter applies fixed-window quotas per API key
type RateLimiter struct {
	apiKeyRepository repository.APIKeyRepository
	now              func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(apiKeyRepository repository.APIKeyRepository) *RateLimiter {
	return &RateLimiter{
		apiKeyRepository: apiKeyRepository,
		now:              time.Now,
	}
}

// CheckRateLimit counts one request against the key's current window
func (rateLimiter *RateLimiter) CheckRateLimit(ctx context.Context, apiKey string) (*RateLimitResult, error) {
	now := rateLimiter.now()

	// Step 1: Resolve the key
	apiKeyRecord, err := rateLimiter.apiKeyRepository.GetByKeyHash(ctx, repository.HashAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if apiKeyRecord == nil {
		return &RateLimitResult{ResetTime: now}, nil
	}

	// Step 2: Count the request in the current window
	windowDuration := time.Duration(apiKeyRecord.RateWindowSeconds) * time.Second
	windowStart := calculateWindowStart(now, windowDuration)

	requestCount, err := rateLimiter.apiKeyRepository.IncrementWindow(ctx, apiKeyRecord.ID, windowStart)
	if err != nil {
		return nil, err
	}

	// Step 3: Record usage without holding up the request
	go func(record *repository.APIKey) {
		touchCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rateLimiter.apiKeyRepository.TouchLastUsed(touchCtx, record.ID); err != nil {
			log.Debug().Err(err).Str("apiKey", record.Name).Msg("Failed to update last used")
		}
	}(apiKeyRecord)

	remaining := max(apiKeyRecord.RateLimit-requestCount, 0)

	return &RateLimitResult{
		Allowed:   requestCount <= apiKeyRecord.RateLimit,
		Limit:     apiKeyRecord.RateLimit,
		Remaining: remaining,
		ResetTime: windowStart.Add(windowDuration),
	}, nil
}

// calculateWindowStart aligns currentTime down to a multiple of the window
func calculateWindowStart(currentTime time.Time, windowDuration time.Duration) time.Time {
	windowSeconds := int64(windowDuration.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	windowStartUnix := (currentTime.Unix() / windowSeconds) * windowSeconds
	return time.Unix(windowStartUnix, 0).UTC()
}

// Prune drops counters older than retention
func (rateLimiter *RateLimiter) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return rateLimiter.apiKeyRepository.PruneWindows(ctx, rateLimiter.now().Add(-retention))
}

// RunPruner prunes stale counters every interval until ctx is done
func (rateLimiter *RateLimiter) RunPruner(ctx context.Context, interval time.Duration, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := rateLimiter.Prune(ctx, retention)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to prune rate limit records")
				continue
			}
			log.Debug().Int64("removed", removed).Msg("Pruned rate limit records")
		}
	}
}
