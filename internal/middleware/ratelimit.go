package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	apierrors "github.com/OPGLOL/opgl-matchboard-service/internal/errors"
	"github.com/OPGLOL/opgl-matchboard-service/internal/ratelimit"
)

// RateLimitChecker counts a request against an API key
type RateLimitChecker interface {
	CheckRateLimit(ctx context.Context, apiKey string) (*ratelimit.RateLimitResult, error)
}

// RateLimitMiddleware creates middleware that enforces rate limiting based on API keys
func RateLimitMiddleware(rateLimiter RateLimitChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			apiKey := request.Header.Get("X-API-Key")
			if apiKey == "" {
				apierrors.WriteError(responseWriter, apierrors.NewAPIError(
					apierrors.ErrCodeMissingAPIKey,
					"API key is required. Include X-API-Key header in your request.",
					http.StatusUnauthorized,
				))
				return
			}

			rateLimitResult, err := rateLimiter.CheckRateLimit(request.Context(), apiKey)
			if err != nil {
				log.Error().Err(err).Msg("Rate limit check failed")
				apierrors.WriteError(responseWriter, apierrors.InternalError("Rate limit check failed"))
				return
			}

			if rateLimitResult.Limit == 0 {
				apierrors.WriteError(responseWriter, apierrors.NewAPIError(
					apierrors.ErrCodeInvalidAPIKey,
					"Invalid or inactive API key.",
					http.StatusUnauthorized,
				))
				return
			}

			header := responseWriter.Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(rateLimitResult.Limit))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(rateLimitResult.Remaining))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(rateLimitResult.ResetTime.Unix(), 10))

			if !rateLimitResult.Allowed {
				retryAfter := max(rateLimitResult.ResetTime.Unix()-time.Now().Unix(), 1)
				header.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

				apierrors.WriteError(responseWriter, apierrors.NewAPIError(
					apierrors.ErrCodeRateLimitExceeded,
					fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter),
					http.StatusTooManyRequests,
				))
				return
			}

			next.ServeHTTP(responseWriter, request)
		})
	}
}
