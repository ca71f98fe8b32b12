package service

import (
	"context"
	"time"

	"go-musician-booking/core/cache"
	"go-musician-booking/core/constants"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
)

// ResponseGuard throttles the unauthenticated respond endpoints. A nil cache
// disables it.
type ResponseGuard struct {
	cache  cache.Cache
	limit  int
	window time.Duration
}

func NewResponseGuard(c cache.Cache, limit int, window time.Duration) *ResponseGuard {
	return &ResponseGuard{cache: c, limit: limit, window: window}
}

// Allow counts one attempt for the caller. Attempts are keyed by IP address
// when known and by token otherwise.
func (g *ResponseGuard) Allow(ctx context.Context, token, ip string) error {
	if g == nil || g.cache == nil || g.limit <= 0 {
		return nil
	}

	subject := ip
	if subject == "" {
		subject = token
	}
	n, err := g.cache.IncrWithTTL(ctx, constants.RedisKeyRespondAttempt+subject, g.window)
	if err != nil {
		// A cache outage never blocks a response.
		logger.Warn("ResponseGuard:Allow:CacheError", "error", err)
		return nil
	}
	if n > int64(g.limit) {
		logger.Warn("ResponseGuard:Allow:Throttled", "subject", subject, "attempts", n)
		return errors.NewAppError(errors.ErrTooManyRequests, "too many attempts, try again later", nil)
	}
	return nil
}
