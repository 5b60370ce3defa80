package bot

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RATE LIMITER

// Limiter is a fixed-window per-session message limiter backed by redis
// INCR + EXPIRE. It fails open: if redis is unreachable the message is
// allowed, because pricing answers are cheap and customers come first.
type Limiter struct {
	store  SessionStore
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewLimiter(store SessionStore, limit int, window time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

func (l *Limiter) Allow(ctx context.Context, session string) bool {
	key := "chat:rl:" + session

	n, err := l.store.Incr(ctx, key)
	if err != nil {
		l.logger.Warn("Rate limiter unavailable, allowing message",
			zap.String("session", session),
			zap.Error(err))
		return true
	}
	if n == 1 {
		if _, err := l.store.Expire(ctx, key, l.window); err != nil {
			l.logger.Warn("Failed to set rate limit window", zap.Error(err))
		}
	}
	return n <= int64(l.limit)
}
