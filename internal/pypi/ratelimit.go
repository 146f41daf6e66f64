package pypi

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter caps outbound index requests to n per period. One Limiter is
// shared by every call of a run; Wait blocks until a token is free.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter allows n requests per period. Requests are spaced period/n
// apart with no burst, so no window of length period sees more than n.
func NewLimiter(n int, period time.Duration) *Limiter {
	if n < 1 {
		n = 1
	}
	every := period / time.Duration(n)
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

// Wait blocks until the next request may be sent or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
