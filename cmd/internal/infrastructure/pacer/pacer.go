package pacer

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out calls to third party services. Consecutive calls are
// at least minDelay apart, plus a random jitter of up to maxDelay - minDelay.
type Pacer struct {
	limiter *rate.Limiter
	jitter  time.Duration
}

func New(minDelay, maxDelay time.Duration) *Pacer {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}

	var jitter time.Duration
	if maxDelay > minDelay {
		jitter = maxDelay - minDelay
	}

	return &Pacer{
		limiter: rate.NewLimiter(limit, 1),
		jitter:  jitter,
	}
}

// Fixed returns a pacer with a constant interval and no jitter.
func Fixed(interval time.Duration) *Pacer {
	return New(interval, interval)
}

// Wait blocks until the next call is allowed or ctx is done.
// The first call never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	if p.jitter <= 0 {
		return nil
	}

	timer := time.NewTimer(rand.N(p.jitter))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
