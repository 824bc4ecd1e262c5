package poller

import (
	"context"
	"time"
)

// Limiter paces consecutive subscriber checks. It exists to be polite
// to the external sources, not for correctness.
type Limiter interface {
	Wait(ctx context.Context) error
}

type fixedDelay struct {
	delay time.Duration
}

// FixedDelay waits a constant duration between checks.
func FixedDelay(delay time.Duration) Limiter {
	return fixedDelay{delay: delay}
}

func (l fixedDelay) Wait(ctx context.Context) error {
	if l.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(l.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay never waits. Tests use it to drive ticks synchronously.
func NoDelay() Limiter {
	return fixedDelay{}
}
