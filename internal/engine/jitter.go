package engine

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	DefaultJitterMin = 200 * time.Millisecond
	DefaultJitterMax = 1500 * time.Millisecond
)

// Jitter is a uniform random pre-request delay in [Min, Max]
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// Delay draws one delay
func (j Jitter) Delay() time.Duration {
	if j.Max <= j.Min {
		return max(j.Min, 0)
	}
	return j.Min + time.Duration(rand.Int64N(int64(j.Max-j.Min)+1))
}

// Wait sleeps for one drawn delay or until ctx is done
func (j Jitter) Wait(ctx context.Context) error {
	d := j.Delay()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
