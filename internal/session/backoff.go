package session

import "time"

const (
	DefaultBackoffBase = 15 * time.Second
	DefaultBackoffMax  = 240 * time.Second
)

// Backoff computes the wait after repeated throttle signals on one page:
// the base delay doubled per consecutive throttle, capped at Max. The
// session resets the consecutive count once a page fetch succeeds.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

func DefaultBackoff() Backoff {
	return Backoff{Base: DefaultBackoffBase, Max: DefaultBackoffMax}
}

// Wait returns the delay for the nth consecutive throttle (n >= 1).
func (b Backoff) Wait(consecutive int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = DefaultBackoffBase
	}
	max := b.Max
	if max <= 0 {
		max = DefaultBackoffMax
	}

	wait := base
	for i := 1; i < consecutive; i++ {
		wait *= 2
		if wait >= max {
			return max
		}
	}
	if wait > max {
		return max
	}
	return wait
}
