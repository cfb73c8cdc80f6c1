package collector

import "time"

const (
	defaultBackoffBase = 500 * time.Millisecond
	defaultBackoffMax  = 30 * time.Second
)

// Backoff produces capped exponential reconnect delays. It is used by a
// single goroutine and carries no locking.
type Backoff struct {
	base  time.Duration
	max   time.Duration
	delay time.Duration
}

func NewBackoff(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = defaultBackoffBase
	}
	if max < base {
		max = defaultBackoffMax
	}
	return &Backoff{base: base, max: max, delay: base}
}

// Next returns the current delay and doubles it for the following call,
// up to the cap.
func (b *Backoff) Next() time.Duration {
	d := b.delay
	b.delay *= 2
	if b.delay > b.max {
		b.delay = b.max
	}
	return d
}

// Reset returns the delay to its minimum. Called after a streaming session
// has stayed healthy long enough, so one transient blip is not penalized
// like a persistently failing endpoint.
func (b *Backoff) Reset() {
	b.delay = b.base
}
