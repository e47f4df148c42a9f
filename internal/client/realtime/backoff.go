package realtime

import (
	"math/rand"
	"sync"
	"time"
)

// backoff produces the growing, jittered delays between reconnection
// attempts. Jitter is +/-20% so a fleet of clients dropped by the same
// outage does not reconnect in lockstep.
type backoff struct {
	mu      sync.Mutex
	base    time.Duration
	cap     time.Duration
	current time.Duration
	tries   int
}

func newBackoff(base, cap time.Duration) *backoff {
	return &backoff{base: base, cap: cap, current: base}
}

// Next returns the delay to wait before the next attempt and advances the
// schedule. Delays double until they reach the cap.
func (b *backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tries++

	jitter := time.Duration((rand.Float64()*0.4 - 0.2) * float64(b.current))
	wait := b.current + jitter
	if wait < b.base {
		wait = b.base
	}

	b.current *= 2
	if b.current > b.cap {
		b.current = b.cap
	}

	return wait
}

// Reset rewinds the schedule to the base delay.
func (b *backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.base
	b.tries = 0
}

// Attempts returns how many delays were handed out since the last Reset.
func (b *backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tries
}
