package messaging

import "time"

// Reconnect backoff defaults: 1s, 2s, 4s, 8s, … capped at 30s.
const (
	defaultBackoffBase = time.Second
	defaultBackoffCap  = 30 * time.Second
)

// Backoff computes exponential reconnect delays bounded by a cap.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

// DefaultBackoff returns the standard reconnect backoff policy.
func DefaultBackoff() Backoff {
	return Backoff{Base: defaultBackoffBase, Cap: defaultBackoffCap}
}

// Delay returns min(Base * 2^attempt, Cap). Attempt numbering starts at 0;
// negative attempts are treated as 0.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Shifting past 62 bits overflows time.Duration; the cap applies long
	// before that.
	if attempt > 62 {
		return b.Cap
	}
	d := b.Base << uint(attempt)
	if d <= 0 || d > b.Cap {
		return b.Cap
	}
	return d
}
