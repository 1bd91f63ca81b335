// ABOUTME: Send throttle enforcing a minimum gap between accepted chat sends
// ABOUTME: Token bucket from x/time/rate with one token and an injectable clock
package client

import (
	"time"

	"golang.org/x/time/rate"
)

// SendCooldown is the minimum spacing between two accepted sends.
const SendCooldown = 500 * time.Millisecond

// Throttle is owned by the render loop. A rejected attempt leaves the
// allowance untouched.
type Throttle struct {
	limiter *rate.Limiter
	now     func() time.Time
}

func NewThrottle(cooldown time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Every(cooldown), 1),
		now:     now,
	}
}

// Ready reports whether a send would be accepted right now without
// consuming the allowance.
func (t *Throttle) Ready() bool {
	return t.limiter.TokensAt(t.now()) >= 1
}

// Record consumes the allowance for an accepted send.
func (t *Throttle) Record() {
	t.limiter.AllowN(t.now(), 1)
}
