package flow

import (
	"context"
	"time"
)

// DefaultDisplayDelay is applied after each backend response when the
// configuration does not say otherwise.
const DefaultDisplayDelay = 500 * time.Millisecond

// Pacer holds a flow back for a fixed delay after a backend response so
// that loading states stay visible for a moment. A zero Pacer does not wait.
type Pacer struct {
	delay time.Duration
}

// NewPacer returns a pacer waiting d. Negative values are treated as zero.
func NewPacer(d time.Duration) Pacer {
	if d < 0 {
		d = 0
	}
	return Pacer{delay: d}
}

// Delay returns the configured wait
func (p Pacer) Delay() time.Duration {
	return p.delay
}

// Settle blocks for the configured delay. It returns ctx.Err() if the
// context ends first; callers must then drop whatever they were about to
// show.
func (p Pacer) Settle(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
