package client

import (
	"context"
	"time"

	"github.com/sellaris/payments/internal/domain/model"
)

// Countdown renders the payment window as MM:SS, one tick per second.
// OnExpire fires on the same tick the label reaches "00:00". Canceling
// the context stops the ticker; nothing keeps running after navigation
// away from the page.
type Countdown struct {
	remaining int // seconds

	OnTick   func(label string)
	OnExpire func()
}

func NewCountdown(seconds int) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return &Countdown{remaining: seconds}
}

// Run emits the initial label immediately, then counts down once per
// second until zero or cancellation.
func (c *Countdown) Run(ctx context.Context) error {
	c.emit()
	if c.remaining <= 0 {
		c.expire()
		return nil
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.remaining--
			c.emit()
			if c.remaining <= 0 {
				c.expire()
				return nil
			}
		}
	}
}

func (c *Countdown) emit() {
	if c.OnTick != nil {
		c.OnTick(model.FormatCountdown(c.remaining))
	}
}

func (c *Countdown) expire() {
	if c.OnExpire != nil {
		c.OnExpire()
	}
}
