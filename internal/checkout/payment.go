package checkout

import (
	"context"
	"time"
)

// Processor settles a card payment before the order is submitted. Non-card
// methods never reach it.
type Processor interface {
	Process(ctx context.Context, amount string) error
}

// SimulatedCardProcessor stands in for the payment gateway round trip: it
// waits a fixed delay and reports success.
type SimulatedCardProcessor struct {
	Delay time.Duration
}

func (p SimulatedCardProcessor) Process(ctx context.Context, _ string) error {
	select {
	case <-time.After(p.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
