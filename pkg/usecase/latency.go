package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Latency holds the artificial delay applied before each operation. The zero
// value disables all delays.
type Latency struct {
	Lookup       time.Duration
	StatusUpdate time.Duration
	List         time.Duration
	Submit       time.Duration
	Analyze      time.Duration
}

// DemoLatency returns the delays of the portal demo: point lookups are fastest,
// uploads and analysis slowest.
func DemoLatency() Latency {
	return Latency{
		Lookup:       300 * time.Millisecond,
		StatusUpdate: 500 * time.Millisecond,
		List:         800 * time.Millisecond,
		Submit:       2000 * time.Millisecond,
		Analyze:      3000 * time.Millisecond,
	}
}

// wait blocks for d. It runs before any mutation, so a caller that gives up
// during the wait leaves the store untouched.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "request abandoned during simulated latency")
	case <-timer.C:
		return nil
	}
}
