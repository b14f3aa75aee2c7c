package pipeline

import (
	"context"
	"math/rand/v2"
	"time"
)

// Sleeper suspends the calling flow for d. Implementations return early with ctx.Err()
// when ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoSleep skips artificial delays. Used by the CLI's --fast flag and in tests.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Rand is the randomness the pipeline draws from. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand returns a Rand backed by the goroutine-safe math/rand/v2 top-level source.
func DefaultRand() Rand {
	return globalRand{}
}
