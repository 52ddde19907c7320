package ports

import (
	"context"
	"math/rand"
)

// RandomSource is the only randomness the classifier and dashboard consume.
// *rand.Rand satisfies it. Implementations need not be goroutine-safe.
type RandomSource interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream derives a stream for one run and one consumer, so bulk
	// classification and GIR labels never share draws.
	Stream(ctx context.Context, runID, consumer string, baseSeed int64) (*rand.Rand, error)
}
