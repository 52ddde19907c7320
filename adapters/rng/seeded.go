// Package rng provides the seeded random streams behind the mock
// statistical flags and GIR activity labels.
package rng

import (
	"context"
	"fmt"
	"math/rand"

	"pillartwo/ports"
)

// Seeded implements ports.RNGPort over math/rand sources.
type Seeded struct{}

var _ ports.RNGPort = (*Seeded)(nil)

// NewSeeded creates a seeded RNG adapter.
func NewSeeded() *Seeded {
	return &Seeded{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (s *Seeded) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("seeded stream %s: %w", name, err)
	}
	return rand.New(rand.NewSource(seed)), nil
}

// Stream mixes the run id and consumer name into the base seed, so the same
// run always replays the same draws per consumer.
func (s *Seeded) Stream(ctx context.Context, runID, consumer string, baseSeed int64) (*rand.Rand, error) {
	seed := baseSeed
	if runID != "" {
		seed = int64(hashString(runID)) + seed
	}
	if consumer != "" {
		seed = int64(hashString(consumer)) + seed
	}
	return s.SeededStream(ctx, consumer, seed)
}

// hashString is djb2.
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
