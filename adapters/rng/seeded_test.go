package rng

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draws(t *testing.T, s *Seeded, runID, consumer string, seed int64) []float64 {
	t.Helper()
	r, err := s.Stream(context.Background(), runID, consumer, seed)
	require.NoError(t, err)
	out := make([]float64, 5)
	for i := range out {
		out[i] = r.Float64()
	}
	return out
}

func TestStreamIsDeterministic(t *testing.T) {
	s := NewSeeded()
	assert.Equal(t, draws(t, s, "run-1", "classifier", 42), draws(t, s, "run-1", "classifier", 42))
}

func TestStreamSeparatesConsumers(t *testing.T) {
	s := NewSeeded()
	assert.NotEqual(t, draws(t, s, "run-1", "classifier", 42), draws(t, s, "run-1", "gir", 42))
	assert.NotEqual(t, draws(t, s, "run-1", "gir", 42), draws(t, s, "run-2", "gir", 42))
}

func TestSeededStreamHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSeeded().SeededStream(ctx, "classifier", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
