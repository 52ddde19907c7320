package testkit

import (
	"fmt"
	"math/rand"
	"sync"

	"pillartwo/adapters/memory"
	"pillartwo/adapters/rng"
	"pillartwo/domain/entity"
	"pillartwo/domain/rules"
	"pillartwo/internal"
	"pillartwo/ports"
)

// FixedSeed is the seed every randomized test uses.
const FixedSeed int64 = 42

// FiscalYear is the roster year used in tests.
const FiscalYear = "2024"

// TestKit provides testing utilities and fixtures
type TestKit struct {
	Rules  rules.Config
	Logger *internal.Logger
}

// NewTestKit creates a kit with the built-in rules and a quiet logger.
func NewTestKit() *TestKit {
	return &TestKit{
		Rules:  rules.DefaultConfig(),
		Logger: internal.NewLogger(internal.LogLevelError),
	}
}

// Store returns a fresh, unannotated store over the demonstration roster.
func (t *TestKit) Store() *memory.Store {
	s, err := memory.NewStore(memory.Roster(FiscalYear), t.Rules, t.Logger)
	if err != nil {
		panic(fmt.Sprintf("testkit: roster store: %v", err))
	}
	return s
}

// StoreOf returns a store over the given entities.
func (t *TestKit) StoreOf(entities ...entity.Entity) *memory.Store {
	s, err := memory.NewStore(entities, t.Rules, t.Logger)
	if err != nil {
		panic(fmt.Sprintf("testkit: store: %v", err))
	}
	return s
}

// RNGAdapter returns the seeded RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewSeeded()
}

// Rand returns a source seeded with FixedSeed.
func (t *TestKit) Rand() *rand.Rand {
	return rand.New(rand.NewSource(FixedSeed))
}

// RosterEntity returns one roster entity by id.
func RosterEntity(id int) entity.Entity {
	for _, e := range memory.Roster(FiscalYear) {
		if e.ID == id {
			return e
		}
	}
	panic(fmt.Sprintf("testkit: no roster entity %d", id))
}

// Roster ids used across tests.
const (
	LuxembourgID = 3
	IrelandID    = 4
	FranceID     = 9
	BermudaID    = 22
	CaymanID     = 23
	JerseyID     = 26
	UKID         = 1
)

// ScriptedSource replays fixed draws so tests can steer every random
// branch. It panics when the script runs out.
type ScriptedSource struct {
	mu     sync.Mutex
	values []float64
	next   int
}

var _ ports.RandomSource = (*ScriptedSource)(nil)

// NewScriptedSource returns a source that yields values in order.
func NewScriptedSource(values ...float64) *ScriptedSource {
	return &ScriptedSource{values: values}
}

// Float64 returns the next scripted value.
func (s *ScriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.values) {
		panic(fmt.Sprintf("testkit: scripted source exhausted after %d draws", len(s.values)))
	}
	v := s.values[s.next]
	s.next++
	return v
}

// Drawn reports how many values have been consumed.
func (s *ScriptedSource) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Remaining reports how many values are left.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values) - s.next
}
