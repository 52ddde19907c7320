package memory

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pillartwo/domain/entity"
	"pillartwo/domain/rules"
)

func newRosterStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Roster("2024"), rules.DefaultConfig(), nil)
	require.NoError(t, err)
	return s
}

func ids(entities []entity.Entity) []int {
	out := make([]int, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}

func TestRosterShape(t *testing.T) {
	roster := Roster("2024")
	require.Len(t, roster, 30)

	seen := map[int]bool{}
	for _, e := range roster {
		assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
		assert.Equal(t, "2024", e.FiscalYear)
		assert.Nil(t, e.Annotation)
	}
}

func TestNewStoreRejectsDuplicateIDs(t *testing.T) {
	_, err := NewStore([]entity.Entity{{ID: 1}, {ID: 1}}, rules.DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestByRegion(t *testing.T) {
	s := newRosterStore(t)
	cfg := rules.DefaultConfig()

	apac := s.ByRegion("apac")
	assert.Equal(t, []int{11, 12, 13, 14, 15, 16, 17, 28, 29}, ids(apac))
	for _, e := range apac {
		assert.Contains(t, cfg.Regions["apac"], e.Jurisdiction)
	}

	assert.Len(t, s.ByRegion("emea"), 13)
	assert.Len(t, s.ByRegion("americas"), 8)
	assert.Len(t, s.ByRegion(rules.RegionAll), 30)
	assert.Empty(t, s.ByRegion("antarctica"))
	assert.NotNil(t, s.ByRegion("antarctica"))
}

func TestByID(t *testing.T) {
	s := newRosterStore(t)

	lux, ok := s.ByID(3)
	require.True(t, ok)
	assert.Equal(t, "Luxembourg", lux.Jurisdiction)
	assert.Equal(t, 106400000.0, lux.GloBEIncome)

	_, ok = s.ByID(999)
	assert.False(t, ok)
}

func TestThresholdQueries(t *testing.T) {
	s := newRosterStore(t)

	below := []int{3, 6, 11, 12, 16, 22, 23, 26, 30}
	assert.Equal(t, below, ids(s.BelowETR(0.15)))
	assert.Equal(t, below, ids(s.WithTopUpTax()))

	// strict comparison: Ireland sits at 0.155
	assert.NotContains(t, ids(s.BelowETR(0.155)), 4)
	assert.Contains(t, ids(s.BelowETR(0.1551)), 4)
}

func TestCopyOnRead(t *testing.T) {
	s := newRosterStore(t)

	all := s.All()
	all[0].Name = "mutated"
	all[0].Adjustments[0].Amount = 1

	e, ok := s.ByID(all[0].ID)
	require.True(t, ok)
	assert.Equal(t, "Schroder Investment Management Ltd", e.Name)
	assert.Equal(t, -7000000.0, e.Adjustments[0].Amount)

	e.Jurisdiction = "Nowhere"
	again, _ := s.ByID(e.ID)
	assert.Equal(t, "United Kingdom", again.Jurisdiction)
}

func TestAggregatesAndSummary(t *testing.T) {
	s := newRosterStore(t)

	aggs := s.JurisdictionAggregates()
	require.Len(t, aggs, 23)
	assert.Equal(t, "United Kingdom", aggs[0].Jurisdiction)
	assert.Equal(t, 2, aggs[0].Entities)
	assert.InDelta(t, 0.24, aggs[0].AverageETR, 1e-12)

	sum := s.SummaryStatistics()
	assert.Equal(t, 30, sum.TotalEntities)
	assert.Equal(t, 2446200000.0, sum.TotalGloBEIncome)
	assert.Equal(t, 35066000.0, sum.TotalTopUpTax)
	assert.Equal(t, 9, sum.EntitiesBelowETR)
	assert.Equal(t, 21, sum.SafeHarborEligible)
	assert.Zero(t, sum.AnomaliesDetected)
}

func TestAnnotateOnceIsIdempotent(t *testing.T) {
	s := newRosterStore(t)

	var calls atomic.Int32
	flagLow := func(e entity.Entity) entity.Annotation {
		calls.Add(1)
		return entity.Annotation{IsAnomaly: e.JurisdictionalETR < 0.15}
	}

	assert.Equal(t, 30, s.AnnotateOnce(flagLow))
	assert.Equal(t, 0, s.AnnotateOnce(flagLow))
	assert.Equal(t, int32(30), calls.Load())

	assert.Len(t, s.Anomalous(), 9)
	assert.Equal(t, 9, s.SummaryStatistics().AnomaliesDetected)
}

func TestAnnotateOnceConcurrent(t *testing.T) {
	s := newRosterStore(t)

	var calls atomic.Int32
	var total atomic.Int32
	fn := func(e entity.Entity) entity.Annotation {
		calls.Add(1)
		return entity.Annotation{}
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			total.Add(int32(s.AnnotateOnce(fn)))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(30), calls.Load())
	assert.Equal(t, int32(30), total.Load())
	for _, e := range s.All() {
		assert.True(t, e.Annotated())
	}
}

func TestAnnotateOnceSkipsPreAnnotated(t *testing.T) {
	s, err := NewStore([]entity.Entity{
		{ID: 1, Annotation: &entity.Annotation{IsAnomaly: true}},
		{ID: 2},
	}, rules.DefaultConfig(), nil)
	require.NoError(t, err)

	n := s.AnnotateOnce(func(entity.Entity) entity.Annotation { return entity.Annotation{} })
	assert.Equal(t, 1, n)

	first, _ := s.ByID(1)
	assert.True(t, first.IsAnomaly())
}
