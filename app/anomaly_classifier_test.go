package app

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pillartwo/domain/core"
	"pillartwo/domain/entity"
	"pillartwo/domain/rules"
	"pillartwo/internal/testkit"
)

func newTestClassifier() *AnomalyClassifier {
	kit := testkit.NewTestKit()
	return NewAnomalyClassifier(kit.Rules, kit.Logger)
}

func TestClassifyBulk_Scripted(t *testing.T) {
	c := newTestClassifier()
	runID := core.NewRunID()

	t.Run("low ETR without statistical flag", func(t *testing.T) {
		src := testkit.NewScriptedSource(0.5, 0.0)
		ann := c.ClassifyBulk(testkit.RosterEntity(testkit.LuxembourgID), src, runID)

		assert.True(t, ann.IsAnomaly)
		require.Len(t, ann.Anomalies, 1)
		assert.Equal(t, entity.KindBusinessRule, ann.Anomalies[0].Kind)
		assert.Equal(t, entity.SeverityHigh, ann.Anomalies[0].Severity)
		assert.Equal(t, "ETR (12.40%) below 15%", ann.Anomalies[0].Description)
		assert.Equal(t, 1, ann.AnomalyCount)
		assert.Equal(t, []string{RecommendReviewPlanning, RecommendAnalyzeDeductions}, ann.Recommendations)
		assert.Equal(t, 0.5, ann.AnomalyScore)
		assert.Equal(t, entity.ModeBulk, ann.Mode)
		assert.Equal(t, runID, ann.RunID)
		assert.Equal(t, 2, src.Drawn())
	})

	t.Run("all three records", func(t *testing.T) {
		src := testkit.NewScriptedSource(0.1, 0.0, 0.5, 0.5)
		ann := c.ClassifyBulk(testkit.RosterEntity(testkit.CaymanID), src, runID)

		require.Len(t, ann.Anomalies, 3)
		assert.Equal(t, "ETR (0.50%) below 15%", ann.Anomalies[0].Description)
		assert.Equal(t, entity.FeatureTopUpTaxRatio, ann.Anomalies[1].Feature)
		assert.Equal(t, entity.SeverityMedium, ann.Anomalies[1].Severity)
		assert.Equal(t, "Top-Up Tax (14.50%) is high", ann.Anomalies[1].Description)

		stat := ann.Anomalies[2]
		assert.Equal(t, entity.KindStatistical, stat.Kind)
		assert.Equal(t, entity.FeatureGloBEIncome, stat.Feature)
		assert.InDelta(t, 3.5, stat.ZScore, 1e-9)
		assert.Equal(t, entity.SeverityHigh, stat.Severity)
		assert.Equal(t, "GloBEIncome (68,500,000) unusual (z-score: 3.50)", stat.Description)

		assert.Equal(t, []string{
			RecommendReviewPlanning,
			RecommendAnalyzeDeductions,
			RecommendIncreaseSubstance,
		}, ann.Recommendations)
		assert.InDelta(t, 0.75, ann.AnomalyScore, 1e-9)
		assert.Zero(t, src.Remaining())
	})

	t.Run("high ETR noise flag", func(t *testing.T) {
		src := testkit.NewScriptedSource(0.2, 0.9, 0.2)
		ann := c.ClassifyBulk(testkit.RosterEntity(testkit.FranceID), src, runID)

		assert.True(t, ann.IsAnomaly)
		assert.Empty(t, ann.Anomalies)
		assert.NotNil(t, ann.Anomalies)
		assert.Empty(t, ann.Recommendations)
		assert.InDelta(t, 0.6, ann.AnomalyScore, 1e-9)
	})

	t.Run("high ETR coin at the boundary does not fire", func(t *testing.T) {
		src := testkit.NewScriptedSource(0.3, 0.5)
		ann := c.ClassifyBulk(testkit.RosterEntity(testkit.FranceID), src, runID)

		assert.False(t, ann.IsAnomaly)
		assert.InDelta(t, 0.15, ann.AnomalyScore, 1e-9)
		assert.Equal(t, 2, src.Drawn())
	})

	t.Run("ETR at the noise floor skips the coin", func(t *testing.T) {
		src := testkit.NewScriptedSource(0.9)
		ann := c.ClassifyBulk(testkit.RosterEntity(testkit.UKID), src, runID)

		assert.False(t, ann.IsAnomaly)
		assert.InDelta(t, 0.27, ann.AnomalyScore, 1e-9)
		assert.Equal(t, 1, src.Drawn())
	})

	t.Run("last feature and medium severity", func(t *testing.T) {
		src := testkit.NewScriptedSource(0.0, 0.99, 0.2, 0.0)
		ann := c.ClassifyBulk(testkit.RosterEntity(testkit.LuxembourgID), src, runID)

		require.Len(t, ann.Anomalies, 2)
		stat := ann.Anomalies[1]
		assert.Equal(t, entity.FeatureTotalTaxes, stat.Feature)
		assert.Equal(t, 13200000.0, stat.Value)
		assert.InDelta(t, 2.9, stat.ZScore, 1e-9)
		assert.Equal(t, entity.SeverityMedium, stat.Severity)
	})
}

func TestClassifyBulk_Seeded(t *testing.T) {
	c := newTestClassifier()
	runID := core.NewRunID()
	roster := testkit.NewTestKit().Store().All()

	first := make([]entity.Annotation, len(roster))
	second := make([]entity.Annotation, len(roster))
	r1 := rand.New(rand.NewSource(testkit.FixedSeed))
	r2 := rand.New(rand.NewSource(testkit.FixedSeed))
	for i, e := range roster {
		first[i] = c.ClassifyBulk(e, r1, runID)
		second[i] = c.ClassifyBulk(e, r2, runID)
	}
	assert.Equal(t, first, second)

	for i, e := range roster {
		ann := first[i]
		if e.JurisdictionalETR < rules.DefaultConfig().MinimumRate {
			assert.True(t, ann.IsAnomaly, "entity %d", e.ID)
		}
		if ann.IsAnomaly {
			assert.GreaterOrEqual(t, ann.AnomalyScore, 0.5)
			assert.Less(t, ann.AnomalyScore, 1.0)
		} else {
			assert.GreaterOrEqual(t, ann.AnomalyScore, 0.0)
			assert.Less(t, ann.AnomalyScore, 0.3)
			assert.Empty(t, ann.Anomalies)
		}
		assert.Equal(t, len(ann.Anomalies), ann.AnomalyCount)
	}
}

func TestAnnotateStore(t *testing.T) {
	c := newTestClassifier()
	store := testkit.NewTestKit().Store()
	runID := core.NewRunID()

	n := c.AnnotateStore(store, rand.New(rand.NewSource(testkit.FixedSeed)), runID)
	assert.Equal(t, 30, n)

	for _, e := range store.All() {
		require.True(t, e.Annotated(), "entity %d", e.ID)
		assert.Equal(t, runID, e.Annotation.RunID)
	}
	assert.GreaterOrEqual(t, len(store.Anomalous()), 9)

	assert.Zero(t, c.AnnotateStore(store, rand.New(rand.NewSource(1)), core.NewRunID()))
	for _, e := range store.All() {
		assert.Equal(t, runID, e.Annotation.RunID)
	}
}

func TestAnnotateStore_Concurrent(t *testing.T) {
	c := newTestClassifier()
	store := testkit.NewTestKit().Store()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			n := c.AnnotateStore(store, rand.New(rand.NewSource(seed)), core.NewRunID())
			mu.Lock()
			total += n
			mu.Unlock()
		}(testkit.FixedSeed + int64(i))
	}
	wg.Wait()
	assert.Equal(t, 30, total)
}

func TestAnnotateStore_DrawsFromCallerSource(t *testing.T) {
	c := newTestClassifier()
	kit := testkit.NewTestKit()
	store := kit.StoreOf(testkit.RosterEntity(testkit.UKID))
	src := testkit.NewScriptedSource(0.9)

	require.Equal(t, 1, c.AnnotateStore(store, src, core.NewRunID()))
	assert.Equal(t, 0, src.Remaining())

	uk, ok := store.ByID(testkit.UKID)
	require.True(t, ok)
	assert.False(t, uk.Annotation.IsAnomaly)
	assert.InDelta(t, 0.27, uk.Annotation.AnomalyScore, 1e-12)
}

func TestClassifyOnDemand(t *testing.T) {
	c := newTestClassifier()

	t.Run("fully annotated batch is returned as is", func(t *testing.T) {
		store := testkit.NewTestKit().Store()
		c.AnnotateStore(store, rand.New(rand.NewSource(testkit.FixedSeed)), core.NewRunID())
		batch := store.All()

		out := c.ClassifyOnDemand(batch)
		require.Len(t, out, len(batch))
		assert.Same(t, &batch[0], &out[0])
	})

	t.Run("business rules only", func(t *testing.T) {
		batch := []entity.Entity{
			testkit.RosterEntity(testkit.CaymanID),
			testkit.RosterEntity(testkit.UKID),
			testkit.RosterEntity(testkit.JerseyID),
		}
		out := c.ClassifyOnDemand(batch)
		require.Len(t, out, 3)

		cayman := out[0].Annotation
		require.NotNil(t, cayman)
		assert.True(t, cayman.IsAnomaly)
		assert.Equal(t, 0.7, cayman.AnomalyScore)
		assert.Equal(t, 2, cayman.AnomalyCount)
		assert.Equal(t, []string{RecommendReviewPlanning, RecommendAnalyzeDeductions}, cayman.Recommendations)
		assert.Equal(t, entity.ModeOnDemand, cayman.Mode)

		uk := out[1].Annotation
		require.NotNil(t, uk)
		assert.False(t, uk.IsAnomaly)
		assert.Equal(t, 0.2, uk.AnomalyScore)
		assert.Empty(t, uk.Recommendations)

		jersey := out[2].Annotation
		require.NotNil(t, jersey)
		require.Len(t, jersey.Anomalies, 1)
		assert.Equal(t, entity.FeatureJurisdictionalETR, jersey.Anomalies[0].Feature)
		assert.Equal(t, []string{RecommendReviewPlanning}, jersey.Recommendations)

		for _, e := range batch {
			assert.False(t, e.Annotated(), "input entity %d was mutated", e.ID)
		}
	})

	t.Run("mixed batch is recomputed in full", func(t *testing.T) {
		annotated := testkit.RosterEntity(testkit.FranceID)
		annotated.Annotation = &entity.Annotation{IsAnomaly: true, AnomalyScore: 0.9, Mode: entity.ModeBulk}
		batch := []entity.Entity{annotated, testkit.RosterEntity(testkit.LuxembourgID)}

		out := c.ClassifyOnDemand(batch)
		assert.False(t, out[0].Annotation.IsAnomaly)
		assert.Equal(t, 0.2, out[0].Annotation.AnomalyScore)
		assert.Equal(t, entity.ModeOnDemand, out[0].Annotation.Mode)
		assert.True(t, out[1].Annotation.IsAnomaly)
		assert.Equal(t, 0.9, batch[0].Annotation.AnomalyScore)
	})

	t.Run("second pass is a no-op", func(t *testing.T) {
		once := c.ClassifyOnDemand([]entity.Entity{testkit.RosterEntity(testkit.BermudaID)})
		twice := c.ClassifyOnDemand(once)
		assert.Equal(t, once, twice)
	})

	t.Run("zero GloBE income has no ratio", func(t *testing.T) {
		e := entity.Entity{ID: 99, Jurisdiction: "Nowhere", JurisdictionalETR: 0.2, TopUpTax: 500}
		out := c.ClassifyOnDemand([]entity.Entity{e})
		assert.False(t, out[0].Annotation.IsAnomaly)
	})

	t.Run("empty batch", func(t *testing.T) {
		assert.Empty(t, c.ClassifyOnDemand(nil))
	})
}

func TestClassifyBulk_ZeroGloBEIncome(t *testing.T) {
	c := newTestClassifier()
	e := entity.Entity{ID: 99, JurisdictionalETR: 0.01, TopUpTax: 100}
	src := testkit.NewScriptedSource(0.9, 0.0)

	ann := c.ClassifyBulk(e, src, core.NewRunID())
	assert.True(t, ann.IsAnomaly)
	assert.Len(t, ann.Anomalies, 1)
	assert.Equal(t, []string{RecommendReviewPlanning, RecommendAnalyzeDeductions}, ann.Recommendations)
}
