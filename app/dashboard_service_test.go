package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pillartwo/domain/core"
	"pillartwo/domain/dashboard"
	"pillartwo/domain/entity"
	"pillartwo/domain/formula"
	"pillartwo/internal/profiling"
	"pillartwo/internal/testkit"
)

func newTestDashboard(t *testing.T) *DashboardService {
	t.Helper()
	kit := testkit.NewTestKit()
	svc := NewDashboardService(kit.Store(), NewAnomalyClassifier(kit.Rules, kit.Logger), kit.RNGAdapter(), kit.Rules, testkit.FixedSeed, kit.Logger)
	_, err := svc.Initialize(context.Background())
	require.NoError(t, err)
	return svc
}

func TestDashboardService_Initialize(t *testing.T) {
	svc := newTestDashboard(t)

	state := svc.State()
	require.Len(t, state.Entities, 30)
	for _, e := range state.Entities {
		require.True(t, e.Annotated())
		assert.Equal(t, entity.ModeBulk, e.Annotation.Mode)
	}

	first := svc.runID
	again, err := svc.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, again)

	t.Run("cancelled context", func(t *testing.T) {
		kit := testkit.NewTestKit()
		fresh := NewDashboardService(kit.Store(), NewAnomalyClassifier(kit.Rules, kit.Logger), kit.RNGAdapter(), kit.Rules, testkit.FixedSeed, kit.Logger)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := fresh.Initialize(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDashboardService_ApplyFilters(t *testing.T) {
	svc := newTestDashboard(t)

	tests := []struct {
		name    string
		filters dashboard.Filters
		count   int
	}{
		{"defaults", dashboard.Filters{}, 30},
		{"apac", dashboard.Filters{Region: "apac"}, 9},
		{"apac below", dashboard.Filters{Region: "apac", ETR: dashboard.BandBelow}, 3},
		{"below", dashboard.Filters{ETR: dashboard.BandBelow}, 9},
		{"above", dashboard.Filters{ETR: dashboard.BandAbove}, 21},
		{"matching year", dashboard.Filters{Year: testkit.FiscalYear}, 30},
		{"other year", dashboard.Filters{Year: "2023"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := svc.ApplyFilters(tt.filters)
			require.NoError(t, err)
			assert.Len(t, state.Entities, tt.count)
			for _, e := range state.Entities {
				assert.True(t, e.Annotated())
			}
		})
	}

	t.Run("unknown region", func(t *testing.T) {
		_, err := svc.ApplyFilters(dashboard.Filters{Region: "antarctica"})
		assert.ErrorIs(t, err, core.ErrUnknownRegion)
	})

	t.Run("bad band", func(t *testing.T) {
		_, err := svc.ApplyFilters(dashboard.Filters{ETR: "sideways"})
		assert.ErrorIs(t, err, core.ErrInvalidBand)
	})
}

func TestDashboardService_WorkingSetOnDemand(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := NewDashboardService(kit.Store(), NewAnomalyClassifier(kit.Rules, kit.Logger), kit.RNGAdapter(), kit.Rules, testkit.FixedSeed, kit.Logger)

	state, err := svc.ApplyFilters(dashboard.Filters{Region: "americas"})
	require.NoError(t, err)
	require.Len(t, state.Entities, 8)
	for _, e := range state.Entities {
		require.True(t, e.Annotated())
		assert.Equal(t, entity.ModeOnDemand, e.Annotation.Mode)
	}
}

func TestDashboardService_View(t *testing.T) {
	svc := newTestDashboard(t)
	view, err := svc.View(context.Background())
	require.NoError(t, err)

	t.Run("metrics", func(t *testing.T) {
		assert.Equal(t, 30, view.Metrics.TotalEntities)
		assert.Equal(t, 9, view.Metrics.EntitiesBelowETR)
		assert.GreaterOrEqual(t, view.Metrics.AnomaliesDetected, 9)
		assert.Equal(t, 0.15, view.MinimumRate)
		assert.NotEmpty(t, view.RunID)
	})

	t.Run("top entities", func(t *testing.T) {
		require.Len(t, view.TopEntities, 20)
		assert.Equal(t, 18, view.TopEntities[0].ID)
		assert.Equal(t, 1, view.TopEntities[1].ID)
	})

	t.Run("jurisdiction ETRs", func(t *testing.T) {
		require.Len(t, view.Jurisdiction, 10)
		assert.Equal(t, "United States", view.Jurisdiction[0].Jurisdiction)
		assert.Equal(t, 0.26, view.Jurisdiction[0].ETR)
		assert.Equal(t, "Cayman Islands", view.Jurisdiction[9].Jurisdiction)
		assert.True(t, view.Jurisdiction[9].BelowMinimum)
	})

	t.Run("gir", func(t *testing.T) {
		require.Len(t, view.GIR, 23)
		byName := make(map[string]dashboard.GIRRow)
		for _, row := range view.GIR {
			byName[row.Jurisdiction] = row
			assert.Contains(t, []dashboard.Activity{dashboard.ActivityLow, dashboard.ActivityMedium, dashboard.ActivityHigh}, row.EconomicActivity)
		}
		assert.Equal(t, "United Kingdom", view.GIR[0].Jurisdiction)
		assert.Equal(t, dashboard.StatusEligible, byName["United Kingdom"].SafeHarborStatus)
		assert.Equal(t, dashboard.StatusNotEligible, byName["Luxembourg"].SafeHarborStatus)
		assert.Equal(t, 3, byName["Switzerland"].Entities)
	})

	t.Run("top-up analysis", func(t *testing.T) {
		require.Len(t, view.TopUp, 8)
		assert.Equal(t, testkit.CaymanID, view.TopUp[0].EntityID)
		assert.InDelta(t, 0.145, view.TopUp[0].ETRGap, 1e-12)
		assert.Equal(t, testkit.BermudaID, view.TopUp[1].EntityID)
		for _, row := range view.TopUp {
			assert.NotEqual(t, 16, row.EntityID)
		}
	})

	t.Run("anomaly breakdown", func(t *testing.T) {
		counts := make(map[string]int)
		for _, fc := range view.Breakdown {
			counts[fc.Feature] = fc.Count
		}
		assert.Equal(t, 9, counts[entity.FeatureJurisdictionalETR])
		assert.Equal(t, 3, counts[entity.FeatureTopUpTaxRatio])
		for i := 1; i < len(view.Breakdown); i++ {
			assert.GreaterOrEqual(t, view.Breakdown[i-1].Count, view.Breakdown[i].Count)
		}
	})

	t.Run("heatmap", func(t *testing.T) {
		require.Len(t, view.Heatmap, 23)
		assert.Equal(t, "americas", view.Heatmap[0].Region)
		assert.Equal(t, "United States", view.Heatmap[0].Jurisdiction)
		assert.InDelta(t, 0.25, view.Heatmap[0].AverageETR, 1e-12)
		for _, cell := range view.Heatmap {
			if cell.Jurisdiction == "Switzerland" {
				assert.Equal(t, "emea", cell.Region)
				assert.InDelta(t, 0.52/3, cell.AverageETR, 1e-12)
			}
		}
	})
}

func TestDashboardService_ViewFollowsFilters(t *testing.T) {
	svc := newTestDashboard(t)
	_, err := svc.ApplyFilters(dashboard.Filters{ETR: dashboard.BandAbove})
	require.NoError(t, err)

	view, err := svc.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21, view.Metrics.TotalEntities)
	assert.Zero(t, view.Metrics.EntitiesBelowETR)
	assert.Empty(t, view.TopUp)
	assert.Equal(t, dashboard.BandAbove, view.Filters.ETR)
}

func TestDashboardService_ViewForLeavesStateAlone(t *testing.T) {
	svc := newTestDashboard(t)

	view, err := svc.ViewFor(context.Background(), dashboard.Filters{Region: "apac", ETR: dashboard.BandBelow})
	require.NoError(t, err)
	assert.Equal(t, "apac", view.Filters.Region)
	assert.Equal(t, 3, view.Metrics.TotalEntities)
	assert.Equal(t, svc.runID, view.RunID)

	state := svc.State()
	assert.Equal(t, "all", state.Filters.Region)
	assert.Len(t, state.Entities, 30)

	_, err = svc.ViewFor(context.Background(), dashboard.Filters{Region: "antarctica"})
	assert.ErrorIs(t, err, core.ErrUnknownRegion)
	_, err = svc.ViewFor(context.Background(), dashboard.Filters{ETR: "sideways"})
	assert.ErrorIs(t, err, core.ErrInvalidBand)
}

func TestDashboardService_ViewForConcurrent(t *testing.T) {
	svc := newTestDashboard(t)
	want := map[string]int{"emea": 13, "apac": 9}
	regions := []string{"emea", "apac"}

	const callers = 200
	var (
		wg         sync.WaitGroup
		mismatches atomic.Int32
	)
	for i := 0; i < callers; i++ {
		region := regions[i%len(regions)]
		wg.Add(2)
		go func() {
			defer wg.Done()
			v, err := svc.ViewFor(context.Background(), dashboard.Filters{Region: region})
			if err != nil || v.Filters.Region != region || v.Metrics.TotalEntities != want[region] {
				mismatches.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.ApplyFilters(dashboard.Filters{Region: regions[(i+1)%len(regions)]})
		}()
	}
	wg.Wait()
	assert.Zero(t, mismatches.Load())
}

func TestDashboardService_Deterministic(t *testing.T) {
	a, err := newTestDashboard(t).View(context.Background())
	require.NoError(t, err)
	b, err := newTestDashboard(t).View(context.Background())
	require.NoError(t, err)

	for i := range a.GIR {
		assert.Equal(t, a.GIR[i].EconomicActivity, b.GIR[i].EconomicActivity)
	}
	for i := range a.Entities {
		assert.Equal(t, a.Entities[i].Annotation.AnomalyScore, b.Entities[i].Annotation.AnomalyScore)
	}
}

func TestDashboardService_Detail(t *testing.T) {
	svc := newTestDashboard(t)

	t.Run("luxembourg", func(t *testing.T) {
		d, err := svc.Detail(testkit.LuxembourgID)
		require.NoError(t, err)
		assert.Equal(t, "emea", d.Region)
		assert.Equal(t, "below", d.Standing)
		assert.InDelta(t, 17800000, d.Recomputed.SBIE.Total(), 1e-6)
		assert.InDelta(t, 106400000, d.Recomputed.GloBEIncome, 1e-6)
		assert.InDelta(t, -3800000, d.Recomputed.TotalAdjustments, 1e-6)
		assert.InDelta(t, 2303600, d.Recomputed.TopUp.Amount, 1e-6)
		assert.True(t, d.SafeHarbor.Applies)
		assert.Equal(t, formula.ReasonRoutineProfits, d.SafeHarbor.Reason)
	})

	t.Run("ireland sits at the minimum", func(t *testing.T) {
		d, err := svc.Detail(testkit.IrelandID)
		require.NoError(t, err)
		assert.Equal(t, "at", d.Standing)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Detail(999)
		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestDashboardService_ETRProfile(t *testing.T) {
	svc := newTestDashboard(t)
	profile, err := svc.ETRProfile()
	require.NoError(t, err)
	assert.Equal(t, entity.FeatureJurisdictionalETR, profile.Feature)
	assert.Equal(t, 30, profile.Summary.Count)
	assert.Equal(t, 9, profile.BelowThreshold)

	_, err = svc.ApplyFilters(dashboard.Filters{Year: "1999"})
	require.NoError(t, err)
	_, err = svc.ETRProfile()
	assert.ErrorIs(t, err, profiling.ErrNoData)

	t.Run("for filters", func(t *testing.T) {
		apac, err := svc.ETRProfileFor(dashboard.Filters{Region: "apac"})
		require.NoError(t, err)
		assert.Equal(t, 9, apac.Summary.Count)
		assert.Equal(t, 3, apac.BelowThreshold)
		assert.Equal(t, "1999", svc.State().Filters.Year)

		_, err = svc.ETRProfileFor(dashboard.Filters{Region: "antarctica"})
		assert.ErrorIs(t, err, core.ErrUnknownRegion)
	})
}
