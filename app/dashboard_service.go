package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pillartwo/domain/core"
	"pillartwo/domain/dashboard"
	"pillartwo/domain/entity"
	"pillartwo/domain/formula"
	"pillartwo/domain/rules"
	"pillartwo/internal"
	"pillartwo/internal/profiling"
	"pillartwo/ports"
)

// Random stream consumers.
const (
	consumerClassifier = "classifier"
	consumerGIR        = "gir"
)

// View sizes.
const (
	topEntitiesLimit  = 20
	jurisdictionLimit = 10
	topUpLimit        = 8
)

// DashboardState is the mutable application state: the active filters and
// the working set they produced.
type DashboardState struct {
	Filters  dashboard.Filters
	Entities []entity.Entity
}

// DashboardService owns the dashboard state and derives views from it.
type DashboardService struct {
	store      ports.AnnotatingStore
	classifier *AnomalyClassifier
	rng        ports.RNGPort
	rules      rules.Config
	seed       int64
	logger     *internal.Logger

	mu    sync.RWMutex
	state DashboardState
	runID core.RunID
}

// NewDashboardService creates a dashboard service
func NewDashboardService(store ports.AnnotatingStore, classifier *AnomalyClassifier, rng ports.RNGPort, cfg rules.Config, seed int64, logger *internal.Logger) *DashboardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DashboardService{
		store:      store,
		classifier: classifier,
		rng:        rng,
		rules:      cfg,
		seed:       seed,
		logger:     logger,
		state: DashboardState{
			Filters: dashboard.Filters{Region: rules.RegionAll, ETR: dashboard.BandAll},
		},
	}
}

// Initialize runs the bulk classification pass and builds the unfiltered
// working set. Calling it again does not re-annotate.
func (s *DashboardService) Initialize(ctx context.Context) (core.RunID, error) {
	rnd, err := s.rng.Stream(ctx, "", consumerClassifier, s.seed)
	if err != nil {
		return "", fmt.Errorf("classifier stream: %w", err)
	}
	runID := core.NewRunID()
	n := s.classifier.AnnotateStore(s.store, rnd, runID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 || s.runID == "" {
		s.runID = runID
	}
	s.state.Entities = s.workingSet(s.state.Filters)
	return s.runID, nil
}

// ApplyFilters validates f, stores it and rebuilds the working set.
func (s *DashboardService) ApplyFilters(f dashboard.Filters) (DashboardState, error) {
	f, err := s.normalize(f)
	if err != nil {
		return DashboardState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = DashboardState{Filters: f, Entities: s.workingSet(f)}
	s.logger.Debug("filters %+v selected %d entities", f, len(s.state.Entities))
	return s.snapshot(), nil
}

// normalize fills empty filter fields with their defaults and rejects
// unknown bands and regions.
func (s *DashboardService) normalize(f dashboard.Filters) (dashboard.Filters, error) {
	if f.Region == "" {
		f.Region = rules.RegionAll
	}
	if f.ETR == "" {
		f.ETR = dashboard.BandAll
	}
	if _, err := dashboard.ParseETRBand(string(f.ETR)); err != nil {
		return f, err
	}
	if _, ok := s.rules.Regions[f.Region]; !ok && f.Region != rules.RegionAll {
		return f, fmt.Errorf("%w: %q", core.ErrUnknownRegion, f.Region)
	}
	return f, nil
}

// State returns a copy of the current state.
func (s *DashboardService) State() DashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *DashboardService) snapshot() DashboardState {
	return DashboardState{Filters: s.state.Filters, Entities: entity.CloneAll(s.state.Entities)}
}

// workingSet filters the roster and passes the result through on-demand
// classification.
func (s *DashboardService) workingSet(f dashboard.Filters) []entity.Entity {
	selected := s.store.ByRegion(f.Region)
	out := make([]entity.Entity, 0, len(selected))
	for _, e := range selected {
		if f.Year != "" && e.FiscalYear != f.Year {
			continue
		}
		switch f.ETR {
		case dashboard.BandBelow:
			if e.JurisdictionalETR >= s.rules.MinimumRate {
				continue
			}
		case dashboard.BandAbove:
			if e.JurisdictionalETR < s.rules.MinimumRate {
				continue
			}
		}
		out = append(out, e)
	}
	return s.classifier.ClassifyOnDemand(out)
}

// View derives every dashboard figure from the stored working set.
func (s *DashboardService) View(ctx context.Context) (dashboard.View, error) {
	s.mu.RLock()
	state := s.snapshot()
	runID := s.runID
	s.mu.RUnlock()
	return s.derive(ctx, runID, state)
}

// ViewFor derives a view for f without touching the stored state, so
// concurrent callers with different filters never see each other's.
func (s *DashboardService) ViewFor(ctx context.Context, f dashboard.Filters) (dashboard.View, error) {
	f, err := s.normalize(f)
	if err != nil {
		return dashboard.View{}, err
	}
	s.mu.RLock()
	runID := s.runID
	s.mu.RUnlock()
	return s.derive(ctx, runID, DashboardState{Filters: f, Entities: s.workingSet(f)})
}

func (s *DashboardService) derive(ctx context.Context, runID core.RunID, state DashboardState) (dashboard.View, error) {
	gir, err := s.gir(ctx, state.Entities)
	if err != nil {
		return dashboard.View{}, err
	}

	return dashboard.View{
		Filters:      state.Filters,
		RunID:        runID,
		GeneratedAt:  core.Now(),
		MinimumRate:  s.rules.MinimumRate,
		Metrics:      entity.Summarize(state.Entities, s.rules.MinimumRate),
		Entities:     state.Entities,
		TopEntities:  topByIncome(state.Entities, topEntitiesLimit),
		Jurisdiction: s.jurisdictionETRs(state.Entities),
		GIR:          gir,
		TopUp:        s.topUpAnalysis(state.Entities),
		Breakdown:    anomalyBreakdown(state.Entities),
		Heatmap:      s.heatmap(state.Entities),
	}, nil
}

// Detail recomputes one entity's figures next to its reported ones.
func (s *DashboardService) Detail(id int) (dashboard.EntityDetail, error) {
	e, ok := s.store.ByID(id)
	if !ok {
		return dashboard.EntityDetail{}, fmt.Errorf("%w %d", core.ErrEntityNotFound, id)
	}
	sbie := formula.SBIEBreakdown(e.PayrollCosts, e.TangibleAssets)
	return dashboard.EntityDetail{
		Entity:   e,
		Region:   s.rules.RegionOf(e.Jurisdiction),
		Standing: dashboard.Standing(e.JurisdictionalETR, s.rules.MinimumRate),
		Recomputed: dashboard.Recomputed{
			ETR:              formula.ETR(e.TotalTaxesPayable, e.GloBEIncome),
			SBIE:             sbie,
			TopUp:            formula.TopUpBreakdown(e.JurisdictionalETR, e.GloBEIncome, sbie.Total(), s.rules.MinimumRate),
			GloBEIncome:      formula.GloBEIncome(e.FinancialNetIncome, e.Adjustments),
			TotalAdjustments: formula.TotalAdjustments(e.Adjustments),
		},
		SafeHarbor: formula.EvaluateSafeHarbor(formula.InputsFrom(e), e.FiscalYear, s.rules),
	}, nil
}

// ETRProfile profiles the ETR distribution of the stored working set
// against the minimum rate.
func (s *DashboardService) ETRProfile() (profiling.Profile, error) {
	return s.profile(s.State().Entities)
}

// ETRProfileFor profiles the working set selected by f.
func (s *DashboardService) ETRProfileFor(f dashboard.Filters) (profiling.Profile, error) {
	f, err := s.normalize(f)
	if err != nil {
		return profiling.Profile{}, err
	}
	return s.profile(s.workingSet(f))
}

func (s *DashboardService) profile(entities []entity.Entity) (profiling.Profile, error) {
	etrs := make([]float64, len(entities))
	for i, e := range entities {
		etrs[i] = e.JurisdictionalETR
	}
	return profiling.NewDistributionAnalyzer().AnalyzeDistribution(entity.FeatureJurisdictionalETR, etrs, s.rules.MinimumRate)
}

// gir builds one row per jurisdiction. Activity labels come from a stream
// fixed by the seed, so the same roster always gets the same labels.
func (s *DashboardService) gir(ctx context.Context, entities []entity.Entity) ([]dashboard.GIRRow, error) {
	rnd, err := s.rng.Stream(ctx, "", consumerGIR, s.seed)
	if err != nil {
		return nil, fmt.Errorf("gir stream: %w", err)
	}
	aggregates := entity.Aggregate(entities)
	rows := make([]dashboard.GIRRow, len(aggregates))
	for i, agg := range aggregates {
		status := dashboard.StatusNotEligible
		if agg.AverageETR >= s.rules.MinimumRate {
			status = dashboard.StatusEligible
		}
		rows[i] = dashboard.GIRRow{
			Jurisdiction:      agg.Jurisdiction,
			Entities:          agg.Entities,
			TotalIncome:       agg.TotalIncome,
			TotalTaxesPayable: agg.TotalTaxesPayable,
			AverageETR:        agg.AverageETR,
			EconomicActivity:  s.activity(rnd),
			SafeHarborStatus:  status,
		}
	}
	return rows, nil
}

// activity draws once for Low and, failing that, once more for Medium.
func (s *DashboardService) activity(rnd ports.RandomSource) dashboard.Activity {
	if rnd.Float64() < s.rules.Noise.LowActivityProbability {
		return dashboard.ActivityLow
	}
	if rnd.Float64() < s.rules.Noise.MidActivityProbability {
		return dashboard.ActivityMedium
	}
	return dashboard.ActivityHigh
}

// jurisdictionETRs takes the highest-income entity of each jurisdiction, for
// the ten jurisdictions whose leading entity earns the most.
func (s *DashboardService) jurisdictionETRs(entities []entity.Entity) []dashboard.JurisdictionETR {
	seen := make(map[string]bool)
	var out []dashboard.JurisdictionETR
	for _, e := range topByIncome(entities, len(entities)) {
		if seen[e.Jurisdiction] {
			continue
		}
		seen[e.Jurisdiction] = true
		out = append(out, dashboard.JurisdictionETR{
			Jurisdiction: e.Jurisdiction,
			ETR:          e.JurisdictionalETR,
			BelowMinimum: e.JurisdictionalETR < s.rules.MinimumRate,
		})
		if len(out) == jurisdictionLimit {
			break
		}
	}
	return out
}

func (s *DashboardService) topUpAnalysis(entities []entity.Entity) []dashboard.TopUpRow {
	var rows []dashboard.TopUpRow
	for _, e := range entities {
		if e.TopUpTax <= 0 {
			continue
		}
		gap := s.rules.MinimumRate - e.JurisdictionalETR
		if gap < 0 {
			gap = 0
		}
		rows = append(rows, dashboard.TopUpRow{
			EntityID:     e.ID,
			Name:         e.Name,
			Jurisdiction: e.Jurisdiction,
			ETRGap:       gap,
			TopUpTax:     e.TopUpTax,
			GloBEIncome:  e.GloBEIncome,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TopUpTax > rows[j].TopUpTax })
	if len(rows) > topUpLimit {
		rows = rows[:topUpLimit]
	}
	return rows
}

// heatmap averages ETR per jurisdiction, walking regions in name order and
// jurisdictions in configured order.
func (s *DashboardService) heatmap(entities []entity.Entity) []dashboard.HeatmapCell {
	byJurisdiction := make(map[string][]entity.Entity)
	for _, e := range entities {
		byJurisdiction[e.Jurisdiction] = append(byJurisdiction[e.Jurisdiction], e)
	}
	var cells []dashboard.HeatmapCell
	for _, region := range s.rules.RegionNames() {
		for _, jurisdiction := range s.rules.Regions[region] {
			members := byJurisdiction[jurisdiction]
			if len(members) == 0 {
				continue
			}
			cells = append(cells, dashboard.HeatmapCell{
				Region:       region,
				Jurisdiction: jurisdiction,
				AverageETR:   entity.Summarize(members, s.rules.MinimumRate).AverageETR,
			})
		}
	}
	return cells
}

// anomalyBreakdown counts anomaly records per feature over anomalous
// entities, most frequent first.
func anomalyBreakdown(entities []entity.Entity) []dashboard.FeatureCount {
	counts := make(map[string]int)
	for _, e := range entities {
		if !e.IsAnomaly() {
			continue
		}
		for _, a := range e.Annotation.Anomalies {
			counts[a.Feature]++
		}
	}
	out := make([]dashboard.FeatureCount, 0, len(counts))
	for feature, n := range counts {
		out = append(out, dashboard.FeatureCount{Feature: feature, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

// topByIncome returns up to n entities by GloBE income, highest first. Ties
// keep roster order.
func topByIncome(entities []entity.Entity, n int) []entity.Entity {
	sorted := append([]entity.Entity(nil), entities...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].GloBEIncome > sorted[j].GloBEIncome })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
