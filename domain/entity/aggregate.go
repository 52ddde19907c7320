package entity

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// JurisdictionAggregate is a per-jurisdiction rollup, recomputed on demand.
type JurisdictionAggregate struct {
	Jurisdiction      string  `json:"jurisdiction"`
	Entities          int     `json:"entities"`
	TotalIncome       float64 `json:"total_income"`
	TotalTopUpTax     float64 `json:"total_top_up_tax"`
	TotalTaxesPayable float64 `json:"total_taxes_payable"`
	// AverageETR is the simple mean over member entities, not income-weighted.
	AverageETR float64 `json:"avg_etr"`
}

// SummaryStatistics are the headline figures over a set of entities.
type SummaryStatistics struct {
	TotalEntities      int     `json:"total_entities"`
	TotalGloBEIncome   float64 `json:"total_globe_income"`
	TotalTopUpTax      float64 `json:"total_top_up_tax"`
	EntitiesBelowETR   int     `json:"entities_below_etr"`
	AverageETR         float64 `json:"avg_etr"`
	SafeHarborEligible int     `json:"safe_harbor_eligible"`
	AnomaliesDetected  int     `json:"anomalies_detected"`
	IncomeWeightedETR  float64 `json:"income_weighted_etr"`
}

// Aggregate groups entities by jurisdiction in order of first appearance.
func Aggregate(entities []Entity) []JurisdictionAggregate {
	var order []string
	etrs := make(map[string][]float64)
	rollups := make(map[string]*JurisdictionAggregate)

	for _, e := range entities {
		agg, ok := rollups[e.Jurisdiction]
		if !ok {
			agg = &JurisdictionAggregate{Jurisdiction: e.Jurisdiction}
			rollups[e.Jurisdiction] = agg
			order = append(order, e.Jurisdiction)
		}
		agg.Entities++
		agg.TotalIncome += e.GloBEIncome
		agg.TotalTopUpTax += e.TopUpTax
		agg.TotalTaxesPayable += e.TotalTaxesPayable
		etrs[e.Jurisdiction] = append(etrs[e.Jurisdiction], e.JurisdictionalETR)
	}

	out := make([]JurisdictionAggregate, 0, len(order))
	for _, name := range order {
		agg := rollups[name]
		agg.AverageETR = mean(etrs[name])
		out = append(out, *agg)
	}
	return out
}

// Summarize computes summary statistics; minimumRate decides the
// below-ETR count.
func Summarize(entities []Entity, minimumRate float64) SummaryStatistics {
	summary := SummaryStatistics{TotalEntities: len(entities)}
	if len(entities) == 0 {
		return summary
	}

	incomes := make([]float64, len(entities))
	topUps := make([]float64, len(entities))
	etrs := make([]float64, len(entities))
	for i, e := range entities {
		incomes[i] = e.GloBEIncome
		topUps[i] = e.TopUpTax
		etrs[i] = e.JurisdictionalETR
		if e.JurisdictionalETR < minimumRate {
			summary.EntitiesBelowETR++
		}
		if e.SafeHarbor {
			summary.SafeHarborEligible++
		}
		if e.IsAnomaly() {
			summary.AnomaliesDetected++
		}
	}

	summary.TotalGloBEIncome = floats.Sum(incomes)
	summary.TotalTopUpTax = floats.Sum(topUps)
	summary.AverageETR = mean(etrs)
	summary.IncomeWeightedETR = weightedETR(etrs, incomes)
	return summary
}

func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// weightedETR weights each ETR by its entity's GloBE income. Entities with
// non-positive income carry no weight.
func weightedETR(etrs, incomes []float64) float64 {
	weights := make([]float64, len(incomes))
	for i, income := range incomes {
		if income > 0 {
			weights[i] = income
		}
	}
	if floats.Sum(weights) == 0 {
		return 0
	}
	return stat.Mean(etrs, weights)
}
