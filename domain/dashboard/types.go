// Package dashboard defines the filter state and the derived view a
// dashboard consumer renders.
package dashboard

import (
	"fmt"

	"pillartwo/domain/core"
	"pillartwo/domain/entity"
	"pillartwo/domain/formula"
)

// ETRBand filters entities relative to the minimum rate.
type ETRBand string

const (
	BandAll   ETRBand = "all"
	BandBelow ETRBand = "below"
	BandAbove ETRBand = "above"
)

// ParseETRBand accepts "", "all", "below" and "above".
func ParseETRBand(s string) (ETRBand, error) {
	switch ETRBand(s) {
	case "", BandAll:
		return BandAll, nil
	case BandBelow, BandAbove:
		return ETRBand(s), nil
	default:
		return "", fmt.Errorf("%w %q", core.ErrInvalidBand, s)
	}
}

// Filters is the active selection.
type Filters struct {
	Year   string  `json:"year"`
	Region string  `json:"region"`
	ETR    ETRBand `json:"etr"`
}

// Activity is the mock economic-activity label of a GIR row.
type Activity string

const (
	ActivityLow    Activity = "Low"
	ActivityMedium Activity = "Medium"
	ActivityHigh   Activity = "High"
)

// Safe-harbor labels of a GIR row.
const (
	StatusEligible    = "Eligible"
	StatusNotEligible = "Not Eligible"
)

// GIRRow is one jurisdiction line of the GloBE information return table.
type GIRRow struct {
	Jurisdiction      string   `json:"jurisdiction"`
	Entities          int      `json:"entities"`
	TotalIncome       float64  `json:"total_income"`
	TotalTaxesPayable float64  `json:"total_taxes_payable"`
	AverageETR        float64  `json:"avg_etr"`
	EconomicActivity  Activity `json:"economic_activity"`
	SafeHarborStatus  string   `json:"safe_harbor_status"`
}

// TopUpRow is one entry of the top-up analysis.
type TopUpRow struct {
	EntityID     int     `json:"entity_id"`
	Name         string  `json:"name"`
	Jurisdiction string  `json:"jurisdiction"`
	ETRGap       float64 `json:"etr_gap"`
	TopUpTax     float64 `json:"top_up_tax"`
	GloBEIncome  float64 `json:"globe_income"`
}

// FeatureCount is the number of anomaly records implicating one feature.
type FeatureCount struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

// HeatmapCell is the mean ETR of one jurisdiction within its region.
type HeatmapCell struct {
	Region       string  `json:"region"`
	Jurisdiction string  `json:"jurisdiction"`
	AverageETR   float64 `json:"avg_etr"`
}

// JurisdictionETR is the ETR of the highest-income entity of a jurisdiction.
type JurisdictionETR struct {
	Jurisdiction string  `json:"jurisdiction"`
	ETR          float64 `json:"etr"`
	BelowMinimum bool    `json:"below_minimum"`
}

// View is everything derived from one filter selection.
type View struct {
	Filters      Filters                  `json:"filters"`
	RunID        core.RunID               `json:"run_id"`
	GeneratedAt  core.Timestamp           `json:"generated_at"`
	MinimumRate  float64                  `json:"minimum_rate"`
	Metrics      entity.SummaryStatistics `json:"metrics"`
	Entities     []entity.Entity          `json:"entities"`
	TopEntities  []entity.Entity          `json:"top_entities"`
	Jurisdiction []JurisdictionETR        `json:"jurisdiction_etrs"`
	GIR          []GIRRow                 `json:"gir"`
	TopUp        []TopUpRow               `json:"top_up_analysis"`
	Breakdown    []FeatureCount           `json:"anomaly_breakdown"`
	Heatmap      []HeatmapCell            `json:"heatmap"`
}

// Recomputed holds the formula results for one entity, taken from its raw
// fields and its own adjustment lines.
type Recomputed struct {
	ETR              float64                `json:"etr"`
	SBIE             formula.SBIEComponents `json:"sbie"`
	TopUp            formula.TopUp          `json:"top_up"`
	GloBEIncome      float64                `json:"globe_income"`
	TotalAdjustments float64                `json:"total_adjustments"`
}

// EntityDetail is the drill-down of one entity.
type EntityDetail struct {
	Entity     entity.Entity            `json:"entity"`
	Region     string                   `json:"region"`
	Standing   string                   `json:"standing"`
	Recomputed Recomputed               `json:"recomputed"`
	SafeHarbor formula.SafeHarborResult `json:"safe_harbor"`
}

// Standing classifies an ETR against the minimum rate for display:
// "above" from one point over the minimum, "at" within that point,
// "below" under it.
func Standing(etr, minimumRate float64) string {
	switch {
	case etr >= minimumRate+0.01:
		return "above"
	case etr >= minimumRate:
		return "at"
	default:
		return "below"
	}
}
