// Package entity defines constituent entities, their anomaly annotations and
// the jurisdiction rollups derived from them.
package entity

import (
	"pillartwo/domain/core"
)

// Adjustment is one signed GloBE income adjustment line.
type Adjustment struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// Entity is one constituent entity of the group for one fiscal year.
// Currency values are whole units of the group's base currency.
type Entity struct {
	ID           int    `json:"entity_id"`
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction"`
	FiscalYear   string `json:"fiscal_year,omitempty"`

	GloBEIncome                   float64      `json:"globe_income"`
	JurisdictionalETR             float64      `json:"jurisdictional_etr"`
	TotalTaxesPayable             float64      `json:"total_taxes_payable"`
	SubstanceBasedIncomeExclusion float64      `json:"substance_based_income_exclusion"`
	PayrollCosts                  float64      `json:"payroll_costs"`
	TangibleAssets                float64      `json:"tangible_assets"`
	FinancialNetIncome            float64      `json:"financial_net_income"`
	TopUpTax                      float64      `json:"top_up_tax"`
	Adjustments                   []Adjustment `json:"adjustments"`
	SafeHarbor                    bool         `json:"safe_harbor"`

	// Annotation is nil until a classifier has scored the entity.
	Annotation *Annotation `json:"annotation,omitempty"`
}

// Annotated reports whether the entity carries anomaly metadata.
func (e Entity) Annotated() bool {
	return e.Annotation != nil
}

// IsAnomaly is false for unannotated entities.
func (e Entity) IsAnomaly() bool {
	return e.Annotation != nil && e.Annotation.IsAnomaly
}

// Clone returns a deep copy so callers cannot reach the original's slices.
func (e Entity) Clone() Entity {
	out := e
	if e.Adjustments != nil {
		out.Adjustments = append([]Adjustment(nil), e.Adjustments...)
	}
	if e.Annotation != nil {
		a := e.Annotation.Clone()
		out.Annotation = &a
	}
	return out
}

// CloneAll deep-copies a slice of entities.
func CloneAll(entities []Entity) []Entity {
	out := make([]Entity, len(entities))
	for i, e := range entities {
		out[i] = e.Clone()
	}
	return out
}

// AnomalyKind separates fixed business rules from the mock statistical flags.
type AnomalyKind string

const (
	KindBusinessRule AnomalyKind = "business_rule"
	KindStatistical  AnomalyKind = "statistical"
)

// Severity of an anomaly record.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Feature names used in anomaly records.
const (
	FeatureJurisdictionalETR = "JurisdictionalETR"
	FeatureTopUpTaxRatio     = "TopUpTaxRatio"
	FeatureGloBEIncome       = "GloBEIncome"
	FeatureSBIE              = "SubstanceBasedIncomeExclusion"
	FeatureTotalTaxes        = "TotalTaxesPayable"
)

// AnomalyRecord is one detected issue on an entity.
type AnomalyRecord struct {
	Kind        AnomalyKind `json:"type"`
	Severity    Severity    `json:"severity"`
	Feature     string      `json:"feature"`
	Value       float64     `json:"value"`
	Threshold   float64     `json:"threshold,omitempty"`
	ZScore      float64     `json:"z_score,omitempty"`
	Description string      `json:"description"`
}

// ClassificationMode names the classifier path that produced an annotation.
type ClassificationMode string

const (
	ModeBulk     ClassificationMode = "bulk"
	ModeOnDemand ClassificationMode = "on_demand"
)

// Annotation is the derived anomaly metadata of an entity.
type Annotation struct {
	IsAnomaly       bool               `json:"is_anomaly"`
	AnomalyCount    int                `json:"anomaly_count"`
	Anomalies       []AnomalyRecord    `json:"anomalies"`
	Recommendations []string           `json:"recommendations"`
	AnomalyScore    float64            `json:"anomaly_score"`
	Mode            ClassificationMode `json:"mode"`
	RunID           core.RunID         `json:"run_id,omitempty"`
}

// Clone deep-copies the annotation.
func (a Annotation) Clone() Annotation {
	out := a
	out.Anomalies = append([]AnomalyRecord{}, a.Anomalies...)
	out.Recommendations = append([]string{}, a.Recommendations...)
	return out
}

// NumericFeature returns the raw input named by one of the statistical
// features. Unknown names yield 0.
func (e Entity) NumericFeature(feature string) float64 {
	switch feature {
	case FeatureGloBEIncome:
		return e.GloBEIncome
	case FeatureSBIE:
		return e.SubstanceBasedIncomeExclusion
	case FeatureTotalTaxes:
		return e.TotalTaxesPayable
	case FeatureJurisdictionalETR:
		return e.JurisdictionalETR
	default:
		return 0
	}
}
