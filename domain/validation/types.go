// Package validation defines the calculation types the validation service
// can re-run and the result it reports.
package validation

import (
	"fmt"
	"strings"

	"pillartwo/domain/core"
	"pillartwo/domain/entity"
	"pillartwo/domain/formula"
)

// CalculationType names one recomputable formula.
type CalculationType string

const (
	CalcETR         CalculationType = "etr"
	CalcSBIE        CalculationType = "sbie"
	CalcTopUp       CalculationType = "topup"
	CalcSafeHarbor  CalculationType = "safeharbor"
	CalcAdjustments CalculationType = "adjustments"
)

// CalculationTypes lists every supported type in display order.
func CalculationTypes() []CalculationType {
	return []CalculationType{CalcETR, CalcSBIE, CalcTopUp, CalcSafeHarbor, CalcAdjustments}
}

// ParseCalculationType is case-insensitive. Unknown names wrap
// core.ErrUnknownCalculation.
func ParseCalculationType(s string) (CalculationType, error) {
	ct := CalculationType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range CalculationTypes() {
		if ct == known {
			return ct, nil
		}
	}
	return ct, fmt.Errorf("%w: %q", core.ErrUnknownCalculation, s)
}

// Messages reported by the validation service.
const (
	ErrUnknownType     = "unknown calculation type"
	ErrETRMismatch     = "ETR calculation does not match reported value"
	ErrSBIEMismatch    = "SBIE calculation does not match reported value"
	ErrTopUpMismatch   = "Top-Up Tax calculation does not match reported value"
	WarnSyntheticBreak = "adjustment breakdown is synthetic and non-authoritative"
)

// Component keys.
const (
	ComponentPayroll      = "payrollComponent"
	ComponentAssets       = "assetsComponent"
	ComponentTopUpPercent = "topUpTaxPercentage"
	ComponentExcessProfit = "excessProfit"
)

// Result is the outcome of recomputing one formula for one entity.
type Result struct {
	Type            CalculationType    `json:"calculation_type"`
	EntityID        int                `json:"entity_id"`
	IsValid         bool               `json:"is_valid"`
	CalculatedValue float64            `json:"calculated_value"`
	ReportedValue   float64            `json:"reported_value"`
	Difference      float64            `json:"difference"`
	Components      map[string]float64 `json:"components,omitempty"`
	Errors          []string           `json:"errors"`
	Warnings        []string           `json:"warnings"`

	SafeHarbor         *formula.SafeHarborResult `json:"safe_harbor,omitempty"`
	FinancialNetIncome float64                   `json:"financial_net_income,omitempty"`
	Adjustments        []entity.Adjustment       `json:"adjustments,omitempty"`
}

// Report is a roster-wide validation run.
type Report struct {
	RunID       core.RunID        `json:"run_id"`
	Rulebook    core.RulebookHash `json:"rulebook"`
	Type        CalculationType   `json:"calculation_type"`
	GeneratedAt core.Timestamp    `json:"generated_at"`
	Valid       int               `json:"valid"`
	Invalid     int               `json:"invalid"`
	Results     []Result          `json:"results"`
}
