// Package formula implements the Pillar Two calculations as pure functions
// over float64 inputs. Inputs are not range-checked; negative figures
// propagate arithmetically.
package formula

import (
	"math"

	"pillartwo/domain/entity"
)

// SBIE rates: 5% of eligible payroll and 5% of tangible asset carrying value.
const (
	PayrollRate        = 0.05
	TangibleAssetsRate = 0.05
)

// ETR is total taxes payable over GloBE income, or 0 when income is not
// positive.
func ETR(totalTaxesPayable, globeIncome float64) float64 {
	if globeIncome > 0 {
		return totalTaxesPayable / globeIncome
	}
	return 0
}

// SBIEComponents holds the two halves of the substance-based income exclusion.
type SBIEComponents struct {
	Payroll        float64 `json:"payroll_component"`
	TangibleAssets float64 `json:"assets_component"`
}

// Total is the exclusion amount.
func (c SBIEComponents) Total() float64 {
	return c.Payroll + c.TangibleAssets
}

// SBIEBreakdown computes both components of the exclusion.
func SBIEBreakdown(payrollCosts, tangibleAssets float64) SBIEComponents {
	return SBIEComponents{
		Payroll:        payrollCosts * PayrollRate,
		TangibleAssets: tangibleAssets * TangibleAssetsRate,
	}
}

// SBIE = 0.05 * payroll + 0.05 * tangible assets.
func SBIE(payrollCosts, tangibleAssets float64) float64 {
	return SBIEBreakdown(payrollCosts, tangibleAssets).Total()
}

// TopUp is the breakdown of a top-up tax computation.
type TopUp struct {
	Percentage   float64 `json:"top_up_tax_percentage"`
	ExcessProfit float64 `json:"excess_profit"`
	Amount       float64 `json:"amount"`
}

// TopUpBreakdown computes the top-up percentage, the excess profit over the
// exclusion and their product.
func TopUpBreakdown(jurisdictionalETR, globeIncome, sbie, minimumRate float64) TopUp {
	pct := math.Max(0, minimumRate-jurisdictionalETR)
	excess := math.Max(0, globeIncome-sbie)
	return TopUp{
		Percentage:   pct,
		ExcessProfit: excess,
		Amount:       pct * excess,
	}
}

// TopUpTax = max(0, minimumRate - etr) * max(0, income - sbie).
func TopUpTax(jurisdictionalETR, globeIncome, sbie, minimumRate float64) float64 {
	return TopUpBreakdown(jurisdictionalETR, globeIncome, sbie, minimumRate).Amount
}

// GloBEIncome adds signed adjustments to financial net income, in order.
func GloBEIncome(financialNetIncome float64, adjustments []entity.Adjustment) float64 {
	total := financialNetIncome
	for _, adj := range adjustments {
		total += adj.Amount
	}
	return total
}

// TotalAdjustments sums adjustment amounts, in order.
func TotalAdjustments(adjustments []entity.Adjustment) float64 {
	var total float64
	for _, adj := range adjustments {
		total += adj.Amount
	}
	return total
}
