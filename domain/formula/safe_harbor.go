package formula

import (
	"math"

	"pillartwo/domain/entity"
	"pillartwo/domain/rules"
)

// Safe-harbor reasons, in evaluation order.
const (
	ReasonDeMinimis      = "De Minimis Test"
	ReasonETR            = "ETR Test"
	ReasonRoutineProfits = "Routine Profits Test"
	ReasonNotQualified   = "does not qualify"
)

// SafeHarborInputs are the entity figures the safe-harbor tests read.
type SafeHarborInputs struct {
	GloBEIncome float64
	ETR         float64
	SBIE        float64
}

// InputsFrom extracts safe-harbor inputs from an entity's reported figures.
func InputsFrom(e entity.Entity) SafeHarborInputs {
	return SafeHarborInputs{
		GloBEIncome: e.GloBEIncome,
		ETR:         e.JurisdictionalETR,
		SBIE:        e.SubstanceBasedIncomeExclusion,
	}
}

// DeMinimisTest compares proxy income and proxy profit with the thresholds.
type DeMinimisTest struct {
	Passed          bool    `json:"passed"`
	Income          float64 `json:"income"`
	Profit          float64 `json:"profit"`
	IncomeThreshold float64 `json:"income_threshold"`
	ProfitThreshold float64 `json:"profit_threshold"`
}

// ETRTest compares the ETR with the year's simplified-ETR minimum.
type ETRTest struct {
	Passed    bool    `json:"passed"`
	ETR       float64 `json:"etr"`
	Threshold float64 `json:"threshold"`
}

// RoutineProfitsTest compares proxy profit with the exclusion.
type RoutineProfitsTest struct {
	Passed bool    `json:"passed"`
	Profit float64 `json:"profit"`
	SBIE   float64 `json:"sbie"`
}

// SafeHarborResult is the outcome of the three transitional tests.
type SafeHarborResult struct {
	Year           string             `json:"year"`
	Applies        bool               `json:"safe_harbor_applies"`
	Reason         string             `json:"reason"`
	DeMinimis      DeMinimisTest      `json:"de_minimis_test"`
	ETR            ETRTest            `json:"etr_test"`
	RoutineProfits RoutineProfitsTest `json:"routine_profits_test"`
}

// EvaluateSafeHarbor runs the De Minimis, Simplified ETR and Routine Profits
// tests. GloBE income stands in for revenue and GloBE income * ETR for
// profit, since entities carry no separate revenue figure.
func EvaluateSafeHarbor(in SafeHarborInputs, year string, rc rules.Config) SafeHarborResult {
	cfg := rc.SafeHarbor
	if year == "" {
		year = cfg.DefaultYear
	}
	income := in.GloBEIncome
	profit := in.GloBEIncome * in.ETR

	res := SafeHarborResult{
		Year: year,
		DeMinimis: DeMinimisTest{
			Passed:          income < cfg.DeMinimisRevenue && math.Abs(profit) < cfg.DeMinimisProfit,
			Income:          income,
			Profit:          profit,
			IncomeThreshold: cfg.DeMinimisRevenue,
			ProfitThreshold: cfg.DeMinimisProfit,
		},
		ETR: ETRTest{
			ETR:       in.ETR,
			Threshold: rc.SafeHarborETRFor(year),
		},
		RoutineProfits: RoutineProfitsTest{
			Passed: profit <= in.SBIE || profit <= 0,
			Profit: profit,
			SBIE:   in.SBIE,
		},
	}
	res.ETR.Passed = in.ETR >= res.ETR.Threshold

	switch {
	case res.DeMinimis.Passed:
		res.Reason = ReasonDeMinimis
	case res.ETR.Passed:
		res.Reason = ReasonETR
	case res.RoutineProfits.Passed:
		res.Reason = ReasonRoutineProfits
	default:
		res.Reason = ReasonNotQualified
	}
	res.Applies = res.DeMinimis.Passed || res.ETR.Passed || res.RoutineProfits.Passed
	return res
}
