package memory

import (
	"pillartwo/domain/entity"
)

// Roster returns the fixed demonstration roster for the given fiscal year.
// Each call builds fresh values.
func Roster(fiscalYear string) []entity.Entity {
	return []entity.Entity{
		{
			ID: 1, Name: "Schroder Investment Management Ltd", Jurisdiction: "United Kingdom", FiscalYear: fiscalYear,
			GloBEIncome: 425000000, JurisdictionalETR: 0.25, TotalTaxesPayable: 106250000,
			SubstanceBasedIncomeExclusion: 58500000, PayrollCosts: 850000000, TangibleAssets: 320000000,
			FinancialNetIncome: 432000000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Tax expense adjustments", Amount: -7000000}},
		},
		{
			ID: 2, Name: "Schroder & Co. Limited", Jurisdiction: "United Kingdom", FiscalYear: fiscalYear,
			GloBEIncome: 67000000, JurisdictionalETR: 0.23, TotalTaxesPayable: 15410000,
			SubstanceBasedIncomeExclusion: 12500000, PayrollCosts: 180000000, TangibleAssets: 70000000,
			FinancialNetIncome: 71000000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Excluded dividends", Amount: -4000000}},
		},
		{
			ID: 3, Name: "Schroder Investment Management (Luxembourg) S.A.", Jurisdiction: "Luxembourg", FiscalYear: fiscalYear,
			GloBEIncome: 106400000, JurisdictionalETR: 0.124, TotalTaxesPayable: 13200000,
			SubstanceBasedIncomeExclusion: 17800000, PayrollCosts: 205000000, TangibleAssets: 151000000,
			FinancialNetIncome: 110200000, TopUpTax: 2800000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Policy disallowed expenses", Amount: -3800000}},
		},
		{
			ID: 4, Name: "Schroder Investment Management (Ireland) Limited", Jurisdiction: "Ireland", FiscalYear: fiscalYear,
			GloBEIncome: 82500000, JurisdictionalETR: 0.155, TotalTaxesPayable: 12790000,
			SubstanceBasedIncomeExclusion: 13400000, PayrollCosts: 198000000, TangibleAssets: 70000000,
			FinancialNetIncome: 86100000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Net tax expense", Amount: -3600000}},
		},
		{
			ID: 5, Name: "Schroder Investment Management (Switzerland) AG", Jurisdiction: "Switzerland", FiscalYear: fiscalYear,
			GloBEIncome: 84500000, JurisdictionalETR: 0.19, TotalTaxesPayable: 16055000,
			SubstanceBasedIncomeExclusion: 16200000, PayrollCosts: 220000000, TangibleAssets: 104000000,
			FinancialNetIncome: 88700000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Excluded equity gains", Amount: -4200000}},
		},
		{
			ID: 6, Name: "Schroder Investment Management Middle East Limited", Jurisdiction: "United Arab Emirates", FiscalYear: fiscalYear,
			GloBEIncome: 42500000, JurisdictionalETR: 0.05, TotalTaxesPayable: 2125000,
			SubstanceBasedIncomeExclusion: 2200000, PayrollCosts: 32000000, TangibleAssets: 12000000,
			FinancialNetIncome: 44300000, TopUpTax: 4250000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Tax-exempt income", Amount: -1800000}},
		},
		{
			ID: 7, Name: "Schroders Capital Management (Switzerland) AG", Jurisdiction: "Switzerland", FiscalYear: fiscalYear,
			GloBEIncome: 38500000, JurisdictionalETR: 0.17, TotalTaxesPayable: 6545000,
			SubstanceBasedIncomeExclusion: 7200000, PayrollCosts: 85000000, TangibleAssets: 59000000,
			FinancialNetIncome: 40100000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Prior period errors", Amount: -1600000}},
		},
		{
			ID: 8, Name: "BlueOrchard Finance AG", Jurisdiction: "Switzerland", FiscalYear: fiscalYear,
			GloBEIncome: 17300000, JurisdictionalETR: 0.16, TotalTaxesPayable: 2768000,
			SubstanceBasedIncomeExclusion: 3100000, PayrollCosts: 42000000, TangibleAssets: 20000000,
			FinancialNetIncome: 18100000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Net tax expense", Amount: -800000}},
		},
		{
			ID: 9, Name: "Schroder AIDA SAS", Jurisdiction: "France", FiscalYear: fiscalYear,
			GloBEIncome: 14800000, JurisdictionalETR: 0.28, TotalTaxesPayable: 4144000,
			SubstanceBasedIncomeExclusion: 2900000, PayrollCosts: 38000000, TangibleAssets: 20000000,
			FinancialNetIncome: 15400000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Tax base differences", Amount: -600000}},
		},
		{
			ID: 10, Name: "Schroder Investment Management GmbH", Jurisdiction: "Germany", FiscalYear: fiscalYear,
			GloBEIncome: 23600000, JurisdictionalETR: 0.29, TotalTaxesPayable: 6844000,
			SubstanceBasedIncomeExclusion: 4100000, PayrollCosts: 52000000, TangibleAssets: 30000000,
			FinancialNetIncome: 24500000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Non-deductible expenses", Amount: -900000}},
		},
		{
			ID: 11, Name: "Schroder Investment Management (Singapore) Ltd", Jurisdiction: "Singapore", FiscalYear: fiscalYear,
			GloBEIncome: 196000000, JurisdictionalETR: 0.13, TotalTaxesPayable: 25480000,
			SubstanceBasedIncomeExclusion: 22000000, PayrollCosts: 350000000, TangibleAssets: 90000000,
			FinancialNetIncome: 202000000, TopUpTax: 3920000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Excluded dividends", Amount: -6000000}},
		},
		{
			ID: 12, Name: "Schroder Investment Management (Hong Kong) Limited", Jurisdiction: "Hong Kong", FiscalYear: fiscalYear,
			GloBEIncome: 154000000, JurisdictionalETR: 0.128, TotalTaxesPayable: 19712000,
			SubstanceBasedIncomeExclusion: 19500000, PayrollCosts: 230000000, TangibleAssets: 160000000,
			FinancialNetIncome: 159000000, TopUpTax: 3388000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Tax concessions", Amount: -5000000}},
		},
		{
			ID: 13, Name: "Schroder Investment Management (Japan) Limited", Jurisdiction: "Japan", FiscalYear: fiscalYear,
			GloBEIncome: 132000000, JurisdictionalETR: 0.31, TotalTaxesPayable: 40920000,
			SubstanceBasedIncomeExclusion: 24500000, PayrollCosts: 310000000, TangibleAssets: 180000000,
			FinancialNetIncome: 136500000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Local GAAP adjustments", Amount: -4500000}},
		},
		{
			ID: 14, Name: "Schroder Investment Management (Australia) Limited", Jurisdiction: "Australia", FiscalYear: fiscalYear,
			GloBEIncome: 123000000, JurisdictionalETR: 0.28, TotalTaxesPayable: 34440000,
			SubstanceBasedIncomeExclusion: 21000000, PayrollCosts: 260000000, TangibleAssets: 160000000,
			FinancialNetIncome: 127800000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Non-taxable income", Amount: -4800000}},
		},
		{
			ID: 15, Name: "Schroders Capital Management (China) Limited", Jurisdiction: "China", FiscalYear: fiscalYear,
			GloBEIncome: 46800000, JurisdictionalETR: 0.22, TotalTaxesPayable: 10296000,
			SubstanceBasedIncomeExclusion: 8500000, PayrollCosts: 120000000, TangibleAssets: 50000000,
			FinancialNetIncome: 48500000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Permanent differences", Amount: -1700000}},
		},
		{
			ID: 16, Name: "SPX Credit Management Pte Ltd", Jurisdiction: "Singapore", FiscalYear: fiscalYear,
			GloBEIncome: 18500000, JurisdictionalETR: 0.14, TotalTaxesPayable: 2590000,
			SubstanceBasedIncomeExclusion: 3400000, PayrollCosts: 48000000, TangibleAssets: 20000000,
			FinancialNetIncome: 19200000, TopUpTax: 185000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Tax incentives", Amount: -700000}},
		},
		{
			ID: 17, Name: "Schroder Investment Management (Taiwan) Limited", Jurisdiction: "Taiwan", FiscalYear: fiscalYear,
			GloBEIncome: 16800000, JurisdictionalETR: 0.19, TotalTaxesPayable: 3192000,
			SubstanceBasedIncomeExclusion: 2900000, PayrollCosts: 42000000, TangibleAssets: 16000000,
			FinancialNetIncome: 17400000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Tax base differences", Amount: -600000}},
		},
		{
			ID: 18, Name: "Schroder Investment Management North America Inc.", Jurisdiction: "United States", FiscalYear: fiscalYear,
			GloBEIncome: 435000000, JurisdictionalETR: 0.26, TotalTaxesPayable: 113100000,
			SubstanceBasedIncomeExclusion: 75000000, PayrollCosts: 920000000, TangibleAssets: 580000000,
			FinancialNetIncome: 442000000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "State tax differences", Amount: -7000000}},
		},
		{
			ID: 19, Name: "Schroder Fund Advisors LLC", Jurisdiction: "United States", FiscalYear: fiscalYear,
			GloBEIncome: 78500000, JurisdictionalETR: 0.25, TotalTaxesPayable: 19625000,
			SubstanceBasedIncomeExclusion: 12800000, PayrollCosts: 180000000, TangibleAssets: 76000000,
			FinancialNetIncome: 80300000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Disallowed expenses", Amount: -1800000}},
		},
		{
			ID: 20, Name: "Schroders Capital Management (US) Inc.", Jurisdiction: "United States", FiscalYear: fiscalYear,
			GloBEIncome: 56400000, JurisdictionalETR: 0.24, TotalTaxesPayable: 13536000,
			SubstanceBasedIncomeExclusion: 9500000, PayrollCosts: 125000000, TangibleAssets: 65000000,
			FinancialNetIncome: 58200000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Temporary differences", Amount: -1800000}},
		},
		{
			ID: 21, Name: "Schroder Investment Management (Canada) Limited", Jurisdiction: "Canada", FiscalYear: fiscalYear,
			GloBEIncome: 42300000, JurisdictionalETR: 0.27, TotalTaxesPayable: 11421000,
			SubstanceBasedIncomeExclusion: 7200000, PayrollCosts: 95000000, TangibleAssets: 49000000,
			FinancialNetIncome: 43500000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Provincial tax adjustments", Amount: -1200000}},
		},
		{
			ID: 22, Name: "Schroder Management (Bermuda) Limited", Jurisdiction: "Bermuda", FiscalYear: fiscalYear,
			GloBEIncome: 52400000, JurisdictionalETR: 0.01, TotalTaxesPayable: 524000,
			SubstanceBasedIncomeExclusion: 70000, PayrollCosts: 800000, TangibleAssets: 600000,
			FinancialNetIncome: 53200000, TopUpTax: 7336000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Tax-exempt income", Amount: -800000}},
		},
		{
			ID: 23, Name: "Schroder Investment Management (Cayman) Limited", Jurisdiction: "Cayman Islands", FiscalYear: fiscalYear,
			GloBEIncome: 68500000, JurisdictionalETR: 0.005, TotalTaxesPayable: 342500,
			SubstanceBasedIncomeExclusion: 80000, PayrollCosts: 1200000, TangibleAssets: 400000,
			FinancialNetIncome: 69300000, TopUpTax: 9935000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Excluded dividends", Amount: -800000}},
		},
		{
			ID: 24, Name: "Schroder Aida Brasil Gestao de Recursos Ltda", Jurisdiction: "Brazil", FiscalYear: fiscalYear,
			GloBEIncome: 14600000, JurisdictionalETR: 0.32, TotalTaxesPayable: 4672000,
			SubstanceBasedIncomeExclusion: 2800000, PayrollCosts: 38000000, TangibleAssets: 18000000,
			FinancialNetIncome: 15100000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Local GAAP differences", Amount: -500000}},
		},
		{
			ID: 25, Name: "Schroder Investment Management Mexico S.A. de C.V.", Jurisdiction: "Mexico", FiscalYear: fiscalYear,
			GloBEIncome: 12800000, JurisdictionalETR: 0.3, TotalTaxesPayable: 3840000,
			SubstanceBasedIncomeExclusion: 2400000, PayrollCosts: 32000000, TangibleAssets: 16000000,
			FinancialNetIncome: 13200000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Inflation adjustments", Amount: -400000}},
		},
		{
			ID: 26, Name: "Schroders Capital Management (Jersey) Limited", Jurisdiction: "Jersey", FiscalYear: fiscalYear,
			GloBEIncome: 24500000, JurisdictionalETR: 0.09, TotalTaxesPayable: 2205000,
			SubstanceBasedIncomeExclusion: 3400000, PayrollCosts: 45000000, TangibleAssets: 23000000,
			FinancialNetIncome: 25300000, TopUpTax: 1470000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Exempt income", Amount: -800000}},
		},
		{
			ID: 27, Name: "Schroder Property Investment Management (Italy) Srl", Jurisdiction: "Italy", FiscalYear: fiscalYear,
			GloBEIncome: 18600000, JurisdictionalETR: 0.24, TotalTaxesPayable: 4464000,
			SubstanceBasedIncomeExclusion: 3200000, PayrollCosts: 42000000, TangibleAssets: 22000000,
			FinancialNetIncome: 19200000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Local tax incentives", Amount: -600000}},
		},
		{
			ID: 28, Name: "SPX Korea Co., Ltd.", Jurisdiction: "South Korea", FiscalYear: fiscalYear,
			GloBEIncome: 21400000, JurisdictionalETR: 0.22, TotalTaxesPayable: 4708000,
			SubstanceBasedIncomeExclusion: 3700000, PayrollCosts: 48000000, TangibleAssets: 26000000,
			FinancialNetIncome: 22000000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Timing differences", Amount: -600000}},
		},
		{
			ID: 29, Name: "Schroder Investment Management (India) Private Limited", Jurisdiction: "India", FiscalYear: fiscalYear,
			GloBEIncome: 15800000, JurisdictionalETR: 0.25, TotalTaxesPayable: 3950000,
			SubstanceBasedIncomeExclusion: 2900000, PayrollCosts: 38000000, TangibleAssets: 20000000,
			FinancialNetIncome: 16300000, TopUpTax: 0, SafeHarbor: true,
			Adjustments: []entity.Adjustment{{Type: "Disallowed expenses", Amount: -500000}},
		},
		{
			ID: 30, Name: "Adveq Management (Dubai) Ltd", Jurisdiction: "United Arab Emirates", FiscalYear: fiscalYear,
			GloBEIncome: 16200000, JurisdictionalETR: 0.04, TotalTaxesPayable: 648000,
			SubstanceBasedIncomeExclusion: 1400000, PayrollCosts: 18000000, TangibleAssets: 10000000,
			FinancialNetIncome: 16800000, TopUpTax: 1782000, SafeHarbor: false,
			Adjustments: []entity.Adjustment{{Type: "Tax-exempt income", Amount: -600000}},
		},
	}
}
