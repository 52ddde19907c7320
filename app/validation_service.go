package app

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"pillartwo/domain/core"
	"pillartwo/domain/entity"
	"pillartwo/domain/formula"
	"pillartwo/domain/rules"
	"pillartwo/domain/validation"
	"pillartwo/internal"
	"pillartwo/ports"
)

// demonstrationJurisdiction is preferred when no entity id is given.
const demonstrationJurisdiction = "Luxembourg"

// Synthetic adjustment lines, as fractions of reported GloBE income.
var syntheticAdjustments = []struct {
	Type string
	Rate float64
}{
	{"Net tax expense adjustments", 0.02},
	{"Excluded dividends", 0.015},
	{"Policy disallowed expenses", 0.01},
}

// syntheticNetIncomeMarkup stands in for financial net income when an
// entity reports none.
const syntheticNetIncomeMarkup = 1.05

// ValidationService recomputes formulas from raw entity fields and compares
// them with the reported figures.
type ValidationService struct {
	store    ports.EntityStore
	rules    rules.Config
	rulebook core.RulebookHash
	logger   *internal.Logger
}

// NewValidationService creates a validation service
func NewValidationService(store ports.EntityStore, cfg rules.Config, rulebook core.RulebookHash, logger *internal.Logger) *ValidationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ValidationService{
		store:    store,
		rules:    cfg,
		rulebook: rulebook,
		logger:   logger,
	}
}

// Validate re-runs one calculation for e. It never fails: an unknown type
// yields an invalid result carrying validation.ErrUnknownType.
func (s *ValidationService) Validate(calcType validation.CalculationType, e entity.Entity) validation.Result {
	var res validation.Result
	switch calcType {
	case validation.CalcETR:
		res = s.validateETR(e)
	case validation.CalcSBIE:
		res = s.validateSBIE(e)
	case validation.CalcTopUp:
		res = s.validateTopUp(e)
	case validation.CalcSafeHarbor:
		res = s.validateSafeHarbor(e)
	case validation.CalcAdjustments:
		res = s.validateAdjustments(e)
	default:
		res = validation.Result{
			IsValid:  false,
			Errors:   []string{validation.ErrUnknownType},
			Warnings: []string{},
		}
	}
	res.Type = calcType
	res.EntityID = e.ID
	return res
}

// ValidateEntity looks up id and validates it. A zero id selects the
// demonstration entity.
func (s *ValidationService) ValidateEntity(calcType validation.CalculationType, id int) (validation.Result, error) {
	var (
		e  entity.Entity
		ok bool
	)
	if id == 0 {
		e, ok = s.DemonstrationEntity()
	} else {
		e, ok = s.store.ByID(id)
	}
	if !ok {
		return validation.Result{}, core.NewNotFoundError("entity", fmt.Sprint(id))
	}
	return s.Validate(calcType, e), nil
}

// DemonstrationEntity is the first Luxembourg entity, else the first entity.
func (s *ValidationService) DemonstrationEntity() (entity.Entity, bool) {
	all := s.store.All()
	for _, e := range all {
		if e.Jurisdiction == demonstrationJurisdiction {
			return e, true
		}
	}
	if len(all) == 0 {
		return entity.Entity{}, false
	}
	return all[0], true
}

// ValidateRoster validates every entity concurrently. Results keep roster
// order.
func (s *ValidationService) ValidateRoster(ctx context.Context, calcType validation.CalculationType) (validation.Report, error) {
	entities := s.store.All()
	results := make([]validation.Result, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range entities {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Validate(calcType, e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return validation.Report{}, err
	}

	report := validation.Report{
		RunID:       core.NewRunID(),
		Rulebook:    s.rulebook,
		Type:        calcType,
		GeneratedAt: core.Now(),
		Results:     results,
	}
	for _, r := range results {
		if r.IsValid {
			report.Valid++
		} else {
			report.Invalid++
		}
	}
	if report.Invalid > 0 {
		s.logger.Warn("validation run %s (%s): %d of %d entities invalid", report.RunID, calcType, report.Invalid, len(results))
	} else {
		s.logger.Info("validation run %s (%s): all %d entities valid", report.RunID, calcType, report.Valid)
	}
	return report, nil
}

func (s *ValidationService) validateETR(e entity.Entity) validation.Result {
	calculated := formula.ETR(e.TotalTaxesPayable, e.GloBEIncome)
	res := compare(calculated, e.JurisdictionalETR, s.rules.Tolerances.ETR, validation.ErrETRMismatch)
	if e.JurisdictionalETR < s.rules.MinimumRate {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("ETR is below the minimum threshold of %s%%", rules.FormatRate(s.rules.MinimumRate)))
	}
	return res
}

func (s *ValidationService) validateSBIE(e entity.Entity) validation.Result {
	parts := formula.SBIEBreakdown(e.PayrollCosts, e.TangibleAssets)
	res := compare(parts.Total(), e.SubstanceBasedIncomeExclusion, s.rules.Tolerances.Amount, validation.ErrSBIEMismatch)
	res.Components = map[string]float64{
		validation.ComponentPayroll: parts.Payroll,
		validation.ComponentAssets:  parts.TangibleAssets,
	}
	return res
}

func (s *ValidationService) validateTopUp(e entity.Entity) validation.Result {
	topUp := formula.TopUpBreakdown(e.JurisdictionalETR, e.GloBEIncome, e.SubstanceBasedIncomeExclusion, s.rules.MinimumRate)
	res := compare(topUp.Amount, e.TopUpTax, s.rules.Tolerances.Amount, validation.ErrTopUpMismatch)
	res.Components = map[string]float64{
		validation.ComponentTopUpPercent: topUp.Percentage,
		validation.ComponentExcessProfit: topUp.ExcessProfit,
	}
	return res
}

// validateSafeHarbor reports qualification only; there is no reported
// determination to check, so the result is always valid.
func (s *ValidationService) validateSafeHarbor(e entity.Entity) validation.Result {
	sh := formula.EvaluateSafeHarbor(formula.InputsFrom(e), e.FiscalYear, s.rules)
	return validation.Result{
		IsValid:    true,
		SafeHarbor: &sh,
		Errors:     []string{},
		Warnings:   []string{},
	}
}

// validateAdjustments rebuilds GloBE income from a synthetic breakdown, not
// the entity's own adjustment lines. It is always valid.
func (s *ValidationService) validateAdjustments(e entity.Entity) validation.Result {
	netIncome := e.FinancialNetIncome
	if netIncome == 0 {
		netIncome = e.GloBEIncome * syntheticNetIncomeMarkup
	}
	adjustments := make([]entity.Adjustment, len(syntheticAdjustments))
	for i, a := range syntheticAdjustments {
		adjustments[i] = entity.Adjustment{Type: a.Type, Amount: -e.GloBEIncome * a.Rate}
	}
	calculated := formula.GloBEIncome(netIncome, adjustments)

	return validation.Result{
		IsValid:            true,
		CalculatedValue:    calculated,
		ReportedValue:      e.GloBEIncome,
		Difference:         math.Abs(calculated - e.GloBEIncome),
		FinancialNetIncome: netIncome,
		Adjustments:        adjustments,
		Errors:             []string{},
		Warnings:           []string{validation.WarnSyntheticBreak},
	}
}

// compare is valid iff |calculated - reported| < tolerance.
func compare(calculated, reported, tolerance float64, mismatch string) validation.Result {
	diff := math.Abs(calculated - reported)
	res := validation.Result{
		IsValid:         diff < tolerance,
		CalculatedValue: calculated,
		ReportedValue:   reported,
		Difference:      diff,
		Errors:          []string{},
		Warnings:        []string{},
	}
	if !res.IsValid {
		res.Errors = append(res.Errors, mismatch)
	}
	return res
}
