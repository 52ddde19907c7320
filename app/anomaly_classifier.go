package app

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"pillartwo/domain/core"
	"pillartwo/domain/entity"
	"pillartwo/domain/rules"
	"pillartwo/internal"
	"pillartwo/ports"
)

// Recommendations attached to anomalous entities.
const (
	RecommendReviewPlanning    = "Review tax planning for low ETR."
	RecommendAnalyzeDeductions = "Analyze deductions to reduce top-up tax."
	RecommendIncreaseSubstance = "Consider increasing substance in low-tax jurisdictions."
)

// Score ranges: bulk scores are uniform in [0.5, 1) or [0, 0.3); on-demand
// scores are fixed.
const (
	bulkAnomalousScoreFloor      = 0.5
	bulkNonAnomalousScoreCeiling = 0.3
	onDemandAnomalousScore       = 0.7
	onDemandNonAnomalousScore    = 0.2
)

// statisticalFeatures are the raw inputs a mock statistical flag can name.
var statisticalFeatures = []string{
	entity.FeatureGloBEIncome,
	entity.FeatureSBIE,
	entity.FeatureTotalTaxes,
}

// AnomalyClassifier annotates entities with business-rule anomalies and,
// in bulk mode, randomized mock statistical flags. The statistical flags
// are decorative: no distribution is fitted.
type AnomalyClassifier struct {
	rules  rules.Config
	locale language.Tag
	logger *internal.Logger
}

// NewAnomalyClassifier creates a classifier bound to a rule set.
func NewAnomalyClassifier(cfg rules.Config, logger *internal.Logger) *AnomalyClassifier {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnomalyClassifier{
		rules:  cfg,
		locale: language.English,
		logger: logger,
	}
}

// ClassifyBulk scores one entity the way the load-time pass does. Draws from
// rnd happen in a fixed order: the high-ETR coin (only above the noise
// floor), then for anomalous entities the statistical coin, feature and
// z-score, then the score.
func (c *AnomalyClassifier) ClassifyBulk(e entity.Entity, rnd ports.RandomSource, runID core.RunID) entity.Annotation {
	t := c.rules.Thresholds
	lowETR := e.JurisdictionalETR < c.rules.MinimumRate

	isAnomaly := lowETR
	if e.JurisdictionalETR > t.HighETRNoiseFloor && rnd.Float64() < c.rules.Noise.HighETRFlagProbability {
		isAnomaly = true
	}

	ann := entity.Annotation{
		IsAnomaly:       isAnomaly,
		Anomalies:       []entity.AnomalyRecord{},
		Recommendations: []string{},
		Mode:            entity.ModeBulk,
		RunID:           runID,
	}

	if !isAnomaly {
		ann.AnomalyScore = rnd.Float64() * bulkNonAnomalousScoreCeiling
		return ann
	}

	if lowETR {
		ann.Anomalies = append(ann.Anomalies, c.lowETRRecord(e))
	}
	if ratio, ok := topUpRatio(e); ok && ratio > t.TopUpRatio {
		ann.Anomalies = append(ann.Anomalies, c.topUpRecord(ratio))
	}
	if rnd.Float64() < c.rules.Noise.StatisticalProbability {
		ann.Anomalies = append(ann.Anomalies, c.statisticalRecord(e, rnd))
	}
	ann.AnomalyCount = len(ann.Anomalies)

	if lowETR {
		ann.Recommendations = append(ann.Recommendations, RecommendReviewPlanning)
	}
	if e.TopUpTax > 0 {
		ann.Recommendations = append(ann.Recommendations, RecommendAnalyzeDeductions)
	}
	if e.GloBEIncome > 0 && e.SubstanceBasedIncomeExclusion/e.GloBEIncome < t.LowSubstanceRatio {
		ann.Recommendations = append(ann.Recommendations, RecommendIncreaseSubstance)
	}

	ann.AnomalyScore = bulkAnomalousScoreFloor + rnd.Float64()*(1-bulkAnomalousScoreFloor)
	return ann
}

// AnnotateStore runs the bulk pass over every entity of the store that has
// not been annotated yet and returns how many it annotated. Draws come from
// the calling goroutine in roster order. A *rand.Rand is not safe to share,
// so concurrent callers each pass their own stream.
func (c *AnomalyClassifier) AnnotateStore(store ports.AnnotatingStore, rnd ports.RandomSource, runID core.RunID) int {
	n := store.AnnotateOnce(func(e entity.Entity) entity.Annotation {
		return c.ClassifyBulk(e, rnd, runID)
	})
	c.logger.Info("bulk classification %s annotated %d entities", runID, n)
	return n
}

// ClassifyOnDemand returns batch unchanged when every entity is annotated.
// Otherwise every entity is re-scored with the two business rules only,
// without randomness. The input is never mutated.
func (c *AnomalyClassifier) ClassifyOnDemand(batch []entity.Entity) []entity.Entity {
	pending := 0
	for _, e := range batch {
		if !e.Annotated() {
			pending++
		}
	}
	if pending == 0 {
		return batch
	}

	out := make([]entity.Entity, len(batch))
	for i, e := range batch {
		cp := e.Clone()
		ann := c.classifyBusinessRules(e)
		cp.Annotation = &ann
		out[i] = cp
	}
	c.logger.Debug("on-demand classification scored %d entities (%d unannotated)", len(out), pending)
	return out
}

func (c *AnomalyClassifier) classifyBusinessRules(e entity.Entity) entity.Annotation {
	lowETR := e.JurisdictionalETR < c.rules.MinimumRate
	ratio, ok := topUpRatio(e)
	highRatio := ok && ratio > c.rules.Thresholds.TopUpRatio

	ann := entity.Annotation{
		IsAnomaly:       lowETR || highRatio,
		Anomalies:       []entity.AnomalyRecord{},
		Recommendations: []string{},
		AnomalyScore:    onDemandNonAnomalousScore,
		Mode:            entity.ModeOnDemand,
	}
	if lowETR {
		ann.Anomalies = append(ann.Anomalies, c.lowETRRecord(e))
		ann.Recommendations = append(ann.Recommendations, RecommendReviewPlanning)
	}
	if highRatio {
		ann.Anomalies = append(ann.Anomalies, c.topUpRecord(ratio))
		ann.Recommendations = append(ann.Recommendations, RecommendAnalyzeDeductions)
	}
	ann.AnomalyCount = len(ann.Anomalies)
	if ann.IsAnomaly {
		ann.AnomalyScore = onDemandAnomalousScore
	}
	return ann
}

func (c *AnomalyClassifier) lowETRRecord(e entity.Entity) entity.AnomalyRecord {
	return entity.AnomalyRecord{
		Kind:        entity.KindBusinessRule,
		Severity:    entity.SeverityHigh,
		Feature:     entity.FeatureJurisdictionalETR,
		Value:       e.JurisdictionalETR,
		Threshold:   c.rules.MinimumRate,
		Description: fmt.Sprintf("ETR (%.2f%%) below %s%%", e.JurisdictionalETR*100, rules.FormatRate(c.rules.MinimumRate)),
	}
}

func (c *AnomalyClassifier) topUpRecord(ratio float64) entity.AnomalyRecord {
	return entity.AnomalyRecord{
		Kind:        entity.KindBusinessRule,
		Severity:    entity.SeverityMedium,
		Feature:     entity.FeatureTopUpTaxRatio,
		Value:       ratio,
		Threshold:   c.rules.Thresholds.TopUpRatio,
		Description: fmt.Sprintf("Top-Up Tax (%.2f%%) is high", ratio*100),
	}
}

func (c *AnomalyClassifier) statisticalRecord(e entity.Entity, rnd ports.RandomSource) entity.AnomalyRecord {
	t := c.rules.Thresholds
	idx := int(rnd.Float64() * float64(len(statisticalFeatures)))
	if idx >= len(statisticalFeatures) {
		idx = len(statisticalFeatures) - 1
	}
	feature := statisticalFeatures[idx]
	z := t.ZScore + rnd.Float64()*t.ZScoreSpan
	value := e.NumericFeature(feature)

	severity := entity.SeverityMedium
	if z > t.HighSeverityZScore {
		severity = entity.SeverityHigh
	}
	return entity.AnomalyRecord{
		Kind:     entity.KindStatistical,
		Severity: severity,
		Feature:  feature,
		Value:    value,
		ZScore:   z,
		Description: fmt.Sprintf("%s (%s) unusual (z-score: %.2f)",
			feature, c.groupDigits(value), z),
	}
}

// groupDigits renders value with thousands separators and at most three
// fraction digits.
func (c *AnomalyClassifier) groupDigits(value float64) string {
	return message.NewPrinter(c.locale).Sprint(number.Decimal(value, number.MaxFractionDigits(3)))
}

// topUpRatio is top-up tax over GloBE income, defined only when both are
// positive.
func topUpRatio(e entity.Entity) (float64, bool) {
	if e.GloBEIncome <= 0 || e.TopUpTax <= 0 {
		return 0, false
	}
	return e.TopUpTax / e.GloBEIncome, true
}
