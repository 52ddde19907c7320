package profiling

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNoData is returned when there is nothing to profile.
var ErrNoData = errors.New("no values to profile")

// Summary holds basic summary statistics
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Shape describes the distribution shape
type Shape struct {
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	IsNormal bool    `json:"is_normal"`
	NormalP  float64 `json:"normal_p"`
	Outliers int     `json:"outliers"`
}

// Profile is the distribution of one numeric feature across entities.
type Profile struct {
	Feature string  `json:"feature"`
	Summary Summary `json:"summary"`
	Shape   Shape   `json:"shape"`
	// BelowThreshold counts values strictly under the threshold passed to
	// AnalyzeDistribution.
	BelowThreshold int `json:"below_threshold"`
}

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeDistribution profiles data and counts values under threshold.
func (da *DistributionAnalyzer) AnalyzeDistribution(feature string, data []float64, threshold float64) (Profile, error) {
	profile := Profile{Feature: feature}
	if len(data) == 0 {
		return profile, ErrNoData
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, err
	}

	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return profile, err
	}

	min, err := stats.Min(data)
	if err != nil {
		return profile, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return profile, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return profile, err
	}

	// Percentile rejects ranks below the first element on tiny samples.
	q25, err := stats.Percentile(data, 25)
	if err != nil {
		q25 = median
	}

	q75, err := stats.Percentile(data, 75)
	if err != nil {
		q75 = median
	}

	profile.Summary = Summary{
		Count:  len(data),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
		Q25:    q25,
		Q75:    q75,
	}

	profile.Shape.Skewness = calculateSkewness(data, mean, stdDev)
	profile.Shape.Kurtosis = calculateKurtosis(data, mean, stdDev)
	profile.Shape.IsNormal, profile.Shape.NormalP = testNormality(profile.Shape.Skewness, profile.Shape.Kurtosis, len(data))
	profile.Shape.Outliers = detectOutliers(data, q25, q75)

	for _, x := range data {
		if x < threshold {
			profile.BelowThreshold++
		}
	}
	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// calculateKurtosis computes bias-corrected sample kurtosis (not excess)
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	excessKurtosis := sumFourthDeviations/n - 3

	correction := (n - 1) / ((n - 2) * (n - 3))
	excessKurtosis = excessKurtosis*correction + 6/(n+1)

	return excessKurtosis + 3
}

// testNormality is a skewness/kurtosis screen against a chi-squared
// reference, not a Shapiro-Wilk test.
func testNormality(skewness, kurtosis float64, n int) (isNormal bool, pValue float64) {
	if n < 3 {
		return false, 1.0
	}

	testStat := math.Abs(skewness) + math.Abs(kurtosis-3)/2

	chiDist := distuv.ChiSquared{K: 2}
	pValue = 1 - chiDist.CDF(testStat*testStat)

	return pValue > 0.05, pValue
}

// detectOutliers counts values outside the 1.5 IQR fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
