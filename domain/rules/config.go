// Package rules holds the regulatory and heuristic parameters that every
// formula and classifier call receives explicitly.
package rules

import (
	"math"
	"sort"
	"strconv"
)

// RegionAll selects the whole roster in region filters.
const RegionAll = "all"

// Config is the complete rule set used by the formula engine, the anomaly
// classifier and the validation service.
type Config struct {
	// MinimumRate is the Pillar Two minimum rate (0.15). It drives the low-ETR
	// check, the top-up percentage, validation warnings and summary counts.
	MinimumRate float64 `yaml:"minimum_rate" json:"minimum_rate"`

	Thresholds Thresholds          `yaml:"thresholds" json:"thresholds"`
	Noise      NoiseConfig         `yaml:"noise" json:"noise"`
	Tolerances Tolerances          `yaml:"tolerances" json:"tolerances"`
	SafeHarbor SafeHarborConfig    `yaml:"safe_harbor" json:"safe_harbor"`
	Regions    map[string][]string `yaml:"regions" json:"regions"`
}

// Thresholds are the business-rule cut-offs of the anomaly classifier.
type Thresholds struct {
	TopUpRatio         float64 `yaml:"top_up_ratio" json:"top_up_ratio"`
	ZScore             float64 `yaml:"z_score" json:"z_score"`
	ZScoreSpan         float64 `yaml:"z_score_span" json:"z_score_span"`
	HighSeverityZScore float64 `yaml:"high_severity_z_score" json:"high_severity_z_score"`
	LowSubstanceRatio  float64 `yaml:"low_substance_ratio" json:"low_substance_ratio"`
	HighETRNoiseFloor  float64 `yaml:"high_etr_noise_floor" json:"high_etr_noise_floor"`
}

// NoiseConfig holds the probabilities of the randomized mock flags. They are
// not derived from any distribution.
type NoiseConfig struct {
	HighETRFlagProbability float64 `yaml:"high_etr_flag_probability" json:"high_etr_flag_probability"`
	StatisticalProbability float64 `yaml:"statistical_probability" json:"statistical_probability"`
	LowActivityProbability float64 `yaml:"low_activity_probability" json:"low_activity_probability"`
	MidActivityProbability float64 `yaml:"mid_activity_probability" json:"mid_activity_probability"`
}

// Tolerances bound the accepted gap between calculated and reported values.
type Tolerances struct {
	ETR    float64 `yaml:"etr" json:"etr"`
	Amount float64 `yaml:"amount" json:"amount"`
}

// SafeHarborConfig parameterizes the transitional safe-harbor tests.
type SafeHarborConfig struct {
	DeMinimisRevenue float64            `yaml:"de_minimis_revenue" json:"de_minimis_revenue"`
	DeMinimisProfit  float64            `yaml:"de_minimis_profit" json:"de_minimis_profit"`
	DefaultYear      string             `yaml:"default_year" json:"default_year"`
	ETRByYear        map[string]float64 `yaml:"etr_by_year" json:"etr_by_year"`
}

// SafeHarborETRFor returns the simplified-ETR threshold for a fiscal year.
// Years missing from the table use the minimum rate.
func (c Config) SafeHarborETRFor(year string) float64 {
	if rate, ok := c.SafeHarbor.ETRByYear[year]; ok {
		return rate
	}
	return c.MinimumRate
}

// DefaultConfig returns the rule set of the 2024 dashboard.
func DefaultConfig() Config {
	return Config{
		MinimumRate: 0.15,
		Thresholds: Thresholds{
			TopUpRatio:         0.1,
			ZScore:             2.5,
			ZScoreSpan:         2,
			HighSeverityZScore: 3,
			LowSubstanceRatio:  0.1,
			HighETRNoiseFloor:  0.25,
		},
		Noise: NoiseConfig{
			HighETRFlagProbability: 0.3,
			StatisticalProbability: 0.4,
			LowActivityProbability: 0.3,
			MidActivityProbability: 0.7,
		},
		Tolerances: Tolerances{
			ETR:    0.001,
			Amount: 100,
		},
		SafeHarbor: SafeHarborConfig{
			DeMinimisRevenue: 10000000,
			DeMinimisProfit:  1000000,
			DefaultYear:      "2024",
			ETRByYear: map[string]float64{
				"2023": 0.15,
				"2024": 0.15,
				"2025": 0.16,
				"2026": 0.17,
			},
		},
		Regions: map[string][]string{
			"emea": {"United Kingdom", "Luxembourg", "Ireland", "Switzerland", "United Arab Emirates",
				"France", "Germany", "Italy", "Jersey"},
			"apac":     {"Singapore", "Hong Kong", "Japan", "Australia", "China", "Taiwan", "South Korea", "India"},
			"americas": {"United States", "Cayman Islands", "Bermuda", "Canada", "Brazil", "Mexico"},
		},
	}
}

// RegionOf returns the region containing a jurisdiction, or "" when none does.
func (c Config) RegionOf(jurisdiction string) string {
	for _, region := range c.RegionNames() {
		for _, country := range c.Regions[region] {
			if country == jurisdiction {
				return region
			}
		}
	}
	return ""
}

// RegionNames lists configured regions in sorted order.
func (c Config) RegionNames() []string {
	names := make([]string, 0, len(c.Regions))
	for name := range c.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatRate renders a fraction as a percentage without float noise,
// e.g. 0.15 -> "15", 0.155 -> "15.5".
func FormatRate(rate float64) string {
	return strconv.FormatFloat(math.Round(rate*10000)/100, 'f', -1, 64)
}
