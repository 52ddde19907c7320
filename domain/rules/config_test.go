package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeHarborETRFor(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		year string
		want float64
	}{
		{"2023", 0.15},
		{"2024", 0.15},
		{"2025", 0.16},
		{"2026", 0.17},
		{"2030", 0.15},
		{"", 0.15},
	}
	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.SafeHarborETRFor(tt.year))
		})
	}
}

func TestSafeHarborETRForFallsBackToMinimumRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinimumRate = 0.2
	assert.Equal(t, 0.2, cfg.SafeHarborETRFor("2031"))
	assert.Equal(t, 0.16, cfg.SafeHarborETRFor("2025"))
}

func TestRegionOf(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "apac", cfg.RegionOf("Japan"))
	assert.Equal(t, "americas", cfg.RegionOf("Cayman Islands"))
	assert.Equal(t, "emea", cfg.RegionOf("Jersey"))
	assert.Equal(t, "", cfg.RegionOf("Atlantis"))
	assert.Equal(t, []string{"americas", "apac", "emea"}, cfg.RegionNames())
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "15", FormatRate(0.15))
	assert.Equal(t, "15.5", FormatRate(0.155))
	assert.Equal(t, "0.5", FormatRate(0.005))
}
