package cytokine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCohort(t *testing.T) {
	tests := []struct {
		input string
		want  Cohort
		ok    bool
	}{
		{"HC", HealthyControl, true},
		{" AD/MCI ", ADMCI, true},
		{"hc", "", false},
		{"AD", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCohort(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestCohortLabel(t *testing.T) {
	assert.Equal(t, "HC", HealthyControl.Label())
	assert.Equal(t, "AD/MCI", ADMCI.Label())
}

func TestParseTimepoint(t *testing.T) {
	tests := []struct {
		input   string
		want    Timepoint
		wantErr bool
	}{
		{"0", 0, false},
		{" 3 ", 3, false},
		{"1.5", 1.5, false},
		{"Hr5", 5, false},
		{"hr10", 10, false},
		{"", 0, true},
		{"baseline", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimepoint(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestTimepointLabel(t *testing.T) {
	assert.Equal(t, "Hr0", Timepoint(0).Label())
	assert.Equal(t, "Hr3", Timepoint(3).Label())
	assert.Equal(t, "Hr1.5", Timepoint(1.5).Label())
}
