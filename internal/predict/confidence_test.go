package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceFrequencyTiers(t *testing.T) {
	tests := []struct {
		frequency int
		want      float64
	}{
		{25, 0.9},
		{20, 0.9},
		{19, 0.8},
		{10, 0.8},
		{9, 0.7},
		{5, 0.7},
		{4, 0.6},
		{3, 0.6},
		{2, 0.5},
		{1, 0.5},
		{0, 0.5},
	}
	for _, tt := range tests {
		// single-year range, no midrange bonus applies
		got := Confidence(tt.frequency, 2016, 2016, 2016, MatchExact)
		assert.InDelta(t, tt.want, got, 1e-9, "frequency %d", tt.frequency)
	}
}

func TestConfidenceMatchTypeMultiplier(t *testing.T) {
	assert.InDelta(t, 0.9, Confidence(25, 2016, 2016, 2016, MatchExact), 1e-9)
	assert.InDelta(t, 0.9*0.85, Confidence(25, 2016, 2016, 2016, MatchFuzzy), 1e-9)
	assert.InDelta(t, 0.9*0.9, Confidence(25, 2016, 2016, 2016, MatchVIN), 1e-9)
	assert.InDelta(t, 0.9*0.8, Confidence(25, 2016, 2016, 2016, MatchType("other")), 1e-9)
}

func TestConfidenceMidrangeBonus(t *testing.T) {
	// range 2010-2020, midpoint 2015: high-frequency exact match earns the bonus
	assert.InDelta(t, 0.945, Confidence(25, 2010, 2020, 2015, MatchExact), 1e-9)

	// edges of the range get no bonus
	assert.InDelta(t, 0.9, Confidence(25, 2010, 2020, 2010, MatchExact), 1e-9)
	assert.InDelta(t, 0.9, Confidence(25, 2010, 2020, 2020, MatchExact), 1e-9)

	// position 0.2 and 0.8 are inclusive bounds
	assert.InDelta(t, 0.945, Confidence(25, 2010, 2020, 2012, MatchExact), 1e-9)
	assert.InDelta(t, 0.945, Confidence(25, 2010, 2020, 2018, MatchExact), 1e-9)

	// single-year ranges have no interior
	assert.InDelta(t, 0.9, Confidence(25, 2016, 2016, 2016, MatchExact), 1e-9)

	// unknown target year skips positional reasoning
	assert.InDelta(t, 0.9, Confidence(25, 2010, 2020, 0, MatchExact), 1e-9)
}

func TestConfidenceCapped(t *testing.T) {
	got := Confidence(100, 2010, 2020, 2015, MatchExact)
	assert.LessOrEqual(t, got, 1.0)
}

func TestConfidenceMonotonicInFrequency(t *testing.T) {
	prev := 0.0
	for freq := 0; freq <= 30; freq++ {
		got := Confidence(freq, 2010, 2020, 2015, MatchExact)
		assert.GreaterOrEqual(t, got, prev, "frequency %d", freq)
		prev = got
	}
}
