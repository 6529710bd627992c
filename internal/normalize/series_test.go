package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sku-service/internal/rules"
)

func seriesRules() *rules.Set {
	s := &rules.Set{
		SeriesExact: map[rules.SeriesKey]string{
			{Maker: "MAZDA", Variant: "CX30"}: "CX-30",
			{Maker: "*", Variant: "CX 30"}:    "CX-30",
		},
		SeriesRules: []rules.SeriesRule{
			{Maker: "MAZDA", Variant: "CX30", Canonical: "CX-30"},
			{Maker: "*", Variant: "CX 30", Canonical: "CX-30"},
			{Maker: "MAZDA", Variant: "CX", Canonical: "CX-5"},
			{Maker: "CHEVROLET", Variant: "SAIL", Canonical: "SAIL (CS3)"},
			{Maker: "*", Variant: "LOGAN", Canonical: "LOGAN II"},
			{Maker: "RENAULT", Variant: "LOGAN", Canonical: "LOGAN FASE II"},
		},
	}
	s.Seal()
	return s
}

func TestSeriesNormalization(t *testing.T) {
	n := New(seriesRules())

	tests := []struct {
		name   string
		maker  string
		series string
		want   string
	}{
		{"exact variant replaced", "mazda", "CX30", "CX-30"},
		{"case insensitive match", "mazda", "cx30", "CX-30"},
		{"letters-only rule fires alone", "mazda", "CX", "CX-5"},
		{"letters-only must not eat CX-30", "mazda", "CX-30", "CX-30"},
		{"letters-only must not eat CX 30", "mazda", "CX 30", "CX-30"}, // longer "CX 30" rule wins
		{"surrounding text preserved", "chevrolet", "SAIL LS", "SAIL (CS3) LS"},
		{"maker specific beats wildcard", "renault", "LOGAN", "LOGAN FASE II"},
		{"wildcard applies to other makers", "dacia", "LOGAN", "LOGAN II"},
		{"maker mismatch leaves input", "ford", "CX", "CX"},
		{"no rule no change", "mazda", "MIATA", "MIATA"},
		{"empty series", "mazda", "", ""},
		{"no match inside word", "chevrolet", "SAILOR", "SAILOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Series(tt.maker, tt.series))
		})
	}
}

func TestSeriesExactLookup(t *testing.T) {
	n := New(seriesRules())

	assert.Equal(t, "CX-30", n.SeriesExact("mazda", "cx30"))
	assert.Equal(t, "CX-30", n.SeriesExact("anything", "cx 30"), "wildcard entry")
	assert.Equal(t, "cx30 touring", n.SeriesExact("mazda", "cx30 touring"), "exact lookup is whole-string")
}

func TestFindVariantSpan(t *testing.T) {
	// letters-only key followed by optional space/hyphen then digit: no match
	_, _, ok := findVariantSpan("CX-30", "CX")
	assert.False(t, ok)
	_, _, ok = findVariantSpan("CX 30", "CX")
	assert.False(t, ok)
	_, _, ok = findVariantSpan("CX30", "CX")
	assert.False(t, ok)

	st, en, ok := findVariantSpan("CX TOURING", "CX")
	assert.True(t, ok)
	assert.Equal(t, 0, st)
	assert.Equal(t, 2, en)

	// mixed keys only need non-alphanumeric flanks
	st, en, ok = findVariantSpan("X CX-30 GT", "CX-30")
	assert.True(t, ok)
	assert.Equal(t, 2, st)
	assert.Equal(t, 7, en)
}
