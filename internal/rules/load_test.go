package rules

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "rules.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func fullWorkbook(t *testing.T) string {
	return writeWorkbook(t, map[string][][]any{
		"User_Corrections": {
			{"Original_Text", "Corrected_Text"},
			{"FARO IZQ ROTO", "farola izquierda"},
		},
		"Abbreviations": {
			{"Word", "Abbr. 1", "Abbr. 2"},
			{"delantero", "del", "dlt"},
			{"izquierdo", "izq", "i"},
		},
		"Abbreviations_Phrases": {
			{"From", "To"},
			{"tra d", "trasero derecho"},
		},
		"Equivalencias": {
			{"Term", "Synonyms"},
			{"farola", "faro", "optica"},
			{"capo", "cofre"},
		},
		"Series": {
			{"Canonical", "Variants"},
			{"MAZDA/CX-30 (DM)/BASICO", "CX30", "CX 30"},
			{"SPARK GT", "SPARK"},
		},
		"Noun_Gender": {
			{"noun", "gender"},
			{"luz", "f"},
			{"espejo", "masculino"},
			{"puerta", "femenino"},
			{"bocel", "junk"},
		},
	})
}

func TestLoadFullWorkbook(t *testing.T) {
	s, err := Load(fullWorkbook(t), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "farola izquierda", s.UserCorrections["FARO IZQ ROTO"])

	assert.Equal(t, "delantero", s.Abbreviations["del"])
	assert.Equal(t, "delantero", s.Abbreviations["dlt"])
	assert.Equal(t, "izquierdo", s.Abbreviations["i"])

	assert.Equal(t, "trasero derecho", s.PhraseAbbreviations["tra d"])
	assert.Equal(t, []string{"tra d"}, s.PhraseOrder)

	// all terms of a row share one group id
	assert.Equal(t, s.SynonymGroups["farola"], s.SynonymGroups["optica"])
	assert.NotEqual(t, s.SynonymGroups["farola"], s.SynonymGroups["cofre"])

	// the canonical cell carries maker and trim info
	got, ok := s.LookupSeriesExact("MAZDA", "cx30")
	assert.True(t, ok)
	assert.Equal(t, "CX-30", got)
	got, ok = s.LookupSeriesExact("MAZDA", "CX 30")
	assert.True(t, ok)
	assert.Equal(t, "CX-30", got)
	_, ok = s.LookupSeriesExact("FORD", "CX30")
	assert.False(t, ok, "maker-specific entry must not leak to other makers")

	// plain canonical cell becomes a wildcard rule
	got, ok = s.LookupSeriesExact("chevrolet", "spark")
	assert.True(t, ok)
	assert.Equal(t, "SPARK GT", got)

	assert.Equal(t, Feminine, s.NounGender["luz"])
	assert.Equal(t, Masculine, s.NounGender["espejo"])
	assert.Equal(t, Feminine, s.NounGender["puerta"])
	_, ok = s.NounGender["bocel"]
	assert.False(t, ok, "unparseable gender rows are dropped")

	// builtin merged by Seal
	assert.Equal(t, Masculine, s.NounGender["paragolpes"])
}

func TestLoadSeriesRulesSorted(t *testing.T) {
	s, err := Load(fullWorkbook(t), zerolog.Nop())
	require.NoError(t, err)

	for i := 1; i < len(s.SeriesRules); i++ {
		assert.GreaterOrEqual(t,
			len(s.SeriesRules[i-1].Variant), len(s.SeriesRules[i].Variant),
			"series rules must be longest-variant-first")
	}
}

func TestLoadMissingRequiredSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Abbreviations": {
			{"Word", "Abbr. 1"},
			{"delantero", "del"},
		},
		"Series": {
			{"Canonical", "Variants"},
			{"SPARK GT", "SPARK"},
		},
		// Equivalencias deliberately absent
	})

	_, err := Load(path, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Equivalencias")
}

func TestLoadPairLayoutAbbreviations(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Abbreviations": {
			{"Abbr", "Full"},
			{"del", "delantero"},
			{"izq", "izquierdo"},
		},
		"Equivalencias": {
			{"Term", "Synonyms"},
			{"capo", "cofre"},
		},
		"Series": {
			{"Canonical", "Variants"},
			{"SPARK GT", "SPARK"},
		},
	})

	s, err := Load(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "delantero", s.Abbreviations["del"])
	assert.Equal(t, "izquierdo", s.Abbreviations["izq"])
}

func TestLoadDuplicatePhraseIsConfigError(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Abbreviations": {
			{"Word", "Abbr. 1"},
			{"delantero", "del"},
		},
		"Abbreviations_Phrases": {
			{"From", "To"},
			{"tra d", "trasero derecho"},
			{"tra d", "trasero izquierdo"},
		},
		"Equivalencias": {
			{"Term", "Synonyms"},
			{"capo", "cofre"},
		},
		"Series": {
			{"Canonical", "Variants"},
			{"SPARK GT", "SPARK"},
		},
	})

	_, err := Load(path, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source phrase")
}
