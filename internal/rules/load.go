package rules

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"sku-service/internal/fileio"
	"sku-service/internal/utils"
)

// Sheet names in the curated workbook.
const (
	sheetUserCorrections = "User_Corrections"
	sheetAbbreviations   = "Abbreviations"
	sheetPhrases         = "Abbreviations_Phrases"
	sheetEquivalencias   = "Equivalencias"
	sheetSeries          = "Series"
	sheetNounGender      = "Noun_Gender"
)

// Load reads the rules workbook into an immutable Set. Missing required
// sheets (Abbreviations, Equivalencias, Series) are fatal: letting the batch
// run on without them would silently diverge from the curated rules.
func Load(path string, logger zerolog.Logger) (*Set, error) {
	wb, err := fileio.OpenWorkbook(path)
	if err != nil {
		return nil, fmt.Errorf("rules workbook: %w", err)
	}
	defer wb.Close()

	s := &Set{
		UserCorrections:     map[string]string{},
		Abbreviations:       map[string]string{},
		PhraseAbbreviations: map[string]string{},
		SynonymGroups:       map[string]int{},
		SeriesExact:         map[SeriesKey]string{},
		NounGender:          map[string]Gender{},
	}

	if err := loadUserCorrections(wb, s); err != nil {
		return nil, err
	}
	if err := loadAbbreviations(wb, s); err != nil {
		return nil, err
	}
	if err := loadPhrases(wb, s); err != nil {
		return nil, err
	}
	if err := loadEquivalencias(wb, s); err != nil {
		return nil, err
	}
	if err := loadSeries(wb, s); err != nil {
		return nil, err
	}
	if err := loadNounGender(wb, s); err != nil {
		return nil, err
	}
	s.Seal()

	logger.Info().
		Int("user_corrections", len(s.UserCorrections)).
		Int("abbreviations", len(s.Abbreviations)).
		Int("phrase_abbreviations", len(s.PhraseAbbreviations)).
		Int("synonym_terms", len(s.SynonymGroups)).
		Int("series_rules", len(s.SeriesRules)).
		Int("noun_genders", len(s.NounGender)).
		Msg("rules loaded")
	return s, nil
}

func nonEmpty(row []string) []string {
	out := make([]string, 0, len(row))
	for _, v := range row {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func loadUserCorrections(wb fileio.Workbook, s *Set) error {
	rows, err := wb.Rows(sheetUserCorrections)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetUserCorrections, err)
	}
	if rows == nil {
		return nil // optional sheet
	}
	for i, row := range rows {
		if i == 0 {
			continue // Original_Text | Corrected_Text header
		}
		vals := nonEmpty(row)
		if len(vals) < 2 {
			continue
		}
		s.UserCorrections[vals[0]] = vals[1]
	}
	return nil
}

func loadAbbreviations(wb fileio.Workbook, s *Set) error {
	rows, err := wb.Rows(sheetAbbreviations)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetAbbreviations, err)
	}
	if rows == nil {
		return fmt.Errorf("rules workbook: missing required sheet %q", sheetAbbreviations)
	}

	// Two layouts exist in the wild:
	//  A) canonical-first: Word | Abbr. 1 | Abbr. 2 | ...
	//  B) pair: Abbr | Full
	canonicalFirst := false
	if len(rows) > 0 {
		var h1, h2 string
		if len(rows[0]) > 0 {
			h1 = strings.ToLower(strings.TrimSpace(rows[0][0]))
		}
		if len(rows[0]) > 1 {
			h2 = strings.ToLower(strings.TrimSpace(rows[0][1]))
		}
		switch h1 {
		case "word", "canonical", "full", "palabra":
			canonicalFirst = true
		}
		if strings.HasPrefix(h2, "abbr") {
			canonicalFirst = true
		}
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		vals := nonEmpty(row)
		if len(vals) < 2 {
			continue
		}
		if canonicalFirst || len(vals) > 2 {
			canonical := utils.FoldKey(vals[0])
			for _, ab := range vals[1:] {
				s.Abbreviations[utils.FoldKey(ab)] = canonical
			}
		} else {
			s.Abbreviations[utils.FoldKey(vals[0])] = utils.FoldKey(vals[1])
		}
	}
	return nil
}

func loadPhrases(wb fileio.Workbook, s *Set) error {
	rows, err := wb.Rows(sheetPhrases)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetPhrases, err)
	}
	if rows == nil {
		return nil // optional sheet
	}
	for i, row := range rows {
		if i == 0 {
			continue // From | To header
		}
		vals := nonEmpty(row)
		if len(vals) < 2 {
			continue
		}
		from, to := utils.FoldKey(vals[0]), utils.FoldKey(vals[1])
		if from == "" || to == "" {
			continue
		}
		if _, dup := s.PhraseAbbreviations[from]; dup {
			return fmt.Errorf("%s: duplicate source phrase %q", sheetPhrases, from)
		}
		s.PhraseAbbreviations[from] = to
		s.PhraseOrder = append(s.PhraseOrder, from)
	}
	return nil
}

func loadEquivalencias(wb fileio.Workbook, s *Set) error {
	rows, err := wb.Rows(sheetEquivalencias)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetEquivalencias, err)
	}
	if rows == nil {
		return fmt.Errorf("rules workbook: missing required sheet %q", sheetEquivalencias)
	}
	group := 0
	for i, row := range rows {
		if i == 0 {
			continue
		}
		vals := nonEmpty(row)
		if len(vals) < 2 {
			continue // a group needs at least two terms
		}
		group++
		for _, term := range vals {
			s.SynonymGroups[strings.ToLower(term)] = group
		}
	}
	return nil
}

func loadSeries(wb fileio.Workbook, s *Set) error {
	rows, err := wb.Rows(sheetSeries)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetSeries, err)
	}
	if rows == nil {
		return fmt.Errorf("rules workbook: missing required sheet %q", sheetSeries)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		vals := nonEmpty(row)
		if len(vals) < 2 {
			continue // canonical plus at least one variant
		}

		maker, canonical := splitMakerSeries(vals[0])
		for _, variation := range vals[1:] {
			_, clean := splitMakerSeries(variation)
			if clean == "" || strings.EqualFold(clean, canonical) {
				continue
			}
			key := SeriesKey{Maker: maker, Variant: strings.ToUpper(clean)}
			s.SeriesExact[key] = canonical
			s.SeriesRules = append(s.SeriesRules, SeriesRule{
				Maker:     maker,
				Variant:   key.Variant,
				Canonical: canonical,
			})
		}
	}
	return nil
}

// splitMakerSeries parses a series cell that may carry maker and trim info:
// "MAZDA/CX-30 (DM)/BASICO" -> ("MAZDA", "CX-30"); "CX30" -> ("*", "CX30").
func splitMakerSeries(cell string) (maker, series string) {
	cell = strings.TrimSpace(cell)
	if !strings.Contains(cell, "/") {
		return "*", cell
	}
	parts := strings.Split(cell, "/")
	if len(parts) < 2 {
		return "*", cell
	}
	maker = strings.ToUpper(strings.TrimSpace(parts[0]))
	series = strings.TrimSpace(parts[1])
	if i := strings.Index(series, "("); i >= 0 {
		series = strings.TrimSpace(series[:i])
	}
	if maker == "" {
		maker = "*"
	}
	return maker, series
}

func loadNounGender(wb fileio.Workbook, s *Set) error {
	rows, err := wb.Rows(sheetNounGender)
	if err != nil {
		return fmt.Errorf("%s: %w", sheetNounGender, err)
	}
	if rows == nil {
		return nil // optional sheet
	}
	for i, row := range rows {
		if i == 0 {
			continue // noun | gender header
		}
		vals := nonEmpty(row)
		if len(vals) < 2 {
			continue
		}
		noun := utils.FoldKey(vals[0])
		switch strings.ToLower(vals[1]) {
		case "m", "masculino", "male":
			s.NounGender[noun] = Masculine
		case "f", "femenino", "female":
			s.NounGender[noun] = Feminine
		}
	}
	return nil
}
