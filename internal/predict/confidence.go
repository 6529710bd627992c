package predict

// MatchType scales confidence by how much the match was relaxed.
type MatchType string

const (
	MatchExact MatchType = "exact"
	MatchFuzzy MatchType = "fuzzy"
	MatchVIN   MatchType = "vin"
)

func (m MatchType) multiplier() float64 {
	switch m {
	case MatchExact:
		return 1.0
	case MatchFuzzy:
		return 0.85
	case MatchVIN:
		return 0.9
	}
	return 0.8
}

// Confidence scores a candidate from its aggregated frequency, the year range
// it was observed in, and the match type. Monotonically non-decreasing in
// frequency for a fixed match type and year position; capped at 1.0.
func Confidence(frequency, startYear, endYear, targetYear int, match MatchType) float64 {
	var base float64
	switch {
	case frequency >= 20:
		base = 0.9
	case frequency >= 10:
		base = 0.8
	case frequency >= 5:
		base = 0.7
	case frequency >= 3:
		base = 0.6
	default:
		base = 0.5
	}

	confidence := base * match.multiplier()

	// years in the middle of an observed range are better supported than the
	// edges, where the range may just be running out of data
	if targetYear > 0 && endYear > startYear {
		position := float64(targetYear-startYear) / float64(endYear-startYear)
		if position >= 0.2 && position <= 0.8 {
			confidence *= 1.05
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
