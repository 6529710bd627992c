// Package predict answers SKU queries from the aggregated year ranges via a
// fallback cascade: exact match first, then relaxed series, then maker-only.
package predict

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"sku-service/internal/normalize"
	"sku-service/internal/store"
)

const defaultLimit = 10

type Query struct {
	Maker       string
	Year        int
	Series      string
	Description string
	Limit       int
}

type Prediction struct {
	SKU             string  `json:"sku"`
	Frequency       int     `json:"frequency"`
	GlobalFrequency int     `json:"global_frequency"`
	Confidence      float64 `json:"confidence"`
	YearRange       string  `json:"year_range"`
	Source          string  `json:"source"`
}

type Predictor struct {
	store  *store.Store
	norm   *normalize.Normalizer
	logger zerolog.Logger
}

func New(st *store.Store, norm *normalize.Normalizer, logger zerolog.Logger) *Predictor {
	return &Predictor{store: st, norm: norm, logger: logger}
}

// Predict runs the cascade, stopping at the first stage with results. A store
// failure comes back as an empty list plus the error, so callers can tell
// "no predictions" from "query failed". Description matching is exact-only
// (raw or normalized form); fuzzy description matching is disabled on purpose
// to stay in lockstep with what the normalization pipeline wrote at ingest.
func (p *Predictor) Predict(ctx context.Context, q Query) ([]Prediction, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}

	desc := strings.ToLower(strings.TrimSpace(q.Description))
	rq := store.RangeQuery{
		Maker:    strings.ToLower(strings.TrimSpace(q.Maker)),
		Series:   strings.ToLower(strings.TrimSpace(p.norm.Series(q.Maker, q.Series))),
		Desc:     desc,
		NormDesc: strings.ToLower(p.norm.Text(p.norm.UserCorrect(desc))),
		Year:     q.Year,
		Limit:    q.Limit,
	}

	ranges, err := p.store.QueryExact(ctx, rq)
	if err != nil {
		return nil, err
	}
	if len(ranges) > 0 {
		return toPredictions(ranges, q.Year, MatchExact), nil
	}

	// relaxed series containment, against both the full string and a stripped
	// variant with trailing parenthetical/slash segments removed
	// ("sail (cs3)/ls" -> "ls" is still findable)
	ranges, err = p.store.QuerySeriesLike(ctx, rq, likePattern(rq.Series), likePattern(stripSeries(rq.Series)))
	if err != nil {
		return nil, err
	}
	if len(ranges) > 0 {
		p.logger.Debug().Str("maker", rq.Maker).Str("series", rq.Series).
			Int("hits", len(ranges)).Msg("series containment fallback")
		return toPredictions(ranges, q.Year, MatchExact), nil
	}

	ranges, err = p.store.QueryMakerOnly(ctx, rq)
	if err != nil {
		return nil, err
	}
	if len(ranges) > 0 {
		p.logger.Debug().Str("maker", rq.Maker).
			Int("hits", len(ranges)).Msg("maker-only fallback")
	}
	return toPredictions(ranges, q.Year, MatchFuzzy), nil
}

// stripSeries drops trailing parenthetical and slash segments:
// "sail (cs3)/ls" -> "ls" -> "" when nothing remains.
func stripSeries(series string) string {
	if series == "" {
		return ""
	}
	parts := strings.Split(series, "/")
	last := parts[len(parts)-1]
	if i := strings.Index(last, "("); i >= 0 {
		last = last[:i]
	}
	return strings.TrimSpace(last)
}

func likePattern(s string) string {
	if s == "" {
		return "%"
	}
	return "%" + s + "%"
}

func toPredictions(ranges []store.YearRange, year int, match MatchType) []Prediction {
	out := make([]Prediction, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, Prediction{
			SKU:             r.Referencia,
			Frequency:       r.Frequency,
			GlobalFrequency: r.GlobalFrequency,
			Confidence:      Confidence(r.Frequency, r.StartYear, r.EndYear, year, match),
			YearRange:       fmt.Sprintf("%d-%d", r.StartYear, r.EndYear),
			Source:          fmt.Sprintf("DB(%d/%d)", r.Frequency, r.GlobalFrequency),
		})
	}
	return out
}
