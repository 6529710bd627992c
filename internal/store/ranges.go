package store

import (
	"context"
	"fmt"
)

// YearRange is one aggregated (maker, series, descripcion, referencia) entry.
type YearRange struct {
	Referencia      string
	StartYear       int
	EndYear         int
	Frequency       int
	GlobalFrequency int
}

// placeholder values that show up in the referencia column of real feeds
const skuFilter = `referencia IS NOT NULL AND TRIM(referencia) <> ''
	AND referencia NOT IN ('None', 'UNKNOWN')`

// skuFilterFor qualifies the filter columns with a table alias for joins.
func skuFilterFor(alias string) string {
	return alias + `.referencia IS NOT NULL AND TRIM(` + alias + `.referencia) <> ''
	AND ` + alias + `.referencia NOT IN ('None', 'UNKNOWN')`
}

// AggregateYearRanges rebuilds sku_year_ranges from the raw records inside a
// single transaction, so readers never observe a partial aggregate. Model
// years outside [minYear, maxYear] are excluded entirely, not clamped.
//
// Each group collapses to one contiguous [MIN(model), MAX(model)] range.
// Gaps inside the span are assumed to be missing transaction data rather than
// genuine incompatibility; downstream confidence scoring relies on this
// approximation, so keep it.
func (s *Store) AggregateYearRanges(ctx context.Context, minYear, maxYear int) (int, error) {
	var inserted int64
	err := s.withRetry(ctx, "aggregate year ranges", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM sku_year_ranges`); err != nil {
			return err
		}

		// global_sku_frequency spans the whole corpus regardless of
		// maker/series/year; the per-group frequency is bounded by the year
		// filter.
		res, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO sku_year_ranges
				(maker, series, descripcion, normalized_descripcion, referencia,
				 start_year, end_year, frequency, global_sku_frequency)
			SELECT p.maker, p.series, p.descripcion, p.normalized_descripcion, p.referencia,
			       MIN(p.model), MAX(p.model), COUNT(*), g.global_frequency
			FROM processed_consolidado p
			JOIN (
				SELECT referencia, COUNT(*) AS global_frequency
				FROM processed_consolidado
				WHERE `+skuFilter+`
				GROUP BY referencia
			) g ON g.referencia = p.referencia
			WHERE `+skuFilterFor(`p`)+`
			  AND p.maker IS NOT NULL AND p.series IS NOT NULL
			  AND p.model IS NOT NULL AND p.model BETWEEN ? AND ?
			GROUP BY p.maker, p.series, p.descripcion, p.normalized_descripcion, p.referencia`,
			minYear, maxYear)
		if err != nil {
			return err
		}
		inserted, _ = res.RowsAffected()
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

// RangeQuery carries the already-lowercased match keys for the cascade.
type RangeQuery struct {
	Maker    string
	Series   string
	Desc     string // raw description, lowercased
	NormDesc string // normalized description
	Year     int
	Limit    int
}

const rangeColumns = `referencia, frequency, start_year, end_year, global_sku_frequency`

// QueryExact: maker, series and description all exact, year inside the range.
func (s *Store) QueryExact(ctx context.Context, q RangeQuery) ([]YearRange, error) {
	return s.queryRanges(ctx, `
		SELECT `+rangeColumns+`
		FROM sku_year_ranges
		WHERE maker = ? AND series = ?
		  AND (descripcion IN (?, ?) OR normalized_descripcion IN (?, ?))
		  AND ? BETWEEN start_year AND end_year
		  AND `+skuFilter+`
		ORDER BY frequency DESC
		LIMIT ?`,
		q.Maker, q.Series, q.Desc, q.NormDesc, q.Desc, q.NormDesc, q.Year, q.Limit)
}

// QuerySeriesLike relaxes series matching to substring containment against
// the given patterns; everything else stays exact.
func (s *Store) QuerySeriesLike(ctx context.Context, q RangeQuery, pattern1, pattern2 string) ([]YearRange, error) {
	return s.queryRanges(ctx, `
		SELECT `+rangeColumns+`
		FROM sku_year_ranges
		WHERE maker = ? AND (series LIKE ? OR series LIKE ?)
		  AND (descripcion IN (?, ?) OR normalized_descripcion IN (?, ?))
		  AND ? BETWEEN start_year AND end_year
		  AND `+skuFilter+`
		ORDER BY frequency DESC
		LIMIT ?`,
		q.Maker, pattern1, pattern2, q.Desc, q.NormDesc, q.Desc, q.NormDesc, q.Year, q.Limit)
}

// QueryMakerOnly drops the series constraint entirely. Last-resort fallback;
// still respects the year range bounds.
func (s *Store) QueryMakerOnly(ctx context.Context, q RangeQuery) ([]YearRange, error) {
	return s.queryRanges(ctx, `
		SELECT `+rangeColumns+`
		FROM sku_year_ranges
		WHERE maker = ?
		  AND (descripcion IN (?, ?) OR normalized_descripcion IN (?, ?))
		  AND ? BETWEEN start_year AND end_year
		  AND `+skuFilter+`
		ORDER BY frequency DESC
		LIMIT ?`,
		q.Maker, q.Desc, q.NormDesc, q.Desc, q.NormDesc, q.Year, q.Limit)
}

func (s *Store) queryRanges(ctx context.Context, query string, args ...any) ([]YearRange, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query year ranges: %w", err)
	}
	defer rows.Close()

	var out []YearRange
	for rows.Next() {
		var r YearRange
		if err := rows.Scan(&r.Referencia, &r.Frequency, &r.StartYear, &r.EndYear, &r.GlobalFrequency); err != nil {
			return nil, fmt.Errorf("scan year range: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
