package store

import (
	"context"
	"strings"

	"sku-service/internal/normalize"
)

const vinMaskWildcard = "XXXXXX"

// RebuildVinPrefixFrequencies drops and rebuilds vin_prefix_frequencies:
// first 11 VIN characters uppercased plus six wildcard characters, counted
// over DISTINCT VINs so a vehicle with many line items is not over-weighted.
// Only VINs passing strict validation participate.
func (s *Store) RebuildVinPrefixFrequencies(ctx context.Context) (int, error) {
	type key struct {
		mask   string
		maker  string
		model  int
		series string
	}
	counts := map[key]int{}

	// DISTINCT over the full tuple collapses repeated line items per VIN
	// before counting.
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT UPPER(vin_number), maker, model, series
		FROM processed_consolidado
		WHERE vin_number IS NOT NULL
		  AND maker IS NOT NULL AND model IS NOT NULL AND series IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var vin, maker, series string
		var model int
		if err := rows.Scan(&vin, &maker, &model, &series); err != nil {
			return 0, err
		}
		if _, ok := normalize.CleanVINForTraining(vin); !ok {
			continue
		}
		k := key{
			mask:   strings.ToUpper(vin[:11]) + vinMaskWildcard,
			maker:  maker,
			model:  model,
			series: series,
		}
		counts[k]++
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	err = s.withRetry(ctx, "rebuild vin prefixes", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM vin_prefix_frequencies`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO vin_prefix_frequencies
				(vin_mask, maker, model, series, frequency)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for k, freq := range counts {
			if _, err := stmt.ExecContext(ctx, k.mask, k.maker, k.model, k.series, freq); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	return len(counts), nil
}
