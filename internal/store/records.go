package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Record is one processed (vehicle, item) pair. Empty strings and zero years
// are persisted as NULL.
type Record struct {
	VIN            string
	Maker          string
	Model          int
	Series         string
	Descripcion    string
	NormalizedDesc string
	Referencia     string
}

// InsertRecord writes a record, reporting inserted=false when the
// (vin, descripcion, referencia) unique constraint rejects it as a duplicate.
// Duplicates are counted by the caller, never treated as failures.
func (s *Store) InsertRecord(ctx context.Context, r Record) (inserted bool, err error) {
	var model any
	if r.Model > 0 {
		model = r.Model
	}
	err = s.withRetry(ctx, "insert record", func() error {
		_, execErr := s.db.ExecContext(ctx, `
			INSERT INTO processed_consolidado
				(vin_number, maker, model, series, descripcion, normalized_descripcion, referencia)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			nullStr(r.VIN), nullStr(r.Maker), model, nullStr(r.Series),
			nullStr(r.Descripcion), nullStr(r.NormalizedDesc), nullStr(r.Referencia))
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLITE_CONSTRAINT")
}

// Stats are the record counts reported after a processing run.
type Stats struct {
	TotalRecords     int
	VINTrainingReady int
	SKUTrainingReady int
	YearRanges       int
	VINPrefixRows    int
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		dst   *int
		query string
	}{
		{&st.TotalRecords, `SELECT COUNT(*) FROM processed_consolidado`},
		{&st.VINTrainingReady, `SELECT COUNT(*) FROM processed_consolidado
			WHERE vin_number IS NOT NULL AND maker IS NOT NULL
			AND model IS NOT NULL AND series IS NOT NULL`},
		{&st.SKUTrainingReady, `SELECT COUNT(*) FROM processed_consolidado
			WHERE maker IS NOT NULL AND model IS NOT NULL AND series IS NOT NULL
			AND descripcion IS NOT NULL AND referencia IS NOT NULL`},
		{&st.YearRanges, `SELECT COUNT(*) FROM sku_year_ranges`},
		{&st.VINPrefixRows, `SELECT COUNT(*) FROM vin_prefix_frequencies`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil && err != sql.ErrNoRows {
			return Stats{}, fmt.Errorf("stats: %w", err)
		}
	}
	return st, nil
}
