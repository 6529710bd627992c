// Package ingest turns the raw consolidado feed into the historical store:
// VIN cleaning, series and text normalization per record, then year-range
// aggregation and VIN prefix rebuild over the whole batch.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sku-service/internal/fileio"
	"sku-service/internal/normalize"
	"sku-service/internal/store"
	"sku-service/internal/utils"
)

type Processor struct {
	norm      *normalize.Normalizer
	store     *store.Store
	logger    zerolog.Logger
	minYear   int
	strictVIN bool
	wmi       map[string]struct{} // known WMI codes, optional
}

func NewProcessor(norm *normalize.Normalizer, st *store.Store, minYear int, logger zerolog.Logger) *Processor {
	return &Processor{norm: norm, store: st, logger: logger, minYear: minYear}
}

// EnableVINCheckDigit additionally rejects VINs failing the ISO 3779 checksum.
// Off by default: many genuine VINs in the feed fail it.
func (p *Processor) EnableVINCheckDigit() { p.strictVIN = true }

// LoadWMIRegistry reads the optional WMI registry CSV. Unknown WMIs in the
// feed are then logged during processing. A missing file is not an error.
func (p *Processor) LoadWMIRegistry(path string) {
	rows, err := fileio.ReadCSV(path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.Warn().Err(err).Str("path", path).Msg("could not read WMI registry")
		}
		return
	}
	p.wmi = make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(row[0]))
		if len(code) >= 3 {
			p.wmi[code[:3]] = struct{}{}
		}
	}
	p.logger.Info().Int("wmi_codes", len(p.wmi)).Msg("WMI registry loaded")
}

// RunStats counts processing outcomes for one batch run.
type RunStats struct {
	TotalRecords        int
	TotalItems          int
	Inserted            int
	SkippedInsufficient int
	SkippedDuplicates   int
	VINTrainingOnly     int
	SKUTrainingOnly     int
	BothTraining        int
	YearRanges          int
	VINPrefixRows       int
}

// Run processes the feed at path end to end: per-record normalization and
// insertion, then the aggregation rebuilds. A missing feed is fatal.
func (p *Processor) Run(ctx context.Context, path string) (RunStats, error) {
	var stats RunStats
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	err = decodeFeed(f, func(rec FeedRecord) error {
		stats.TotalRecords++
		return p.processRecord(ctx, rec, &stats)
	})
	if err != nil {
		return stats, err
	}

	maxYear := time.Now().Year() + 2
	ranges, err := p.store.AggregateYearRanges(ctx, p.minYear, maxYear)
	if err != nil {
		return stats, err
	}
	stats.YearRanges = ranges

	prefixes, err := p.store.RebuildVinPrefixFrequencies(ctx)
	if err != nil {
		return stats, err
	}
	stats.VINPrefixRows = prefixes

	elapsed := time.Since(start)
	rate := float64(stats.TotalRecords) / elapsed.Seconds()
	p.logger.Info().
		Int("records", stats.TotalRecords).
		Int("items", stats.TotalItems).
		Int("inserted", stats.Inserted).
		Int("skipped_insufficient", stats.SkippedInsufficient).
		Int("skipped_duplicates", stats.SkippedDuplicates).
		Int("vin_training", stats.VINTrainingOnly).
		Int("sku_training", stats.SKUTrainingOnly).
		Int("both_training", stats.BothTraining).
		Int("year_ranges", stats.YearRanges).
		Int("vin_prefix_rows", stats.VINPrefixRows).
		Dur("elapsed", elapsed).
		Float64("rate_rec_s", rate).
		Msg("processing complete")

	return stats, nil
}

func (p *Processor) processRecord(ctx context.Context, rec FeedRecord, stats *RunStats) error {
	// canonicalize once per vehicle, not per line item
	vin, vinOK := normalize.CleanVINForTraining(rec.VIN)
	if vinOK && p.strictVIN && !normalize.ValidVINCheckDigit(vin) {
		p.logger.Debug().Str("vin", vin).Msg("check digit mismatch")
		vin, vinOK = "", false
	}

	if vinOK && len(p.wmi) > 0 {
		if _, known := p.wmi[vin[:3]]; !known {
			p.logger.Warn().Str("wmi", vin[:3]).Str("vin_prefix", vin[:11]).Msg("unknown WMI")
		}
	}

	maker := strings.ToLower(strings.TrimSpace(rec.Maker))
	series := strings.ToLower(strings.TrimSpace(rec.Series))
	year, _ := utils.ParseYear(string(rec.Model))

	if series != "" {
		if canonical := p.norm.SeriesExact(maker, series); canonical != series {
			p.logger.Debug().Str("maker", maker).Str("from", series).Str("to", canonical).Msg("series normalized")
			series = strings.ToLower(canonical)
		}
	}

	for _, item := range rec.Items {
		stats.TotalItems++

		desc := strings.ToLower(strings.TrimSpace(item.Descripcion))
		ref := strings.TrimSpace(string(item.Referencia))

		goodForVIN := vinOK && maker != "" && year > 0 && series != ""
		goodForSKU := maker != "" && year > 0 && series != "" && desc != "" && ref != ""
		if !goodForVIN && !goodForSKU {
			stats.SkippedInsufficient++
			continue
		}

		var normalized string
		if desc != "" {
			normalized = strings.ToLower(p.norm.Text(p.norm.UserCorrect(desc)))
		}

		inserted, err := p.store.InsertRecord(ctx, store.Record{
			VIN:            vin,
			Maker:          maker,
			Model:          year,
			Series:         series,
			Descripcion:    desc,
			NormalizedDesc: normalized,
			Referencia:     ref,
		})
		if err != nil {
			return err
		}
		if !inserted {
			stats.SkippedDuplicates++
			continue
		}
		stats.Inserted++

		switch {
		case goodForVIN && goodForSKU:
			stats.BothTraining++
		case goodForVIN:
			stats.VINTrainingOnly++
		default:
			stats.SKUTrainingOnly++
		}
	}
	return nil
}
