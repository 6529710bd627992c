package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku-service/internal/normalize"
	"sku-service/internal/rules"
	"sku-service/internal/store"
)

func testProcessor(t *testing.T) (*Processor, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), true, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	rs := &rules.Set{
		Abbreviations: map[string]string{"izq": "izquierdo"},
		NounGender:    map[string]rules.Gender{"farola": rules.Feminine},
		SeriesExact:   map[rules.SeriesKey]string{{Maker: "*", Variant: "CX30"}: "CX-30"},
	}
	rs.Seal()

	return NewProcessor(normalize.New(rs), st, 1990, zerolog.Nop()), st
}

func writeFeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestProcessorRun(t *testing.T) {
	p, st := testProcessor(t)

	path := writeFeed(t, `[
		{"vin_number": "JM3KE4CY5G0111222", "maker": "Mazda", "model": "2016.0",
		 "series": "CX30",
		 "items": [
			{"descripcion": "FAROLA IZQ", "referencia": "R100"},
			{"descripcion": "FAROLA IZQ", "referencia": "R100"},
			{"descripcion": "CAPO", "referencia": null}
		 ]},
		{"vin_number": "", "maker": "Ford", "model": 2012, "series": "Fiesta",
		 "items": [{"descripcion": "ESPEJO", "referencia": "R200"}]},
		{"vin_number": "", "maker": "Ford", "model": 2012, "series": "",
		 "items": [{"descripcion": "CAPO", "referencia": ""}]}
	]`)

	stats, err := p.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 5, stats.TotalItems)
	assert.Equal(t, 3, stats.Inserted)
	assert.Equal(t, 1, stats.SkippedDuplicates)
	assert.Equal(t, 1, stats.SkippedInsufficient)
	assert.Equal(t, 1, stats.BothTraining)
	assert.Equal(t, 1, stats.VINTrainingOnly, "valid VIN with no referencia still trains the VIN model")
	assert.Equal(t, 1, stats.SKUTrainingOnly, "no VIN but complete SKU fields still trains the SKU model")
	assert.Equal(t, 2, stats.YearRanges)
	assert.Equal(t, 1, stats.VINPrefixRows)

	// the feed series variant was canonicalized before storage and the
	// description went through the full pipeline
	got, err := st.QueryExact(context.Background(), store.RangeQuery{
		Maker: "mazda", Series: "cx-30",
		Desc: "farola izquierda", NormDesc: "farola izquierda",
		Year: 2016, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "R100", got[0].Referencia)
}

func TestProcessorStrictVINCheckDigit(t *testing.T) {
	p, _ := testProcessor(t)
	p.EnableVINCheckDigit()

	// well-formed VIN with a wrong check digit: the record degrades to
	// SKU-training only instead of being dropped
	path := writeFeed(t, `[
		{"vin_number": "JM3KE4CY5G0111222", "maker": "Mazda", "model": 2016,
		 "series": "CX30",
		 "items": [{"descripcion": "CAPO", "referencia": "R100"}]}
	]`)

	stats, err := p.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 0, stats.BothTraining)
	assert.Equal(t, 1, stats.SKUTrainingOnly)
	assert.Equal(t, 0, stats.VINPrefixRows)
}

func TestProcessorRunMissingFeed(t *testing.T) {
	p, _ := testProcessor(t)
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadWMIRegistry(t *testing.T) {
	p, _ := testProcessor(t)

	path := filepath.Join(t.TempDir(), "wmi.csv")
	require.NoError(t, os.WriteFile(path, []byte("JM3,Mazda\nKMH,Hyundai\n"), 0o644))

	p.LoadWMIRegistry(path)
	assert.Len(t, p.wmi, 2)
	_, ok := p.wmi["JM3"]
	assert.True(t, ok)

	// missing registry is silently optional
	q, _ := testProcessor(t)
	q.LoadWMIRegistry(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Empty(t, q.wmi)
}
