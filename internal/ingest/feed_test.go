package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFeed(t *testing.T) {
	feed := `[
		{"vin_number": "JM3KE4CY5G0111222", "maker": "Mazda", "model": "2016.0",
		 "series": "CX-30",
		 "items": [{"descripcion": "FAROLA IZQ", "referencia": "R100"},
		           {"descripcion": "CAPO", "referencia": 84512}]},
		{"vin_number": "", "maker": "Ford", "model": 2012, "series": "Fiesta",
		 "items": [{"descripcion": "ESPEJO DER", "referencia": null}]}
	]`

	var recs []FeedRecord
	err := decodeFeed(strings.NewReader(feed), func(r FeedRecord) error {
		recs = append(recs, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "JM3KE4CY5G0111222", recs[0].VIN)
	assert.Equal(t, flexString("2016.0"), recs[0].Model)
	require.Len(t, recs[0].Items, 2)
	assert.Equal(t, flexString("R100"), recs[0].Items[0].Referencia)
	// numeric referencia arrives as its literal digits
	assert.Equal(t, flexString("84512"), recs[0].Items[1].Referencia)

	// bare-number model and null referencia both decode cleanly
	assert.Equal(t, flexString("2012"), recs[1].Model)
	assert.Equal(t, flexString(""), recs[1].Items[0].Referencia)
}

func TestDecodeFeedRejectsNonArray(t *testing.T) {
	err := decodeFeed(strings.NewReader(`{"vin_number": "X"}`), func(FeedRecord) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON array")
}

func TestDecodeFeedPropagatesCallbackError(t *testing.T) {
	feed := `[{"maker": "Mazda"}, {"maker": "Ford"}]`
	calls := 0
	err := decodeFeed(strings.NewReader(feed), func(FeedRecord) error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls, "decoding stops at the first callback error")
}
