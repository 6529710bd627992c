package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// flexString tolerates the type drift in real feeds: the same field arrives
// as a string in one export and as a bare number in the next.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// FeedItem is one line item within a transaction record.
type FeedItem struct {
	Descripcion string     `json:"descripcion"`
	Referencia  flexString `json:"referencia"`
}

// FeedRecord is one raw transaction: a vehicle plus its line items.
type FeedRecord struct {
	VIN    string     `json:"vin_number"`
	Maker  string     `json:"maker"`
	Model  flexString `json:"model"`
	Series string     `json:"series"`
	Items  []FeedItem `json:"items"`
}

// decodeFeed streams a JSON array of records, invoking fn per record. The
// whole feed is never held in memory.
func decodeFeed(r io.Reader, fn func(FeedRecord) error) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("feed: expected JSON array, got %v", tok)
	}

	for dec.More() {
		var rec FeedRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("feed: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing ']'
	return err
}
