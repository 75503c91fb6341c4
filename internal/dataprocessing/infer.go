package dataprocessing

import (
	"strings"
	"time"

	"tabcast/internal/ingest"
)

// Provenance records how a schema role was bound to a column, for
// diagnostics: matched by header keyword, inferred from value types, or
// named explicitly by the caller.
type Provenance string

const (
	ProvenanceKeyword  Provenance = "keyword"
	ProvenanceType     Provenance = "type"
	ProvenanceOverride Provenance = "override"
)

// ColumnRef points at a concrete column chosen for an abstract role.
type ColumnRef struct {
	Index      int        `json:"index"`
	Name       string     `json:"name"`
	Provenance Provenance `json:"provenance"`
}

// SchemaGuess is the inferred mapping from the price and date roles to
// table columns. Either role may be absent; dependent statistics are then
// omitted rather than zero-defaulted.
type SchemaGuess struct {
	Price *ColumnRef `json:"price,omitempty"`
	Date  *ColumnRef `json:"date,omitempty"`
}

// HasPrice reports whether a price column was found.
func (g SchemaGuess) HasPrice() bool { return g.Price != nil }

// HasDate reports whether a date column was found.
func (g SchemaGuess) HasDate() bool { return g.Date != nil }

// priceKeywords and dateKeywords are matched as substrings of lowercased
// headers. Treated as immutable constants; never mutated after init.
var (
	priceKeywords = []string{"price", "close", "last", "value", "high", "low", "open"}
	dateKeywords  = []string{"date", "time", "datetime", "timestamp"}
)

// dateSampleSize is how many non-missing values must all parse as dates
// for a column to be considered date-like.
const dateSampleSize = 5

// dateLayouts covers the formats financial exports actually use. Tried in
// order; first success wins per value.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// InferSchema scores each column against the price and date keyword lists
// and falls back to value-type heuristics when no header matches.
func InferSchema(t *ingest.Table) SchemaGuess {
	return SchemaGuess{
		Price: inferPrice(t),
		Date:  inferDate(t),
	}
}

// inferPrice selects the price column. Priority order, first match wins:
// header keyword, then first mostly-numeric column, then first column
// whose storage kind is already numeric.
func inferPrice(t *ingest.Table) *ColumnRef {
	if ref := matchKeyword(t, priceKeywords); ref != nil {
		return ref
	}
	for i := range t.Columns {
		if ingest.NumericRatio(&t.Columns[i]) > 0.5 {
			return &ColumnRef{Index: i, Name: t.Columns[i].Name, Provenance: ProvenanceType}
		}
	}
	for i := range t.Columns {
		if t.Columns[i].Kind == ingest.KindNumeric {
			return &ColumnRef{Index: i, Name: t.Columns[i].Name, Provenance: ProvenanceType}
		}
	}
	return nil
}

// inferDate selects the date column: header keyword first, then the first
// column whose sampled values all parse as dates.
func inferDate(t *ingest.Table) *ColumnRef {
	if ref := matchKeyword(t, dateKeywords); ref != nil {
		return ref
	}
	for i := range t.Columns {
		if isDateLike(&t.Columns[i]) {
			return &ColumnRef{Index: i, Name: t.Columns[i].Name, Provenance: ProvenanceType}
		}
	}
	return nil
}

func matchKeyword(t *ingest.Table, keywords []string) *ColumnRef {
	for i := range t.Columns {
		header := strings.ToLower(t.Columns[i].Name)
		for _, kw := range keywords {
			if strings.Contains(header, kw) {
				return &ColumnRef{Index: i, Name: t.Columns[i].Name, Provenance: ProvenanceKeyword}
			}
		}
	}
	return nil
}

// isDateLike samples up to dateSampleSize non-missing values and requires
// every one of them to parse as a date.
func isDateLike(c *ingest.Column) bool {
	if c.Kind == ingest.KindNumeric {
		return false
	}
	var sampled int
	for i := range c.Values {
		if c.Missing(i) {
			continue
		}
		if _, ok := ParseDate(c.Values[i]); !ok {
			return false
		}
		sampled++
		if sampled == dateSampleSize {
			break
		}
	}
	return sampled > 0
}

// ParseDate parses a cell value against the known date layouts.
func ParseDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
