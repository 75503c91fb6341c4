package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"time"

	"tabcast/internal/ingest"
)

// missingSentinel is how missing values render in the row sample.
const missingSentinel = "N/A"

// Summarizer builds the single analysis artifact consumed by the forecast
// layer and the caller's UI. One Summary per ingestion call, immutable
// after construction, never cached.
type Summarizer struct {
	logger     *slog.Logger
	sampleRows int
	dateFormat string
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	SampleRows int    // Number of rows included in the Summary sample
	DateFormat string // Format for date strings in output
}

// DefaultSummarizerConfig returns the configuration used by the upload
// workflow.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		SampleRows: 3,
		DateFormat: "2006-01-02",
	}
}

// ColumnInfo describes one column's name and storage kind.
type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// PriceStats are the price-column statistics. Latest is the value in the
// FIRST row, not the last: uploads are assumed sorted descending by date,
// so the top row is the most recent observation. Downstream consumers
// depend on this convention.
type PriceStats struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Latest   float64 `json:"latest"`
	Previous float64 `json:"previous"`
	// Delta is latest minus previous, and exactly 0 (still present) when
	// the column has a single value.
	Delta float64 `json:"delta"`
	Count int     `json:"count"`
}

// DateStats are the date-column statistics.
type DateStats struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
	SpanDays int    `json:"span_days"`
}

// Summary is the derived, read-only snapshot of one ingested table.
// Price and Dates are independently optional: each is omitted, not
// zero-filled, when its precondition fails.
type Summary struct {
	Label    string       `json:"label"`
	Strategy string       `json:"strategy,omitempty"`
	Rows     int          `json:"rows"`
	Cols     int          `json:"cols"`
	Columns  []ColumnInfo `json:"columns"`
	Sample   [][]string   `json:"sample"`
	Schema   SchemaGuess  `json:"schema"`
	Price    *PriceStats  `json:"price,omitempty"`
	Dates    *DateStats   `json:"dates,omitempty"`
}

// NewSummarizer creates a summary builder with the given configuration.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SampleRows <= 0 {
		config.SampleRows = 3
	}
	if config.DateFormat == "" {
		config.DateFormat = "2006-01-02"
	}
	return &Summarizer{
		logger:     logger,
		sampleRows: config.SampleRows,
		dateFormat: config.DateFormat,
	}
}

// Build computes the Summary for a recovered table and its schema guess.
// It never fails on missing optional data; every statistic checks its own
// precondition.
func (s *Summarizer) Build(ctx context.Context, t *ingest.Table, schema SchemaGuess, label string) *Summary {
	summary := &Summary{
		Label:   label,
		Rows:    t.Rows(),
		Cols:    t.Cols(),
		Columns: columnInfos(t),
		Sample:  s.sample(t),
		Schema:  schema,
	}

	if schema.HasPrice() {
		summary.Price = priceStats(&t.Columns[schema.Price.Index])
	}
	if schema.HasDate() {
		summary.Dates = s.dateStats(&t.Columns[schema.Date.Index])
	}

	s.logger.InfoContext(ctx, "summary built",
		slog.String("label", label),
		slog.Int("rows", summary.Rows),
		slog.Int("cols", summary.Cols),
		slog.Bool("has_price", summary.Price != nil),
		slog.Bool("has_dates", summary.Dates != nil))

	return summary
}

func columnInfos(t *ingest.Table) []ColumnInfo {
	infos := make([]ColumnInfo, t.Cols())
	for i := range t.Columns {
		infos[i] = ColumnInfo{Name: t.Columns[i].Name, Kind: string(t.Columns[i].Kind)}
	}
	return infos
}

// sample renders the first rows as text, substituting the sentinel for
// missing values.
func (s *Summarizer) sample(t *ingest.Table) [][]string {
	n := s.sampleRows
	if t.Rows() < n {
		n = t.Rows()
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := t.Row(i)
		for j, cell := range row {
			if cell == "" {
				row[j] = missingSentinel
			}
		}
		rows[i] = row
	}
	return rows
}

// priceStats computes statistics over the non-missing values of the price
// column. Returns nil when the column has no usable values; delta is
// exactly zero when it has one.
func priceStats(c *ingest.Column) *PriceStats {
	values := numericSeries(c)
	if len(values) == 0 {
		return nil
	}

	stats := &PriceStats{
		Min:    values[0],
		Max:    values[0],
		Latest: values[0],
		Count:  len(values),
	}
	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Mean = sum / float64(len(values))

	if len(values) >= 2 {
		stats.Previous = values[1]
		stats.Delta = stats.Latest - stats.Previous
	}
	return stats
}

// numericSeries extracts non-missing numeric values in row order. Text
// columns chosen by keyword still yield whatever values coerce.
func numericSeries(c *ingest.Column) []float64 {
	if c.Kind == ingest.KindNumeric {
		return c.NumericValues()
	}
	var out []float64
	for i := range c.Values {
		if c.Missing(i) {
			continue
		}
		if f, ok := ingest.CoerceNumeric(c.Values[i]); ok {
			out = append(out, f)
		}
	}
	return out
}

// dateStats parses every value of the date column and reports the
// earliest, latest, and whole-day span. Returns nil when nothing parses.
func (s *Summarizer) dateStats(c *ingest.Column) *DateStats {
	var earliest, latest time.Time
	var found bool
	for i := range c.Values {
		if c.Missing(i) {
			continue
		}
		ts, ok := ParseDate(c.Values[i])
		if !ok {
			continue
		}
		if !found {
			earliest, latest = ts, ts
			found = true
			continue
		}
		if ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	if !found {
		return nil
	}
	return &DateStats{
		Earliest: earliest.Format(s.dateFormat),
		Latest:   latest.Format(s.dateFormat),
		SpanDays: int(math.Round(latest.Sub(earliest).Hours() / 24)),
	}
}
