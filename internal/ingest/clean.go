package ingest

import (
	"math"
	"strconv"
	"strings"
)

// numericJunk removes the characters financial exports wrap numbers in:
// straight quotes and thousands-separator commas, so `"3,312.14"` cleans
// to `3312.14`.
var numericJunk = strings.NewReplacer(`"`, "", `'`, "", ",", "")

// CleanColumns runs the column cleaner over every text-kind column of the
// table: strip quote and thousands-separator characters, then promote the
// column to numeric when more than half of its non-missing values coerce.
// Columns below the threshold keep their cleaned text values.
func CleanColumns(t *Table) {
	for i := range t.Columns {
		cleanColumn(&t.Columns[i])
	}
}

func cleanColumn(c *Column) {
	if c.Kind != KindText && c.Kind != KindUnknown {
		return
	}

	cleaned := make([]string, len(c.Values))
	floats := make([]float64, len(c.Values))
	var nonMissing, coerced int
	for i, v := range c.Values {
		cv := strings.TrimSpace(numericJunk.Replace(v))
		cleaned[i] = cv
		floats[i] = math.NaN()
		if cv == "" {
			continue
		}
		nonMissing++
		if f, err := strconv.ParseFloat(cv, 64); err == nil {
			floats[i] = f
			coerced++
		}
	}

	// Promotion requires a strict majority of non-missing values.
	if nonMissing > 0 && coerced*2 > nonMissing {
		c.Kind = KindNumeric
		c.Values = cleaned
		c.Floats = floats
	}
}

// CoerceNumeric cleans a single cell value and attempts numeric coercion.
func CoerceNumeric(v string) (float64, bool) {
	cv := strings.TrimSpace(numericJunk.Replace(v))
	if cv == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cv, 64)
	return f, err == nil
}

// NumericRatio reports the fraction of a column's non-missing values that
// coerce to a number after cleaning. Used by schema inference as the
// type-based fallback signal.
func NumericRatio(c *Column) float64 {
	if c.Kind == KindNumeric {
		return 1
	}
	var nonMissing, coerced int
	for _, v := range c.Values {
		cv := strings.TrimSpace(numericJunk.Replace(v))
		if cv == "" {
			continue
		}
		nonMissing++
		if _, err := strconv.ParseFloat(cv, 64); err == nil {
			coerced++
		}
	}
	if nonMissing == 0 {
		return 0
	}
	return float64(coerced) / float64(nonMissing)
}
