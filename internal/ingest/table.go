package ingest

import (
	"fmt"
	"math"
	"strings"
)

// ColumnKind classifies a column's storage kind, independent of any
// business meaning attached to it later by schema inference.
type ColumnKind string

const (
	KindNumeric  ColumnKind = "numeric"
	KindText     ColumnKind = "text"
	KindDateLike ColumnKind = "date"
	KindUnknown  ColumnKind = "unknown"
)

// Column is an ordered sequence of cell values of a single storage kind.
// Values always holds the canonical textual form of every cell; an empty
// string marks a missing value. When Kind is KindNumeric, Floats holds the
// materialized numeric values in parallel, with NaN marking missing cells.
type Column struct {
	Name   string
	Kind   ColumnKind
	Values []string
	Floats []float64
}

// Missing reports whether the cell at row i has no value.
func (c *Column) Missing(i int) bool {
	return strings.TrimSpace(c.Values[i]) == ""
}

// NumericValues returns the non-missing numeric values in row order.
// Returns nil for non-numeric columns.
func (c *Column) NumericValues() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Floats))
	for _, f := range c.Floats {
		if !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

// Table is an ordered set of named columns with a uniform row count.
// The row-count invariant is enforced at construction; rows with a
// mismatched field count must be dropped before a Table is built.
type Table struct {
	Columns []Column
	rows    int
}

// NewTable builds a table from a header row and data rows. Every data row
// must have exactly len(headers) fields. Duplicate header names receive a
// positional suffix so that column names stay unique.
func NewTable(headers []string, rows [][]string) (*Table, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("table requires at least one column")
	}
	for i, row := range rows {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i, len(row), len(headers))
		}
	}

	names := dedupeNames(headers)
	t := &Table{
		Columns: make([]Column, len(names)),
		rows:    len(rows),
	}
	for j, name := range names {
		values := make([]string, len(rows))
		for i := range rows {
			values[i] = strings.TrimSpace(rows[i][j])
		}
		t.Columns[j] = Column{Name: name, Kind: KindText, Values: values}
	}
	return t, nil
}

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.Columns) }

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Headers returns the column names in order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i := range t.Columns {
		out[i] = t.Columns[i].Name
	}
	return out
}

// Row renders row i as a slice of textual cells.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for j := range t.Columns {
		out[j] = t.Columns[j].Values[i]
	}
	return out
}

// DropBlank removes rows whose every cell is blank and columns whose every
// value is blank. Returns the number of rows and columns removed.
func (t *Table) DropBlank() (rowsDropped, colsDropped int) {
	keepRows := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		blank := true
		for j := range t.Columns {
			if !t.Columns[j].Missing(i) {
				blank = false
				break
			}
		}
		if !blank {
			keepRows = append(keepRows, i)
		}
	}
	if len(keepRows) != t.rows {
		rowsDropped = t.rows - len(keepRows)
		for j := range t.Columns {
			col := &t.Columns[j]
			values := make([]string, len(keepRows))
			for n, i := range keepRows {
				values[n] = col.Values[i]
			}
			col.Values = values
			if col.Floats != nil {
				floats := make([]float64, len(keepRows))
				for n, i := range keepRows {
					floats[n] = col.Floats[i]
				}
				col.Floats = floats
			}
		}
		t.rows = len(keepRows)
	}

	kept := t.Columns[:0]
	for j := range t.Columns {
		empty := true
		for i := 0; i < t.rows; i++ {
			if !t.Columns[j].Missing(i) {
				empty = false
				break
			}
		}
		if empty {
			colsDropped++
			continue
		}
		kept = append(kept, t.Columns[j])
	}
	t.Columns = kept
	return rowsDropped, colsDropped
}

// dedupeNames disambiguates duplicate header names with a numeric suffix,
// so "Price", "Price" becomes "Price", "Price_2". A synthesized suffix can
// collide with a real header ("Price", "Price_2", "Price"), so candidates
// keep incrementing until the name is genuinely unused.
func dedupeNames(headers []string) []string {
	seen := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1
		out[i] = name
	}
	return out
}
