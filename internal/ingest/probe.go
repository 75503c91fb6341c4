package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// candidateDelimiters is the ordered list tried by the prober. Order is
// behaviorally significant: the first candidate producing a plausible
// table wins, there is no cross-candidate scoring.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// Probe tries each candidate delimiter in order and returns the first
// plausible table. ok is false when every candidate was rejected, which
// sends the caller to the headerless fallback, not to a terminal error.
// A non-nil err reports a hard parse failure, which routes the caller to
// the manual tokenizer instead.
func Probe(text string) (table *Table, ok bool, err error) {
	firstLine := rawFirstLine(text)
	var hardErr error

	for _, delim := range candidateDelimiters {
		records, err := readAll(text, delim)
		if err != nil {
			hardErr = err
			continue
		}
		if len(records) == 0 || len(records[0]) == 0 {
			continue
		}
		if !plausible(records[0], firstLine) {
			continue
		}
		t, err := tableFromRecords(records[0], records[1:])
		if err != nil {
			hardErr = err
			continue
		}
		return t, true, nil
	}
	return nil, false, hardErr
}

// plausible implements the acceptance predicate: more than one column, or
// a single column whose parsed first cell differs from the raw first line
// of text, evidence that the delimiter (or quoting) actually changed
// something rather than not splitting at all.
func plausible(header []string, firstLine string) bool {
	if len(header) > 1 {
		return true
	}
	return header[0] != firstLine
}

// ParseHeaderless re-parses with the comma delimiter treating every row as
// data, synthesizing positional column names. It is the last structured
// fallback on the delimited-text path.
func ParseHeaderless(text string) (*Table, error) {
	records, err := readAll(text, ',')
	if err != nil {
		return nil, wrapError(ErrUnparseable, err, "could not parse file as delimited text")
	}
	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	if len(records) == 0 || width == 0 {
		return nil, newError(ErrUnparseable, "could not extract any tabular data from file")
	}

	headers := make([]string, width)
	for i := range headers {
		headers[i] = positionalName(i)
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = padRow(rec, width)
	}
	return NewTable(headers, rows)
}

// positionalName names the i-th synthesized column, zero-based in, one-based out.
func positionalName(i int) string {
	return fmt.Sprintf("Column_%d", i+1)
}

// readAll parses text as delimiter-separated records. Ragged rows are
// tolerated here; the table constructor or the caller decides their fate.
func readAll(text string, delim rune) ([][]string, error) {
	// Strict quoting: malformed quotes are a hard parse failure, which is
	// what routes the pipeline to the manual tokenizer.
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// tableFromRecords builds a table from a header record and data records,
// normalizing ragged data rows to the header width.
func tableFromRecords(header []string, data [][]string) (*Table, error) {
	rows := make([][]string, len(data))
	for i, rec := range data {
		rows[i] = padRow(rec, len(header))
	}
	return NewTable(header, rows)
}

// rawFirstLine returns the first line of text without its line ending.
func rawFirstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r")
}
