package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Extension extracts the lowercased filename extension used to select the
// decode path. The dot is not included.
func Extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.TrimPrefix(ext, ".")
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textFallbacks is the ordered fallback chain tried after UTF-8 on the
// delimited-text path. Latin-1 accepts any byte sequence, so in practice
// the chain never fails; ErrUndecodable is reserved for pathological
// inputs.
var textFallbacks = []encoding.Encoding{
	charmap.ISO8859_1,
}

// DecodeText converts raw bytes to text, trying UTF-8 first and then each
// encoding in the fallback chain, stripping a leading byte-order mark when
// present.
func DecodeText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	for _, enc := range textFallbacks {
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		return string(decoded), nil
	}
	return "", newError(ErrUndecodable, "could not decode file contents with any supported encoding")
}

// DecodeSpreadsheet opens an Excel workbook from raw bytes and returns the
// first sheet containing data as a table. Sheets are probed in workbook
// order; ragged rows are padded or truncated to the header width, which is
// how spreadsheets represent trailing empty cells.
func DecodeSpreadsheet(raw []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, wrapError(ErrSheetCorrupt, err, "could not open spreadsheet")
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 || len(rows[0]) == 0 {
			continue
		}
		headers := rows[0]
		data := make([][]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			data = append(data, padRow(row, len(headers)))
		}
		table, err := NewTable(headers, data)
		if err != nil {
			continue
		}
		return table, nil
	}
	return nil, newError(ErrEmptySheet, "spreadsheet contains no data")
}

// padRow normalizes a ragged spreadsheet row to the given width.
func padRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
