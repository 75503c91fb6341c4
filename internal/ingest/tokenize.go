package ingest

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// tokenizerDelimiters is the candidate set scored by the manual tokenizer.
// Scoring uses a strict greater-than, so ties break toward the earliest
// entry.
var tokenizerDelimiters = []string{",", ";", "\t", "|", " "}

// ManualParse is the last-resort tokenizer, reached when structured
// parsing fails outright. It re-decodes the raw bytes itself, scores
// delimiters by the field count they produce on line one, and drops any
// row whose field count differs from the header's, tolerating truncated
// or corrupt trailing rows without failing the whole parse.
func ManualParse(raw []byte) (*Table, error) {
	lines, err := tokenizerDecode(raw)
	if err != nil {
		return nil, err
	}

	delim := bestDelimiter(lines[0])
	headers := splitFields(lines[0], delim)

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line, delim)
		if len(fields) != len(headers) {
			continue
		}
		rows = append(rows, fields)
	}
	if len(rows) == 0 {
		return nil, newError(ErrNoRows, "no usable data rows found in file")
	}
	return NewTable(headers, rows)
}

// tokenizerDecode tries the tokenizer's own encoding chain and returns the
// lines of the first decoding that yields at least two non-empty lines.
func tokenizerDecode(raw []byte) ([]string, error) {
	raw = trimBOM(raw)
	for _, decode := range tokenizerEncodings {
		text, ok := decode(raw)
		if !ok {
			continue
		}
		lines := nonEmptyLines(text)
		if len(lines) >= 2 {
			return lines, nil
		}
	}
	return nil, newError(ErrUnparseable, "could not recover at least two lines of text from file")
}

// tokenizerEncodings is the tokenizer's ordered encoding chain: UTF-8,
// Latin-1, Windows-1252, then strict ASCII. Latin-1 never fails, so the
// later entries are ordering documentation more than reachable fallbacks.
var tokenizerEncodings = []func([]byte) (string, bool){
	func(b []byte) (string, bool) {
		return string(b), utf8.Valid(b)
	},
	func(b []byte) (string, bool) {
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		return string(out), err == nil
	},
	func(b []byte) (string, bool) {
		out, err := charmap.Windows1252.NewDecoder().Bytes(b)
		return string(out), err == nil
	},
	func(b []byte) (string, bool) {
		for _, c := range b {
			if c > 0x7F {
				return "", false
			}
		}
		return string(b), true
	},
}

func trimBOM(raw []byte) []byte {
	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		return raw[3:]
	}
	return raw
}

// bestDelimiter scores each candidate by the number of fields it produces
// on the header line and returns the highest scorer.
func bestDelimiter(headerLine string) string {
	best := tokenizerDelimiters[0]
	bestScore := len(splitFields(headerLine, best))
	for _, d := range tokenizerDelimiters[1:] {
		if score := len(splitFields(headerLine, d)); score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func splitFields(line, delim string) []string {
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
