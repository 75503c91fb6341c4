package ingest

import "fmt"

// ErrorKind identifies the terminal failure mode of an ingestion call.
// Internally distinct causes exist even though callers historically saw a
// single message string; the kind is what HTTP handlers map to status codes.
type ErrorKind string

const (
	// ErrUnsupportedFormat means the filename extension selects no decode path.
	ErrUnsupportedFormat ErrorKind = "unsupported_format"
	// ErrUndecodable means no encoding in the fallback chain produced text.
	ErrUndecodable ErrorKind = "undecodable"
	// ErrEmptySheet means the spreadsheet decoded to zero rows or columns.
	ErrEmptySheet ErrorKind = "empty_sheet"
	// ErrSheetCorrupt means the spreadsheet collaborator rejected the bytes.
	ErrSheetCorrupt ErrorKind = "sheet_corrupt"
	// ErrUnparseable means no delimiter was plausible and every fallback
	// parse came back empty.
	ErrUnparseable ErrorKind = "unparseable"
	// ErrNoRows means the manual tokenizer dropped every data row.
	ErrNoRows ErrorKind = "no_rows"
	// ErrEmptyAfterCleanup means the table became empty once fully-blank
	// rows and columns were removed.
	ErrEmptyAfterCleanup ErrorKind = "empty_after_cleanup"
)

// Error is the value-level failure returned by the ingestion pipeline.
// No partial table ever accompanies an Error.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the ErrorKind from err, or "" when err is not an
// ingestion error.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}
