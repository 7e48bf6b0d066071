// Package tokenizer implements the byte-level field scanner shared by row reads and row skips.
package tokenizer

import "fmt"

// Terminator reports what ended a scanned field.
// Callers branch on it to continue the row, end the row, or stop reading.
type Terminator int

const (
	// FieldSep means the field separator ended the field; the row continues.
	FieldSep Terminator = iota
	// RecordSep means the record separator ended the field and the row.
	RecordSep
	// EndOfStream means the source ran out of bytes.
	EndOfStream
)

// String returns the name of the terminator.
func (t Terminator) String() string {
	switch t {
	case FieldSep:
		return "FieldSep"
	case RecordSep:
		return "RecordSep"
	case EndOfStream:
		return "EndOfStream"
	default:
		return fmt.Sprintf("Terminator(%d)", int(t))
	}
}

// EndsRow reports whether no further field of the current row follows.
func (t Terminator) EndsRow() bool {
	return t != FieldSep
}
