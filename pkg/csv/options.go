package csv

import (
	"fmt"

	"github.com/shapestone/shape-csvrow/internal/tokenizer"
)

// Dialect configures the bytes that delimit fields and records.
// A Dialect is fixed for the lifetime of a Reader or Encoder.
type Dialect struct {
	// Comma is the field separator. NUL is allowed.
	// Default: ','
	Comma byte

	// Terminator is the record separator. Ignored when AutoTerminator is true.
	Terminator byte

	// AutoTerminator ends records on "\n" and strips a preceding "\r".
	// The encoder writes "\r\n".
	// Default: true
	AutoTerminator bool

	// Quote is the quote character.
	// Default: '"'
	Quote byte
}

// DefaultDialect returns the default dialect: comma, CRLF or LF, double quote.
func DefaultDialect() Dialect {
	return Dialect{
		Comma:          ',',
		AutoTerminator: true,
		Quote:          '"',
	}
}

// WithTerminator returns a copy of d that ends records on b.
func (d Dialect) WithTerminator(b byte) Dialect {
	d.Terminator = b
	d.AutoTerminator = false
	return d
}

// Validate checks that the separator and quote bytes are pairwise distinct.
// Under AutoTerminator neither Comma nor Quote may be "\n" or "\r".
func (d Dialect) Validate() error {
	term := d.Terminator
	if d.AutoTerminator {
		term = '\n'
	}
	if d.Comma == d.Quote {
		return &OptionsError{Field: "Quote", Message: fmt.Sprintf("quote %q same as field separator", d.Quote)}
	}
	if d.Comma == term {
		return &OptionsError{Field: "Comma", Message: fmt.Sprintf("field separator %q same as record separator", d.Comma)}
	}
	if d.Quote == term {
		return &OptionsError{Field: "Quote", Message: fmt.Sprintf("quote %q same as record separator", d.Quote)}
	}
	if d.AutoTerminator {
		if d.Comma == '\r' {
			return &OptionsError{Field: "Comma", Message: "field separator '\\r' conflicts with automatic record separator"}
		}
		if d.Quote == '\r' {
			return &OptionsError{Field: "Quote", Message: "quote '\\r' conflicts with automatic record separator"}
		}
	}
	return nil
}

// String describes the dialect.
func (d Dialect) String() string {
	term := "auto"
	if !d.AutoTerminator {
		term = fmt.Sprintf("%q", d.Terminator)
	}
	return fmt.Sprintf("comma=%q terminator=%s quote=%q", d.Comma, term, d.Quote)
}

func (d Dialect) tokenizerOptions() tokenizer.Options {
	return tokenizer.Options{
		Comma:          d.Comma,
		Terminator:     d.Terminator,
		AutoTerminator: d.AutoTerminator,
		Quote:          d.Quote,
	}
}

// OptionsError represents an invalid option configuration.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Message
}
