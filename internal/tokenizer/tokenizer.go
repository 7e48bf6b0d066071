package tokenizer

import (
	"errors"
	"io"
)

// fieldChunk is the growth step of the field accumulation buffer.
const fieldChunk = 1024

// Options configures the scanner bytes.
type Options struct {
	// Comma is the field separator. Default: ','
	Comma byte
	// Terminator is the record separator. Ignored when AutoTerminator is set.
	Terminator byte
	// AutoTerminator ends records on LF and strips one preceding CR. Default: true
	AutoTerminator bool
	// Quote is the quote character. Default: '"'
	Quote byte
}

// DefaultOptions returns default tokenizer options.
func DefaultOptions() Options {
	return Options{
		Comma:          ',',
		AutoTerminator: true,
		Quote:          '"',
	}
}

// FieldReader scans fields out of a byte source one at a time.
//
// The column counter starts at -1 and is incremented by every ReadField call,
// so the first field of a row is column 0. Callers reset it at the start of
// each row. A FieldReader is not safe for concurrent use.
type FieldReader struct {
	src      io.ByteReader
	opts     Options
	col      int
	buf      []byte
	consumed int
}

// NewFieldReader creates a FieldReader over src.
func NewFieldReader(src io.ByteReader, opts Options) *FieldReader {
	return &FieldReader{
		src:  src,
		opts: opts,
		col:  -1,
		buf:  make([]byte, 0, fieldChunk),
	}
}

// Reset starts a new row.
func (r *FieldReader) Reset() {
	r.col = -1
}

// Column returns the index of the field returned by the last ReadField call.
func (r *FieldReader) Column() int {
	return r.col
}

// Consumed returns the number of source bytes read by the last ReadField or SkipRow call.
func (r *FieldReader) Consumed() int {
	return r.consumed
}

// ReadField reads the next field and the terminator that ended it.
//
// The returned slice is only valid until the next call. At end of input the
// accumulated bytes are returned with EndOfStream; an empty field with
// EndOfStream on the first column of a row means no row was left.
// A non-nil error is a read failure from the source other than io.EOF.
func (r *FieldReader) ReadField() ([]byte, Terminator, error) {
	r.col++
	r.buf = r.buf[:0]
	term, err := r.scan(true)
	return r.buf, term, err
}

// SkipRow discards input through the end of the current row.
// It returns RecordSep or EndOfStream.
func (r *FieldReader) SkipRow() (Terminator, error) {
	return r.scan(false)
}

// scan runs the quoting state machine. With keep set it accumulates the
// field and stops at either separator; otherwise it discards bytes and
// stops only at the record separator.
func (r *FieldReader) scan(keep bool) (Terminator, error) {
	o := r.opts
	dropNUL := o.Comma != 0 && (o.AutoTerminator || o.Terminator != 0)
	quoted := false
	r.consumed = 0

	for {
		c, err := r.next()
		if err != nil {
			return EndOfStream, sourceErr(err)
		}
		if c == 0 && dropNUL {
			continue
		}

		if quoted {
			if c != o.Quote {
				r.add(keep, c)
				continue
			}
			// Closing quote or doubled quote: look at one more byte.
			c, err = r.next()
			if err != nil {
				return EndOfStream, sourceErr(err)
			}
			if c == o.Quote {
				r.add(keep, c)
				continue
			}
			quoted = false
			// The lookahead byte falls through as an unquoted byte.
		}

		switch {
		case c == o.Comma:
			if keep {
				return FieldSep, nil
			}
		case !o.AutoTerminator && c == o.Terminator:
			return RecordSep, nil
		case o.AutoTerminator && c == '\n':
			if keep && len(r.buf) > 0 && r.buf[len(r.buf)-1] == '\r' {
				r.buf = r.buf[:len(r.buf)-1]
			}
			return RecordSep, nil
		case c == o.Quote:
			quoted = true
		default:
			r.add(keep, c)
		}
	}
}

func (r *FieldReader) next() (byte, error) {
	c, err := r.src.ReadByte()
	if err != nil {
		return 0, err
	}
	r.consumed++
	return c, nil
}

func (r *FieldReader) add(keep bool, c byte) {
	if !keep {
		return
	}
	if len(r.buf) == cap(r.buf) {
		grown := make([]byte, len(r.buf), cap(r.buf)+fieldChunk)
		copy(grown, r.buf)
		r.buf = grown
	}
	r.buf = append(r.buf, c)
}

// sourceErr maps io.EOF to a clean end of stream.
func sourceErr(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
