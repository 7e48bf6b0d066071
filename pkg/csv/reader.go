package csv

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	shapetokenizer "github.com/shapestone/shape-core/pkg/tokenizer"
	"github.com/shapestone/shape-csvrow/internal/selection"
	"github.com/shapestone/shape-csvrow/internal/tokenizer"
)

// Reader binds one row at a time from a byte source into destinations.
//
// Each Read call consumes exactly one row. Fields are routed into
// positional names (ReadScalars), an indexed collection (ReadIndexed) or a
// keyed collection (ReadKeyed). A column selection filters which fields are
// kept.
//
// Reads stream straight into the destinations: when a read fails with a
// *SourceError or ErrNoData, destinations written earlier in the same call
// keep what they received. Nothing is rolled back.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	ctx     context.Context
	src     io.ByteReader
	dialect Dialect
	fields  *tokenizer.FieldReader
	sel     *selection.Selection
	rows    int
}

// NewReader creates a Reader over r.
//
// An io.ByteReader is read directly. An *os.File is read so that, after
// Sync, its offset sits right after the last row consumed. Any other reader
// goes through shape-core's buffered stream.
func NewReader(r io.Reader, d Dialect) (*Reader, error) {
	var src io.ByteReader
	switch v := r.(type) {
	case *os.File:
		src = tokenizer.NewFileSource(v)
	case io.ByteReader:
		src = v
	default:
		src = tokenizer.NewReaderSource(r)
	}
	return newReader(src, d)
}

// NewReaderFromStream creates a Reader over a shape-core stream.
func NewReaderFromStream(stream shapetokenizer.Stream, d Dialect) (*Reader, error) {
	return newReader(tokenizer.NewStreamSource(stream), d)
}

// NewStringReader creates a Reader over an in-memory string.
func NewStringReader(input string, d Dialect) (*Reader, error) {
	return newReader(tokenizer.NewStringSource(input), d)
}

func newReader(src io.ByteReader, d Dialect) (*Reader, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Reader{
		ctx:     context.Background(),
		src:     src,
		dialect: d,
		fields:  tokenizer.NewFieldReader(src, d.tokenizerOptions()),
	}, nil
}

// SetContext sets the context attached to emitted events.
func (r *Reader) SetContext(ctx context.Context) {
	r.ctx = ctx
}

// SetSelection restricts reads to the columns listed in spec, e.g. "0,2,5-7,9-".
// An empty spec selects every column. On error the previous selection stays.
func (r *Reader) SetSelection(spec string) error {
	if spec == "" {
		r.sel = nil
		return nil
	}
	sel, err := selection.Parse(spec)
	if err != nil {
		return err
	}
	r.sel = sel
	return nil
}

// Selection returns the canonical form of the active selection, "0-" when unset.
func (r *Reader) Selection() string {
	return r.sel.String()
}

// Dialect returns the dialect the Reader was created with.
func (r *Reader) Dialect() Dialect {
	return r.dialect
}

// Rows returns the number of rows bound so far.
func (r *Reader) Rows() int {
	return r.rows
}

// Sync hands buffered but unread bytes back to the underlying descriptor,
// when the source supports it.
func (r *Reader) Sync() error {
	if s, ok := r.src.(tokenizer.Syncer); ok {
		return s.Sync()
	}
	return nil
}

// ReadScalars binds one row to names in order.
//
// Every field read consumes the next name; a field outside the selection
// binds "". Once the row ends, remaining names bind "" without further
// reads. Fields beyond the last name are read and discarded.
func (r *Reader) ReadScalars(dst ScalarSink, names ...string) error {
	if len(names) == 0 {
		return ErrNoDestination
	}

	r.fields.Reset()
	ended := false
	bound := 0
	for _, name := range names {
		value := ""
		if !ended {
			field, term, err := r.readField(modeScalar)
			if err != nil {
				return err
			}
			if r.sel.Contains(r.fields.Column()) {
				value = string(field)
			}
			ended = term.EndsRow()
			bound++
		}
		if err := dst.Bind(name, value); err != nil {
			return fmt.Errorf("bind %s: %w", name, err)
		}
	}

	if !ended {
		if _, err := r.fields.SkipRow(); err != nil {
			return r.sourceError(err)
		}
	}
	r.finishRow(modeScalar, bound)
	return nil
}

// ReadIndexed flushes dst and stores each selected field of one row at its column index.
func (r *Reader) ReadIndexed(dst IndexedCollection) error {
	if err := dst.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return r.readRow(modeIndexed, func(col int, value string) error {
		return dst.Set(col, value)
	})
}

// ReadKeyed flushes dst and stores each selected field of one row under a string key.
//
// When header is non-nil and empty, one row is first read into it with
// ReadIndexed. The key of column i is header[i] when that is a non-empty
// value, otherwise the decimal index.
func (r *Reader) ReadKeyed(dst KeyedCollection, header IndexedCollection) error {
	if header != nil {
		empty, err := header.IsEmpty()
		if err != nil {
			return fmt.Errorf("header: %w", err)
		}
		if empty {
			if err := r.ReadIndexed(header); err != nil {
				return err
			}
		}
	}

	if err := dst.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return r.readRow(modeKeyed, func(col int, value string) error {
		key, err := headerKey(header, col)
		if err != nil {
			return err
		}
		return dst.Set(key, value)
	})
}

// headerKey resolves the key for column col.
func headerKey(header IndexedCollection, col int) (string, error) {
	if header != nil {
		name, ok, err := header.Get(col)
		if err != nil {
			return "", fmt.Errorf("header: %w", err)
		}
		if ok && name != "" {
			return name, nil
		}
	}
	return strconv.Itoa(col), nil
}

// readRow reads fields through the end of the row, passing selected ones to set.
func (r *Reader) readRow(mode string, set func(col int, value string) error) error {
	r.fields.Reset()
	kept := 0
	for {
		field, term, err := r.readField(mode)
		if err != nil {
			return err
		}
		if col := r.fields.Column(); r.sel.Contains(col) {
			if err := set(col, string(field)); err != nil {
				return fmt.Errorf("set column %d: %w", col, err)
			}
			kept++
		}
		if term.EndsRow() {
			break
		}
	}
	r.finishRow(mode, kept)
	return nil
}

// readField reads one field, turning an empty first field ended by the end
// of the source into ErrNoData. Bytes the tokenizer discards, such as NUL or
// an empty pair of quotes, do not count as data.
func (r *Reader) readField(mode string) ([]byte, tokenizer.Terminator, error) {
	field, term, err := r.fields.ReadField()
	if err != nil {
		return nil, term, r.sourceError(err)
	}
	if term == tokenizer.EndOfStream && r.fields.Column() == 0 && len(field) == 0 {
		emitNoData(r.ctx, mode, r.rows+1)
		return nil, term, ErrNoData
	}
	return field, term, nil
}

func (r *Reader) sourceError(err error) error {
	emitSourceError(r.ctx, r.rows+1, err)
	return &SourceError{Row: r.rows + 1, Column: r.fields.Column(), Err: err}
}

func (r *Reader) finishRow(mode string, fields int) {
	r.rows++
	emitRowBound(r.ctx, mode, r.rows, fields)
}
