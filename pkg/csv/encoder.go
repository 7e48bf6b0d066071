package csv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Encoder turns collections back into encoded records.
//
// Fields are quoted only when they contain the quote character, the field
// separator or the record separator (CR or LF under AutoTerminator).
// Quoting wraps the field in quotes and doubles embedded quotes.
//
// The Encoder remembers whether it has already warned about a keyed
// collection printed without a header; the warning is issued once per
// Encoder.
type Encoder struct {
	ctx     context.Context
	dialect Dialect
	warned  bool

	// WarningCallback is invoked with the one-time missing header diagnostic.
	// If nil, only the SignalHeaderMissing event is emitted.
	WarningCallback WarningHandler
}

// NewEncoder creates an Encoder for d.
func NewEncoder(d Dialect) (*Encoder, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{ctx: context.Background(), dialect: d}, nil
}

// SetContext sets the context attached to emitted events.
func (e *Encoder) SetContext(ctx context.Context) {
	e.ctx = ctx
}

// Warned reports whether the missing header diagnostic has been issued.
func (e *Encoder) Warned() bool {
	return e.warned
}

// EncodeRow encodes fields as one record, terminator included.
func (e *Encoder) EncodeRow(fields []string) []byte {
	return e.AppendRow(nil, fields)
}

// AppendRow appends the encoded record to dst and returns the extended buffer.
func (e *Encoder) AppendRow(dst []byte, fields []string) []byte {
	for i, f := range fields {
		if i > 0 {
			dst = append(dst, e.dialect.Comma)
		}
		dst = e.appendField(dst, f)
	}
	if e.dialect.AutoTerminator {
		return append(dst, '\r', '\n')
	}
	return append(dst, e.dialect.Terminator)
}

// WriteRow encodes fields and writes the record to w.
func (e *Encoder) WriteRow(w io.Writer, fields []string) error {
	_, err := w.Write(e.EncodeRow(fields))
	return err
}

// EncodeIndexed encodes c in index order from 0 through its highest index.
// Indices without a value encode as empty fields.
func (e *Encoder) EncodeIndexed(c IndexedCollection) ([]byte, error) {
	fields, err := indexedFields(c)
	if err != nil {
		return nil, err
	}
	return e.EncodeRow(fields), nil
}

// EncodeKeyed encodes c in header order when header is non-empty.
// Header position i names the key header[i], or the decimal index when that
// is empty, mirroring ReadKeyed. Without a header the keys are emitted in
// sorted order and a one-time diagnostic is issued.
func (e *Encoder) EncodeKeyed(c KeyedCollection, header IndexedCollection) ([]byte, error) {
	keys, err := e.keyOrder(c, header)
	if err != nil {
		return nil, err
	}
	fields := make([]string, len(keys))
	for i, k := range keys {
		v, _, err := c.Get(k)
		if err != nil {
			return nil, fmt.Errorf("get %q: %w", k, err)
		}
		fields[i] = v
	}
	return e.EncodeRow(fields), nil
}

// EncodeHeader encodes the key order EncodeKeyed would use, as a record.
func (e *Encoder) EncodeHeader(c KeyedCollection, header IndexedCollection) ([]byte, error) {
	keys, err := e.keyOrder(c, header)
	if err != nil {
		return nil, err
	}
	return e.EncodeRow(keys), nil
}

func (e *Encoder) keyOrder(c KeyedCollection, header IndexedCollection) ([]string, error) {
	if header != nil {
		max, err := header.MaxIndex()
		if err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		if max >= 0 {
			keys := make([]string, max+1)
			for i := range keys {
				if keys[i], err = headerKey(header, i); err != nil {
					return nil, err
				}
			}
			return keys, nil
		}
	}

	keys, err := c.Keys()
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	sort.Strings(keys)
	e.warnHeaderMissing(len(keys))
	return keys, nil
}

func (e *Encoder) warnHeaderMissing(keys int) {
	if e.warned {
		return
	}
	e.warned = true
	emitHeaderMissing(e.ctx, keys)
	if e.WarningCallback != nil {
		e.WarningCallback("keyed collection has no header; fields are printed in sorted key order")
	}
}

// appendField appends one field, quoted when needed.
func (e *Encoder) appendField(dst []byte, field string) []byte {
	if !e.needsQuotes(field) {
		return append(dst, field...)
	}
	q := e.dialect.Quote
	dst = append(dst, q)
	for i := 0; i < len(field); i++ {
		if field[i] == q {
			dst = append(dst, q)
		}
		dst = append(dst, field[i])
	}
	return append(dst, q)
}

func (e *Encoder) needsQuotes(field string) bool {
	d := e.dialect
	for i := 0; i < len(field); i++ {
		switch c := field[i]; {
		case c == d.Quote, c == d.Comma:
			return true
		case d.AutoTerminator && (c == '\r' || c == '\n'):
			return true
		case !d.AutoTerminator && c == d.Terminator:
			return true
		}
	}
	return false
}

// indexedFields returns c's values from index 0 through MaxIndex.
func indexedFields(c IndexedCollection) ([]string, error) {
	max, err := c.MaxIndex()
	if err != nil {
		return nil, fmt.Errorf("max index: %w", err)
	}
	fields := make([]string, max+1)
	for i := range fields {
		v, _, err := c.Get(i)
		if err != nil {
			return nil, fmt.Errorf("get %d: %w", i, err)
		}
		fields[i] = v
	}
	return fields, nil
}

// Render converts an AST node to CSV bytes using the default dialect.
//
// The node should be the result of Parse() or ParseReader(): an
// *ast.ArrayDataNode of records, each an *ast.ArrayDataNode of
// *ast.LiteralNode fields. A single record node renders as one line.
//
// Example:
//
//	node, _ := csv.Parse("name,age\nAlice,30\n", csv.DefaultDialect())
//	bytes, _ := csv.Render(node)
//	// bytes: name,age\r\nAlice,30\r\n
func Render(node ast.SchemaNode) ([]byte, error) {
	return RenderWithDialect(node, DefaultDialect())
}

// RenderWithDialect converts an AST node to CSV bytes with a custom dialect.
func RenderWithDialect(node ast.SchemaNode, d Dialect) ([]byte, error) {
	if node == nil {
		return []byte{}, nil
	}
	e, err := NewEncoder(d)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := e.renderNode(node, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderNode renders a file node or a single record node.
func (e *Encoder) renderNode(node ast.SchemaNode, buf *bytes.Buffer) error {
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return fmt.Errorf("unsupported node type for CSV rendering: %T", node)
	}
	elements := arr.Elements()
	if len(elements) == 0 {
		return nil
	}

	// Check if this is a file (array of arrays) or a record (array of literals)
	if _, isRecord := elements[0].(*ast.LiteralNode); isRecord {
		fields, err := literalFields(arr)
		if err != nil {
			return err
		}
		buf.Write(e.EncodeRow(fields))
		return nil
	}

	for _, elem := range elements {
		rec, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return fmt.Errorf("unexpected element type in array: %T", elem)
		}
		fields, err := literalFields(rec)
		if err != nil {
			return err
		}
		buf.Write(e.EncodeRow(fields))
	}
	return nil
}

// literalFields extracts the string values of a record node.
func literalFields(rec *ast.ArrayDataNode) ([]string, error) {
	fields := make([]string, 0, rec.Len())
	for _, elem := range rec.Elements() {
		lit, ok := elem.(*ast.LiteralNode)
		if !ok {
			return nil, fmt.Errorf("expected field to be *ast.LiteralNode, got %T", elem)
		}
		switch v := lit.Value().(type) {
		case string:
			fields = append(fields, v)
		case nil:
			fields = append(fields, "")
		case int:
			fields = append(fields, strconv.Itoa(v))
		default:
			fields = append(fields, fmt.Sprintf("%v", v))
		}
	}
	return fields, nil
}
