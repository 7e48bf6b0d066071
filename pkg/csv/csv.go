// Package csv reads delimiter-separated rows into variables and collections
// and encodes collections back into rows.
//
// The package is strictly streaming: a Reader consumes one row per call from
// a byte source, keeps only the fields in its column selection, and routes
// them into one of three destinations:
//
//   - positional names (ReadScalars), one name per field
//   - an indexed collection (ReadIndexed), keyed by column index
//   - a keyed collection (ReadKeyed), keyed by header name or column index
//
// Quoting follows a small, permissive state machine rather than strict
// RFC 4180: a quote toggles quoting anywhere in a field, a doubled quote
// inside quotes is a literal quote, and a byte following a closing quote is
// read as an ordinary byte, so "a"b,c yields the fields ab and c.
//
// # Thread Safety
//
// Readers, Encoders and Scanners are not safe for concurrent use. Each owns
// its scanning state exclusively; create one per goroutine and source.
//
// # Example usage with ReadScalars:
//
//	r, _ := csv.NewStringReader("Alice,30,Paris\n", csv.DefaultDialect())
//	vars := csv.Scalars{}
//	if err := r.ReadScalars(vars, "name", "age"); err != nil {
//	    // handle error
//	}
//	// vars: name=Alice age=30; the rest of the row is discarded
//
// # Example usage with ReadKeyed:
//
//	r, _ := csv.NewStringReader("id,name\n7,Ann\n", csv.DefaultDialect())
//	header, row := csv.NewRow(), store.NewMemory().Assoc("row")
//	err := r.ReadKeyed(row, header)
//	// header: [id name]; row: id=7 name=Ann
package csv

import (
	"errors"
	"io"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Parse reads every row of input into an AST using dialect d.
//
// Returns an ast.ArrayDataNode representing the rows:
//   - *ast.ArrayDataNode for the file (array of records)
//   - Each record is an *ast.ArrayDataNode of fields
//   - Each field is an *ast.LiteralNode containing a string value
//
// Rows are read one at a time through a Reader; empty input yields an empty
// array.
func Parse(input string, d Dialect) (ast.SchemaNode, error) {
	r, err := NewStringReader(input, d)
	if err != nil {
		return nil, err
	}
	return parseRows(r)
}

// ParseReader reads every row from reader into an AST using dialect d.
func ParseReader(reader io.Reader, d Dialect) (ast.SchemaNode, error) {
	r, err := NewReader(reader, d)
	if err != nil {
		return nil, err
	}
	return parseRows(r)
}

func parseRows(r *Reader) (ast.SchemaNode, error) {
	records := make([]ast.SchemaNode, 0, 16)
	row := &Row{}
	for {
		err := r.ReadIndexed(row)
		if errors.Is(err, ErrNoData) {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := row.Fields()
		nodes := make([]ast.SchemaNode, len(fields))
		for i, f := range fields {
			nodes[i] = ast.NewLiteralNode(f, ast.NewPosition(0, r.Rows(), i+1))
		}
		records = append(records, ast.NewArrayDataNode(nodes, ast.NewPosition(0, r.Rows(), 1)))
	}
	return ast.NewArrayDataNode(records, ast.ZeroPosition()), nil
}

// Format returns the format identifier for this package.
// Returns "CSV" to identify this as the CSV data format.
func Format() string {
	return "CSV"
}
