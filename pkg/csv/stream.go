package csv

import (
	"errors"
	"io"
)

// Scanner provides a streaming interface for reading CSV records one at a time.
// Each Scan call binds exactly one row through a Reader, so memory use does
// not grow with the input.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner := csv.NewScanner(file).SetHasHeaders(true)
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	reader     *Reader
	hasHeaders bool
	headerRead bool
	headers    *Row
	row        *Row
	err        error
	done       bool
}

// NewScanner creates a new Scanner that reads CSV from the given io.Reader
// with the default dialect.
func NewScanner(reader io.Reader) *Scanner {
	return NewScannerWithDialect(reader, DefaultDialect())
}

// NewScannerWithDialect creates a new Scanner with a custom dialect.
// An invalid dialect is reported by Err after the first Scan.
func NewScannerWithDialect(reader io.Reader, d Dialect) *Scanner {
	r, err := NewReader(reader, d)
	return &Scanner{
		reader:  r,
		err:     err,
		headers: &Row{},
		row:     &Row{},
	}
}

// SetHasHeaders sets whether the first row should be treated as headers.
// If true, the first row will be used as column names for GetByName() access.
// Returns the Scanner for method chaining.
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	s.hasHeaders = hasHeaders
	return s
}

// SetSelection restricts records to the listed columns.
// Returns the Scanner for method chaining; a malformed spec is reported by Err.
func (s *Scanner) SetSelection(spec string) *Scanner {
	if s.err == nil {
		s.err = s.reader.SetSelection(spec)
	}
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.done {
		return false
	}

	var err error
	// The header row is consumed once, even when the selection leaves it empty.
	if s.hasHeaders && !s.headerRead {
		s.headerRead = true
		err = s.reader.ReadIndexed(s.headers)
	}
	if err == nil {
		err = s.reader.ReadIndexed(s.row)
	}

	if errors.Is(err, ErrNoData) {
		s.done = true
		return false
	}
	if err != nil {
		s.err = err
		return false
	}
	return true
}

// Record returns the current record.
// This should only be called after Scan() returns true.
func (s *Scanner) Record() Record {
	return Record{fields: s.row.Fields(), headers: s.Headers()}
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil if no error occurred or at end of input.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the column headers if SetHasHeaders(true) was called.
// Returns nil before the first Scan or without headers.
func (s *Scanner) Headers() []string {
	if !s.hasHeaders {
		return nil
	}
	if empty, _ := s.headers.IsEmpty(); empty {
		return nil
	}
	return s.headers.Fields()
}
