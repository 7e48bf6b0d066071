package csv

import (
	"errors"
	"fmt"

	"github.com/shapestone/shape-csvrow/internal/selection"
)

// Common binding errors
var (
	// ErrNoData indicates the source was exhausted before the first byte of a row.
	ErrNoData = errors.New("csv: no data")

	// ErrNoDestination indicates a read was asked to bind zero names.
	ErrNoDestination = errors.New("csv: no destination")

	// ErrMalformedSelection indicates a column selection list failed to parse.
	// Use errors.As with *SelectionError for the position.
	ErrMalformedSelection = selection.ErrMalformed
)

// SelectionError describes a malformed column selection list.
type SelectionError = selection.Error

// SourceError wraps a read failure from the byte source.
// It aborts the whole operation; destinations already written keep their values.
type SourceError struct {
	// Row is the 1-indexed row being read.
	Row int
	// Column is the 0-indexed column being read.
	Column int
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message with position information.
func (e *SourceError) Error() string {
	return fmt.Sprintf("csv: read error on row %d, column %d: %v", e.Row, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// WarningHandler is a callback function for diagnostics that do not stop an operation.
type WarningHandler func(message string)
