package store

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat indicates a snapshot format name that is not supported.
var ErrUnknownFormat = errors.New("store: unknown snapshot format")

// IndexError reports a negative array index.
type IndexError struct {
	Name  string
	Index int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("store: %s: invalid index %d", e.Name, e.Index)
}
