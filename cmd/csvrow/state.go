package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shapestone/shape-csvrow/pkg/csv"
	"github.com/shapestone/shape-csvrow/pkg/store"
)

// defaultStatePath is used when neither -s, $CSVROW_STATE nor the config names a state file.
const defaultStatePath = "csvrow.db"

// state is where bound variables live between runs.
type state interface {
	csv.ScalarSink
	Scalar(name string) (string, bool, error)
	Array(name string) csv.IndexedCollection
	Assoc(name string) csv.KeyedCollection
	Snapshot() (*store.Snapshot, error)
	Close() error
}

// openState opens path as a SQLite store, or as a snapshot file when the
// extension names a snapshot format.
func openState(path string) (state, error) {
	if format, ok := snapshotFormat(path); ok {
		return openFileState(path, format)
	}
	s, err := store.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return sqliteState{s}, nil
}

func snapshotFormat(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return store.FormatYAML, true
	case ".msgpack", ".mp":
		return store.FormatMsgpack, true
	case ".json":
		return store.FormatJSON, true
	}
	return "", false
}

type sqliteState struct {
	*store.SQLite
}

func (s sqliteState) Array(name string) csv.IndexedCollection { return s.SQLite.Array(name) }
func (s sqliteState) Assoc(name string) csv.KeyedCollection   { return s.SQLite.Assoc(name) }

// fileState keeps variables in memory and writes them back as a snapshot on Close.
type fileState struct {
	*store.Memory
	path   string
	format string
}

func openFileState(path, format string) (*fileState, error) {
	st := &fileState{Memory: store.NewMemory(), path: path, format: format}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	snap, err := store.Unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	st.Restore(snap)
	return st, nil
}

func (s *fileState) Array(name string) csv.IndexedCollection { return s.Memory.Array(name) }
func (s *fileState) Assoc(name string) csv.KeyedCollection   { return s.Memory.Assoc(name) }

func (s *fileState) Close() error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	data, err := snap.Marshal(s.format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
