package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Snapshot formats accepted by Snapshot.Encode.
const (
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
	FormatJSON    = "json"
)

// Snapshot is a point-in-time copy of a store.
type Snapshot struct {
	Scalars map[string]string            `json:"scalars" yaml:"scalars" msgpack:"scalars"`
	Arrays  map[string]map[int]string    `json:"arrays" yaml:"arrays" msgpack:"arrays"`
	Assocs  map[string]map[string]string `json:"assocs" yaml:"assocs" msgpack:"assocs"`
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Scalars: make(map[string]string),
		Arrays:  make(map[string]map[int]string),
		Assocs:  make(map[string]map[string]string),
	}
}

// Marshal encodes the snapshot in the named format.
func (s *Snapshot) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatMsgpack:
		return msgpack.Marshal(s)
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Encode writes the snapshot to w in the named format.
func (s *Snapshot) Encode(w io.Writer, format string) error {
	data, err := s.Marshal(format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Unmarshal decodes a snapshot produced by Marshal.
func Unmarshal(data []byte, format string) (*Snapshot, error) {
	snap := newSnapshot()
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, snap)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, snap)
	case FormatJSON:
		err = json.Unmarshal(data, snap)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", format, err)
	}
	return snap, nil
}

// Restore replaces the contents of m with snap.
func (m *Memory) Restore(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scalars = make(map[string]string, len(snap.Scalars))
	for k, v := range snap.Scalars {
		m.scalars[k] = v
	}
	m.arrays = make(map[string]map[int]string, len(snap.Arrays))
	for name, arr := range snap.Arrays {
		cp := make(map[int]string, len(arr))
		for i, v := range arr {
			cp[i] = v
		}
		m.arrays[name] = cp
	}
	m.assocs = make(map[string]map[string]string, len(snap.Assocs))
	for name, assoc := range snap.Assocs {
		cp := make(map[string]string, len(assoc))
		for k, v := range assoc {
			cp[k] = v
		}
		m.assocs[name] = cp
	}
}
