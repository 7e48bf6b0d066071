package store

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func sampleMemory() *Memory {
	m := NewMemory()
	_ = m.Bind("name", "Ann")
	_ = m.Array("row").Set(0, "a")
	_ = m.Array("row").Set(2, "c")
	_ = m.Assoc("person").Set("id", "7")
	return m
}

func TestSnapshot_Formats(t *testing.T) {
	snap, err := sampleMemory().Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	for _, format := range []string{FormatYAML, FormatMsgpack, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			data, err := snap.Marshal(format)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := Unmarshal(data, format)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got.Scalars["name"] != "Ann" || got.Arrays["row"][2] != "c" || got.Assocs["person"]["id"] != "7" {
				t.Errorf("decoded snapshot = %+v", got)
			}
			if _, ok := got.Arrays["row"][1]; ok {
				t.Error("gap in array was filled")
			}
		})
	}
}

func TestSnapshot_EncodeYAML(t *testing.T) {
	snap, _ := sampleMemory().Snapshot()
	var buf bytes.Buffer
	if err := snap.Encode(&buf, FormatYAML); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"scalars:", "name: Ann", "arrays:", "assocs:"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestSnapshot_UnknownFormat(t *testing.T) {
	snap, _ := sampleMemory().Snapshot()
	if _, err := snap.Marshal("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Marshal(xml) error = %v", err)
	}
	if _, err := Unmarshal(nil, "xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Unmarshal(xml) error = %v", err)
	}
}

func TestMemory_Restore(t *testing.T) {
	snap, _ := sampleMemory().Snapshot()
	m := NewMemory()
	m.Restore(snap)

	// Mutating the restored store must not touch the snapshot.
	_ = m.Array("row").Set(5, "z")
	if _, ok := snap.Arrays["row"][5]; ok {
		t.Error("Restore shares maps with the snapshot")
	}
	if v, ok, _ := m.Scalar("name"); !ok || v != "Ann" {
		t.Errorf("Scalar(name) = %q, %v", v, ok)
	}
}
