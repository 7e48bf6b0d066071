package store

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/shapestone/shape-csvrow/pkg/csv"
)

var (
	_ csv.ScalarSink        = (*Memory)(nil)
	_ csv.IndexedCollection = (*Array)(nil)
	_ csv.KeyedCollection   = (*Assoc)(nil)
	_ csv.ScalarSink        = (*SQLite)(nil)
	_ csv.IndexedCollection = (*SQLiteArray)(nil)
	_ csv.KeyedCollection   = (*SQLiteAssoc)(nil)
)

type testStore interface {
	csv.ScalarSink
	Scalar(name string) (string, bool, error)
	Snapshot() (*Snapshot, error)
	Close() error
}

type storeCase struct {
	name  string
	open  func(t *testing.T) testStore
	array func(s testStore, name string) csv.IndexedCollection
	assoc func(s testStore, name string) csv.KeyedCollection
}

func storeCases() []storeCase {
	return []storeCase{
		{
			name: "memory",
			open: func(t *testing.T) testStore { return NewMemory() },
			array: func(s testStore, name string) csv.IndexedCollection {
				return s.(*Memory).Array(name)
			},
			assoc: func(s testStore, name string) csv.KeyedCollection {
				return s.(*Memory).Assoc(name)
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) testStore {
				s, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
				if err != nil {
					t.Fatalf("OpenSQLite: %v", err)
				}
				return s
			},
			array: func(s testStore, name string) csv.IndexedCollection {
				return s.(*SQLite).Array(name)
			},
			assoc: func(s testStore, name string) csv.KeyedCollection {
				return s.(*SQLite).Assoc(name)
			},
		},
	}
}

func TestStore_Scalars(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.open(t)
			defer s.Close()

			if _, ok, err := s.Scalar("x"); err != nil || ok {
				t.Fatalf("Scalar(x) before bind = %v, %v", ok, err)
			}
			if err := s.Bind("x", "1"); err != nil {
				t.Fatal(err)
			}
			if err := s.Bind("x", "2"); err != nil {
				t.Fatal(err)
			}
			v, ok, err := s.Scalar("x")
			if err != nil || !ok || v != "2" {
				t.Errorf("Scalar(x) = %q, %v, %v; want 2", v, ok, err)
			}
		})
	}
}

func TestStore_Array(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.open(t)
			defer s.Close()
			a := tc.array(s, "cols")
			other := tc.array(s, "other")

			if empty, err := a.IsEmpty(); err != nil || !empty {
				t.Fatalf("IsEmpty() = %v, %v", empty, err)
			}
			if max, err := a.MaxIndex(); err != nil || max != -1 {
				t.Fatalf("MaxIndex() = %d, %v; want -1", max, err)
			}

			for i, v := range map[int]string{0: "a", 2: "c"} {
				if err := a.Set(i, v); err != nil {
					t.Fatal(err)
				}
			}
			if err := other.Set(9, "z"); err != nil {
				t.Fatal(err)
			}
			if max, _ := a.MaxIndex(); max != 2 {
				t.Errorf("MaxIndex() = %d, want 2", max)
			}
			if _, ok, _ := a.Get(1); ok {
				t.Error("Get(1) present, want absent")
			}
			if v, ok, _ := a.Get(2); !ok || v != "c" {
				t.Errorf("Get(2) = %q, %v", v, ok)
			}
			if err := a.Set(-1, "x"); err == nil {
				t.Error("Set(-1) succeeded")
			}

			if err := a.Flush(); err != nil {
				t.Fatal(err)
			}
			if empty, _ := a.IsEmpty(); !empty {
				t.Error("not empty after Flush")
			}
			if empty, _ := other.IsEmpty(); empty {
				t.Error("Flush cleared another collection")
			}
		})
	}
}

func TestStore_Assoc(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.open(t)
			defer s.Close()
			a := tc.assoc(s, "person")

			if empty, err := a.IsEmpty(); err != nil || !empty {
				t.Fatalf("IsEmpty() = %v, %v", empty, err)
			}
			_ = a.Set("id", "7")
			_ = a.Set("name", "Ann")
			_ = a.Set("name", "Bob")

			keys, err := a.Keys()
			if err != nil {
				t.Fatal(err)
			}
			sort.Strings(keys)
			if len(keys) != 2 || keys[0] != "id" || keys[1] != "name" {
				t.Errorf("Keys() = %v", keys)
			}
			if v, ok, _ := a.Get("name"); !ok || v != "Bob" {
				t.Errorf("Get(name) = %q, %v", v, ok)
			}
			if err := a.Flush(); err != nil {
				t.Fatal(err)
			}
			if keys, _ := a.Keys(); len(keys) != 0 {
				t.Errorf("Keys() after Flush = %v", keys)
			}
		})
	}
}

// TestStore_ReadKeyed binds a header row and a data row through csv.Reader.
func TestStore_ReadKeyed(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.open(t)
			defer s.Close()

			r, err := csv.NewStringReader("id,name\n7,Ann\n8,Bo\n", csv.DefaultDialect())
			if err != nil {
				t.Fatal(err)
			}
			header := tc.array(s, "hdr")
			row := tc.assoc(s, "row")

			if err := r.ReadKeyed(row, header); err != nil {
				t.Fatalf("ReadKeyed: %v", err)
			}
			if v, _, _ := row.Get("name"); v != "Ann" {
				t.Errorf("name = %q, want Ann", v)
			}
			if err := r.ReadKeyed(row, header); err != nil {
				t.Fatalf("ReadKeyed: %v", err)
			}
			if v, _, _ := row.Get("id"); v != "8" {
				t.Errorf("id = %q, want 8", v)
			}

			snap, err := s.Snapshot()
			if err != nil {
				t.Fatal(err)
			}
			if snap.Arrays["hdr"][1] != "name" || snap.Assocs["row"]["name"] != "Bo" {
				t.Errorf("snapshot = %+v", snap)
			}
		})
	}
}

func TestSQLite_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Array("a").Set(3, "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if v, ok, err := s.Array("a").Get(3); err != nil || !ok || v != "x" {
		t.Errorf("Get(3) after reopen = %q, %v, %v", v, ok, err)
	}
}
