package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a collection store persisted in a SQLite database file.
// Collections written by one process are visible to the next.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the store at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	if err := initDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init state db: %w", err)
	}

	return &SQLite{db: db}, nil
}

func initDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scalars (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS arrays (
			name TEXT NOT NULL,
			idx INTEGER NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (name, idx)
		);
		CREATE TABLE IF NOT EXISTS assocs (
			name TEXT NOT NULL,
			field_key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (name, field_key)
		)
	`)
	return err
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Bind sets the scalar name. It implements csv.ScalarSink.
func (s *SQLite) Bind(name, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO scalars (name, value) VALUES (?, ?)`, name, value)
	if err != nil {
		return fmt.Errorf("bind %s: %w", name, err)
	}
	return nil
}

// Scalar returns the scalar name.
func (s *SQLite) Scalar(name string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM scalars WHERE name = ?`, name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", name, err)
	}
	return v, true, nil
}

// Array returns a handle to the indexed collection name.
func (s *SQLite) Array(name string) *SQLiteArray {
	return &SQLiteArray{db: s.db, name: name}
}

// Assoc returns a handle to the keyed collection name.
func (s *SQLite) Assoc(name string) *SQLiteAssoc {
	return &SQLiteAssoc{db: s.db, name: name}
}

// Snapshot copies the store contents.
func (s *SQLite) Snapshot() (*Snapshot, error) {
	snap := newSnapshot()

	rows, err := s.db.Query(`SELECT name, value FROM scalars`)
	if err != nil {
		return nil, fmt.Errorf("query scalars: %w", err)
	}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan scalar: %w", err)
		}
		snap.Scalars[name] = value
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT name, idx, value FROM arrays`)
	if err != nil {
		return nil, fmt.Errorf("query arrays: %w", err)
	}
	for rows.Next() {
		var name, value string
		var idx int
		if err := rows.Scan(&name, &idx, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan array: %w", err)
		}
		if snap.Arrays[name] == nil {
			snap.Arrays[name] = make(map[int]string)
		}
		snap.Arrays[name][idx] = value
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(`SELECT name, field_key, value FROM assocs`)
	if err != nil {
		return nil, fmt.Errorf("query assocs: %w", err)
	}
	for rows.Next() {
		var name, key, value string
		if err := rows.Scan(&name, &key, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan assoc: %w", err)
		}
		if snap.Assocs[name] == nil {
			snap.Assocs[name] = make(map[string]string)
		}
		snap.Assocs[name][key] = value
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	return snap, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate rows: %w", err)
	}
	return rows.Close()
}

// SQLiteArray is an indexed collection in a SQLite store.
type SQLiteArray struct {
	db   *sql.DB
	name string
}

// Name returns the collection name.
func (a *SQLiteArray) Name() string {
	return a.name
}

// Flush removes every element.
func (a *SQLiteArray) Flush() error {
	_, err := a.db.Exec(`DELETE FROM arrays WHERE name = ?`, a.name)
	return err
}

// Get returns the element at index.
func (a *SQLiteArray) Get(index int) (string, bool, error) {
	var v string
	err := a.db.QueryRow(`SELECT value FROM arrays WHERE name = ? AND idx = ?`, a.name, index).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value at index.
func (a *SQLiteArray) Set(index int, value string) error {
	if index < 0 {
		return &IndexError{Name: a.name, Index: index}
	}
	_, err := a.db.Exec(`INSERT OR REPLACE INTO arrays (name, idx, value) VALUES (?, ?, ?)`, a.name, index, value)
	return err
}

// IsEmpty reports whether the collection has no elements.
func (a *SQLiteArray) IsEmpty() (bool, error) {
	var n int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM arrays WHERE name = ?`, a.name).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// MaxIndex returns the highest index set, or -1.
func (a *SQLiteArray) MaxIndex() (int, error) {
	var max sql.NullInt64
	if err := a.db.QueryRow(`SELECT MAX(idx) FROM arrays WHERE name = ?`, a.name).Scan(&max); err != nil {
		return -1, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// SQLiteAssoc is a keyed collection in a SQLite store.
type SQLiteAssoc struct {
	db   *sql.DB
	name string
}

// Name returns the collection name.
func (a *SQLiteAssoc) Name() string {
	return a.name
}

// Flush removes every element.
func (a *SQLiteAssoc) Flush() error {
	_, err := a.db.Exec(`DELETE FROM assocs WHERE name = ?`, a.name)
	return err
}

// Get returns the element under key.
func (a *SQLiteAssoc) Get(key string) (string, bool, error) {
	var v string
	err := a.db.QueryRow(`SELECT value FROM assocs WHERE name = ? AND field_key = ?`, a.name, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value under key.
func (a *SQLiteAssoc) Set(key, value string) error {
	_, err := a.db.Exec(`INSERT OR REPLACE INTO assocs (name, field_key, value) VALUES (?, ?, ?)`, a.name, key, value)
	return err
}

// IsEmpty reports whether the collection has no elements.
func (a *SQLiteAssoc) IsEmpty() (bool, error) {
	var n int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM assocs WHERE name = ?`, a.name).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// Keys returns the keys in unspecified order.
func (a *SQLiteAssoc) Keys() ([]string, error) {
	rows, err := a.db.Query(`SELECT field_key FROM assocs WHERE name = ?`, a.name)
	if err != nil {
		return nil, err
	}
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return keys, nil
}
