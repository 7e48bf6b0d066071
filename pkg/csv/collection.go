package csv

import "strconv"

// ScalarSink receives positional bindings, one name per field.
type ScalarSink interface {
	Bind(name, value string) error
}

// IndexedCollection is an ordered collection keyed by column index.
// The binder only issues these calls; it never owns the collection.
type IndexedCollection interface {
	Flush() error
	Get(index int) (string, bool, error)
	Set(index int, value string) error
	IsEmpty() (bool, error)
	// MaxIndex returns the highest index holding a value, or -1 when empty.
	MaxIndex() (int, error)
}

// KeyedCollection is a collection keyed by string.
type KeyedCollection interface {
	Flush() error
	Get(key string) (string, bool, error)
	Set(key, value string) error
	IsEmpty() (bool, error)
	// Keys returns every key holding a value, in any order.
	Keys() ([]string, error)
}

// Scalars is an in-memory ScalarSink.
type Scalars map[string]string

// Bind implements ScalarSink.
func (s Scalars) Bind(name, value string) error {
	s[name] = value
	return nil
}

// Row is an in-memory IndexedCollection holding one record.
// The zero value is an empty row ready to use.
type Row struct {
	values  []string
	present []bool
	count   int
}

// NewRow returns a row holding fields at indices 0..len(fields)-1.
func NewRow(fields ...string) *Row {
	r := &Row{}
	for i, f := range fields {
		_ = r.Set(i, f)
	}
	return r
}

// Flush implements IndexedCollection.
func (r *Row) Flush() error {
	r.values = r.values[:0]
	r.present = r.present[:0]
	r.count = 0
	return nil
}

// Get implements IndexedCollection.
func (r *Row) Get(index int) (string, bool, error) {
	if index < 0 || index >= len(r.values) || !r.present[index] {
		return "", false, nil
	}
	return r.values[index], true, nil
}

// Set implements IndexedCollection.
func (r *Row) Set(index int, value string) error {
	if index < 0 {
		return &OptionsError{Field: "index", Message: "negative index " + strconv.Itoa(index)}
	}
	for len(r.values) <= index {
		r.values = append(r.values, "")
		r.present = append(r.present, false)
	}
	if !r.present[index] {
		r.count++
	}
	r.values[index] = value
	r.present[index] = true
	return nil
}

// IsEmpty implements IndexedCollection.
func (r *Row) IsEmpty() (bool, error) {
	return r.count == 0, nil
}

// MaxIndex implements IndexedCollection.
func (r *Row) MaxIndex() (int, error) {
	for i := len(r.present) - 1; i >= 0; i-- {
		if r.present[i] {
			return i, nil
		}
	}
	return -1, nil
}

// Len returns the number of indices holding a value.
func (r *Row) Len() int {
	return r.count
}

// Fields returns the values from index 0 through MaxIndex; gaps are empty strings.
func (r *Row) Fields() []string {
	max, _ := r.MaxIndex()
	out := make([]string, max+1)
	copy(out, r.values[:max+1])
	return out
}
