package csv

// Record represents a single row read by a Scanner.
// It provides access to field values by index or by header name.
type Record struct {
	fields  []string
	headers []string // Reference to scanner headers for name-based access
}

// Get returns the field at the given index.
// Returns the field value and true if the index is valid, or empty string and false otherwise.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName returns the field with the given header name.
// Returns empty string and false if there are no headers or the name is unknown.
// A known header whose column is missing from this record returns "" and true.
func (r Record) GetByName(name string) (string, bool) {
	for i, h := range r.headers {
		if h == name {
			if i < len(r.fields) {
				return r.fields[i], true
			}
			return "", true
		}
	}
	return "", false
}

// Fields returns all field values in this record.
func (r Record) Fields() []string {
	return r.fields
}

// Headers returns the header names this record resolves names against.
func (r Record) Headers() []string {
	return r.headers
}

// Len returns the number of fields in this record.
func (r Record) Len() int {
	return len(r.fields)
}
