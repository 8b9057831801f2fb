// Package feed defines vendor feed records and the grouping of records into
// products.
package feed

import (
	"context"
	"io"
	"strings"
)

// Record is one row of a tabular feed or one item element of a tree feed.
// Field values are kept in insertion order; tree feeds may repeat a field
// (for example several category or image elements).
type Record struct {
	// Line is the 1-based position of the record in its feed, for logging.
	Line int

	fields map[string][]string
	order  []string
}

// NewRecord returns an empty record for the given feed position.
func NewRecord(line int) *Record {
	return &Record{Line: line, fields: make(map[string][]string)}
}

// RecordOf builds a record from single-valued fields. It is mostly useful in
// tests and for tabular feeds.
func RecordOf(line int, values map[string]string) *Record {
	r := NewRecord(line)
	for k, v := range values {
		r.Add(k, v)
	}
	return r
}

// Add appends a value to a field.
func (r *Record) Add(name, value string) {
	if r.fields == nil {
		r.fields = make(map[string][]string)
	}
	if _, ok := r.fields[name]; !ok {
		r.order = append(r.order, name)
	}
	r.fields[name] = append(r.fields[name], value)
}

// Get returns the first value of a field, trimmed. Missing fields yield "".
func (r *Record) Get(name string) string {
	values := r.fields[name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// All returns every non-empty trimmed value of a field.
func (r *Record) All(name string) []string {
	var out []string
	for _, v := range r.fields[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Has reports whether the field is present, even if empty.
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Fields returns field names in the order they were first added.
func (r *Record) Fields() []string {
	return append([]string(nil), r.order...)
}

// Parser turns a raw feed document into records.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) ([]*Record, error)
}

// Source yields every record of one feed snapshot.
type Source interface {
	Records(ctx context.Context) ([]*Record, error)
}

// Static is a Source over records that are already in memory.
type Static []*Record

// Records implements Source.
func (s Static) Records(context.Context) ([]*Record, error) {
	return s, nil
}
