package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Params are equality filters or named bind values, keyed by column or
// `:name` placeholder.
type Params map[string]any

// Record is one result row: column values in result-set order.
type Record struct {
	columns []string
	values  map[string]any
}

// NewRecord builds a Record from parallel column and value slices.
// A repeated column keeps its first position and its last value.
func NewRecord(columns []string, values []any) Record {
	r := Record{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]any, len(columns)),
	}
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Set(col, v)
	}
	return r
}

// Set stores v under column, appending the column when it is new.
// []byte values are stored as string.
func (r *Record) Set(column string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if _, seen := r.values[column]; !seen {
		r.columns = append(r.columns, column)
	}
	r.values[column] = v
}

// Columns returns the column names in result order.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Get returns the value of column and whether the column exists.
func (r Record) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Value returns the value of column, nil when absent or NULL.
func (r Record) Value(column string) any {
	return r.values[column]
}

// At returns the value of the i-th column, nil when out of range.
func (r Record) At(i int) any {
	if i < 0 || i >= len(r.columns) {
		return nil
	}
	return r.values[r.columns[i]]
}

func (r Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

func (r Record) Len() int {
	return len(r.columns)
}

// ID returns the id column rendered as a string key.
func (r Record) ID() (string, bool) {
	v, ok := r.values["id"]
	if !ok {
		return "", false
	}
	return cast.ToString(v), true
}

// Map returns an unordered copy of the values.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[col])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Record) String() string {
	parts := make([]string, 0, len(r.columns))
	for _, col := range r.columns {
		parts = append(parts, fmt.Sprintf("%s=%v", col, r.values[col]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// IDIndex holds records keyed by their id. Keys keep the order in which
// they were first seen; a later row with the same id replaces the record.
type IDIndex struct {
	keys    []string
	records map[string]Record
}

func newIDIndex() *IDIndex {
	return &IDIndex{records: make(map[string]Record)}
}

func (x *IDIndex) put(id string, rec Record) {
	if _, ok := x.records[id]; !ok {
		x.keys = append(x.keys, id)
	}
	x.records[id] = rec
}

// Keys returns the ids in first-seen order.
func (x *IDIndex) Keys() []string {
	out := make([]string, len(x.keys))
	copy(out, x.keys)
	return out
}

// Get returns the record stored under id.
func (x *IDIndex) Get(id string) (Record, bool) {
	rec, ok := x.records[id]
	return rec, ok
}

func (x *IDIndex) Len() int {
	return len(x.keys)
}

// Records returns the records in key order.
func (x *IDIndex) Records() []Record {
	out := make([]Record, 0, len(x.keys))
	for _, k := range x.keys {
		out = append(out, x.records[k])
	}
	return out
}

// MarshalJSON encodes the index as an object keyed by id, in key order.
func (x *IDIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range x.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := x.records[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
