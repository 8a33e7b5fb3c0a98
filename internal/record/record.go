package record

import (
	"fmt"
	"slices"

	"github.com/hengadev/recordseal/internal/sealerr"
)

// Record is one row of named scalar values in column order.
type Record struct {
	fields []string
	values []string
}

// New builds a record from a header and one row of values.
func New(fields, values []string) (Record, error) {
	if len(fields) == 0 {
		return Record{}, sealerr.NewDecodeError("record has no fields")
	}
	if len(fields) != len(values) {
		return Record{}, sealerr.NewDecodeError(fmt.Sprintf("record has %d fields but %d values", len(fields), len(values)))
	}
	seen := make(map[string]struct{}, len(fields))
	for i, name := range fields {
		if name == "" {
			return Record{}, sealerr.NewDecodeError(fmt.Sprintf("field %d has an empty name", i))
		}
		if _, dup := seen[name]; dup {
			return Record{}, sealerr.NewDecodeError(fmt.Sprintf("duplicate field '%s'", name))
		}
		seen[name] = struct{}{}
	}
	return Record{
		fields: slices.Clone(fields),
		values: slices.Clone(values),
	}, nil
}

// Fields returns the field names in column order.
func (r Record) Fields() []string {
	return slices.Clone(r.fields)
}

// Values returns the values in column order.
func (r Record) Values() []string {
	return slices.Clone(r.values)
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Get returns the value of field and whether the field exists.
func (r Record) Get(field string) (string, bool) {
	i := slices.Index(r.fields, field)
	if i < 0 {
		return "", false
	}
	return r.values[i], true
}

// Has reports whether the record carries field.
func (r Record) Has(field string) bool {
	return slices.Contains(r.fields, field)
}

// With returns a copy of the record with field set to value. An existing field
// keeps its position; a new field is appended as the last column.
func (r Record) With(field, value string) Record {
	out := Record{
		fields: slices.Clone(r.fields),
		values: slices.Clone(r.values),
	}
	if i := slices.Index(out.fields, field); i >= 0 {
		out.values[i] = value
		return out
	}
	out.fields = append(out.fields, field)
	out.values = append(out.values, value)
	return out
}

// Without returns a copy of the record with field removed. The remaining
// fields keep their relative order.
func (r Record) Without(field string) Record {
	out := Record{
		fields: make([]string, 0, len(r.fields)),
		values: make([]string, 0, len(r.values)),
	}
	for i, name := range r.fields {
		if name == field {
			continue
		}
		out.fields = append(out.fields, name)
		out.values = append(out.values, r.values[i])
	}
	return out
}

// Map returns the record as a field to value map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.fields))
	for i, name := range r.fields {
		m[name] = r.values[i]
	}
	return m
}
