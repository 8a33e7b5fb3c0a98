package record

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Delimiter separates fields in both parsed and canonical CSV.
const Delimiter = ','

// Format controls the parts of the canonical form that are configurable.
type Format struct {
	// UseCRLF terminates lines with "\r\n" instead of "\n".
	UseCRLF bool
}

// DefaultFormat is the canonical form used unless configured otherwise.
var DefaultFormat = Format{}

// ParseTerminator maps a configured terminator name ("lf" or "crlf") to a Format.
func ParseTerminator(name string) (Format, error) {
	switch name {
	case "", "lf":
		return Format{}, nil
	case "crlf":
		return Format{UseCRLF: true}, nil
	default:
		return Format{}, fmt.Errorf("unknown line terminator %q: must be lf or crlf", name)
	}
}

// Canonical serializes r as a header row followed by its value row.
func Canonical(r Record, f Format) ([]byte, error) {
	if r.Len() == 0 {
		return nil, fmt.Errorf("cannot canonicalize a record without fields")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = Delimiter
	w.UseCRLF = f.UseCRLF

	if err := w.Write(r.fields); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.Write(r.values); err != nil {
		return nil, fmt.Errorf("failed to write values: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush canonical form: %w", err)
	}
	return buf.Bytes(), nil
}

// CanonicalWithout serializes r with field excluded. This is the fingerprint
// input at both seal and validate time.
func CanonicalWithout(r Record, field string, f Format) ([]byte, error) {
	return Canonical(r.Without(field), f)
}
