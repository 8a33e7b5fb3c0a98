package record

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/hengadev/recordseal/internal/sealerr"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns raw as UTF-8 text. A leading byte order mark is dropped.
// Input that is not valid UTF-8 is treated as ISO-8859-1, which maps every
// byte to a rune and therefore never fails.
func Decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, sealerr.NewDecodeError(fmt.Sprintf("legacy decoding failed: %v", err))
	}
	return decoded, nil
}

// Parse decodes a CSV batch: the first row is the header, every following row
// is a record. Blank lines are skipped. The batch may hold any number of rows;
// enforcing exactly one is left to the caller.
func Parse(raw []byte) ([]Record, error) {
	text, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = Delimiter

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, sealerr.NewDecodeError("input has no header row")
	}
	if err != nil {
		return nil, sealerr.NewDecodeError(fmt.Sprintf("failed to read header: %v", err))
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, sealerr.NewDecodeError(fmt.Sprintf("failed to read row %d: %v", len(records)+1, err))
		}
		rec, err := New(header, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	// A header-only batch still has to carry a well formed header.
	if len(records) == 0 {
		if _, err := New(header, make([]string, len(header))); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// ParseOne parses raw and requires exactly one record.
func ParseOne(raw []byte) (Record, error) {
	records, err := Parse(raw)
	if err != nil {
		return Record{}, err
	}
	if len(records) != 1 {
		return Record{}, fmt.Errorf("%w: expected exactly one record, got %d", sealerr.ErrSchemaViolation, len(records))
	}
	return records[0], nil
}
