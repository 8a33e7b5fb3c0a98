package recordseal

import (
	"github.com/hengadev/recordseal/internal/record"
)

// Record is a single decoded row with its ordered header.
type Record = record.Record

// Outcome is the result of comparing an embedded fingerprint with a fresh one.
// The zero value is Unknown and is returned alongside errors.
type Outcome int

const (
	Unknown Outcome = iota
	Verified
	Mismatch
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Sealed is returned by Process.
type Sealed struct {
	EntryID     string
	Identifier  string
	Fingerprint string
	// Key is the only copy of the encryption key unless the pipeline persists keys.
	Key        []byte
	Ciphertext []byte
	Suite      string

	Original      Record
	Fingerprinted Record
}

// Verdict is returned by Validate and Verify. A mismatch is a verdict, not an error.
type Verdict struct {
	Identifier string
	Outcome    Outcome
	Stored     string
	Computed   string
}

// OK reports whether the record was verified.
func (v Verdict) OK() bool {
	return v.Outcome == Verified
}
