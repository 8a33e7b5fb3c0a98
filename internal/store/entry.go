package store

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one sealed record as persisted.
type Entry struct {
	ID          string    `json:"id"`
	Identifier  string    `json:"identifier"`
	Fingerprint string    `json:"fingerprint"`
	Ciphertext  []byte    `json:"ciphertext"`
	Suite       string    `json:"suite"`
	CreatedAt   time.Time `json:"created_at"`
}

// prepare fills the generated fields of an entry about to be appended.
func (e Entry) prepare() Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return e
}
