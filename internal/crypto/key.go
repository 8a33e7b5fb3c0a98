package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// KeySize is the length in bytes of every record encryption key.
const KeySize = 32

// GenerateKey returns a fresh random key. Every sealed record gets its own.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}
