package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// FingerprintLength is the length of a hex encoded fingerprint.
const FingerprintLength = sha256.Size * 2

// Fingerprint returns the lowercase hex SHA-256 digest of content.
// The content should be the canonical serialization of a record with the
// fingerprint field excluded.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// FingerprintsEqual compares two fingerprints in constant time.
func FingerprintsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
