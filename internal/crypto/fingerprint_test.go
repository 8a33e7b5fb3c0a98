package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "alice record",
			input: []byte("name,age\nAlice,40\n"),
			want:  "1651372b223f4c2bbe18c55c20028d14fe51a0d78d96d4735c25d0513dd68d6b",
		},
		{
			name:  "alice record one year later",
			input: []byte("name,age\nAlice,41\n"),
			want:  "3ffc994d851ca07b904b3437bc70509483be4013c41c7547f377e3c807734bb5",
		},
		{
			name:  "empty input",
			input: []byte(""),
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, FingerprintLength)
		})
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	input := []byte("name,age\nAlice,40\n")
	first := Fingerprint(input)
	for range 100 {
		assert.Equal(t, first, Fingerprint(input))
	}
}

func TestFingerprint_SingleByteChange(t *testing.T) {
	input := []byte("name,age\nAlice,40\n")
	base := Fingerprint(input)
	for i := range input {
		mutated := append([]byte(nil), input...)
		mutated[i] ^= 0x01
		assert.NotEqual(t, base, Fingerprint(mutated), "byte %d", i)
	}
}

func TestFingerprintsEqual(t *testing.T) {
	fp := Fingerprint([]byte("x"))
	assert.True(t, FingerprintsEqual(fp, fp))
	assert.False(t, FingerprintsEqual(fp, Fingerprint([]byte("y"))))
	assert.False(t, FingerprintsEqual(fp, fp[:10]))
	assert.False(t, FingerprintsEqual(fp, ""))
}
