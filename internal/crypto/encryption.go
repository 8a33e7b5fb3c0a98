package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/hengadev/recordseal/internal/sealerr"
	"golang.org/x/crypto/chacha20poly1305"
)

// Suite names an authenticated encryption scheme.
type Suite string

const (
	SuiteAESGCM            Suite = "aes-256-gcm"
	SuiteXChaCha20Poly1305 Suite = "xchacha20-poly1305"
)

// DefaultSuite is used when no suite is configured.
const DefaultSuite = SuiteAESGCM

// ParseSuite validates a configured suite name.
func ParseSuite(name string) (Suite, error) {
	switch Suite(name) {
	case "":
		return DefaultSuite, nil
	case SuiteAESGCM, SuiteXChaCha20Poly1305:
		return Suite(name), nil
	default:
		return "", fmt.Errorf("unknown cipher suite %q", name)
	}
}

// Cipher seals and opens record payloads. The nonce is generated per call and
// prefixed to the returned ciphertext.
type Cipher struct {
	suite Suite
}

// NewCipher creates a Cipher for suite.
func NewCipher(suite Suite) (*Cipher, error) {
	if _, err := ParseSuite(string(suite)); err != nil {
		return nil, err
	}
	if suite == "" {
		suite = DefaultSuite
	}
	return &Cipher{suite: suite}, nil
}

// Suite returns the scheme this cipher uses.
func (c *Cipher) Suite() Suite {
	return c.suite
}

func (c *Cipher) aead(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d, expected %d", len(key), KeySize)
	}
	switch c.suite {
	case SuiteXChaCha20Poly1305:
		return chacha20poly1305.NewX(key)
	default:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		return cipher.NewGCM(block)
	}
}

// Encrypt seals plaintext under key.
func (c *Cipher) Encrypt(plaintext []byte, key []byte) ([]byte, error) {
	aead, err := c.aead(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sealerr.ErrEncryptionFailed, err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %w", sealerr.ErrEncryptionFailed, err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext produced by Encrypt. Any modification of the
// ciphertext or use of the wrong key is rejected.
func (c *Cipher) Decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	aead, err := c.aead(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sealerr.ErrDecryptionFailed, err)
	}
	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize+aead.Overhead() {
		return nil, fmt.Errorf("%w: invalid ciphertext size", sealerr.ErrDecryptionFailed)
	}
	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sealerr.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
