package recordseal

import (
	"errors"

	"github.com/hengadev/recordseal/internal/sealerr"
)

var (
	// Input errors
	ErrSchemaViolation = sealerr.ErrSchemaViolation
	ErrNotFound        = sealerr.ErrNotFound
	ErrDecode          = sealerr.ErrDecode
	ErrInvalidID       = sealerr.ErrInvalidID

	// Backend errors
	ErrStorageUnavailable = sealerr.ErrStorageUnavailable
	ErrKeyUnavailable     = sealerr.ErrKeyUnavailable

	// Crypto errors
	ErrEncryptionFailed = sealerr.ErrEncryptionFailed
	ErrDecryptionFailed = sealerr.ErrDecryptionFailed

	ErrInvalidConfiguration = sealerr.ErrInvalidConfiguration
)

// IsSchemaError reports whether the input did not hold exactly one well formed record.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchemaViolation)
}

// IsSourceError reports whether the record source could not supply valid bytes.
func IsSourceError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDecode) ||
		errors.Is(err, ErrInvalidID)
}

// IsStorageError reports whether the record store or key store failed.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrKeyUnavailable)
}

// IsCryptoError reports whether encryption or decryption failed.
func IsCryptoError(err error) bool {
	return errors.Is(err, ErrEncryptionFailed) ||
		errors.Is(err, ErrDecryptionFailed)
}

// IsConfigurationError reports whether the pipeline was misconfigured.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}
