package sealerr

import (
	"errors"
	"fmt"
)

var (
	// Input errors
	ErrSchemaViolation = errors.New("schema violation")
	ErrNotFound        = errors.New("record not found")
	ErrDecode          = errors.New("record decode error")
	ErrInvalidID       = errors.New("invalid identifier")

	// Backend errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrKeyUnavailable     = errors.New("encryption key unavailable")

	// Crypto errors
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")

	ErrInvalidConfiguration = errors.New("invalid configuration")
)

func NewRowCountError(identifier string, rows int, action Action) error {
	return fmt.Errorf("%w: %s '%s' requires exactly one record, got %d", ErrSchemaViolation, action, identifier, rows)
}

func NewMissingFieldError(identifier string, fieldName string, action Action) error {
	return fmt.Errorf("%w: field '%s' is required to %s '%s'", ErrSchemaViolation, fieldName, action, identifier)
}

func NewNoDataFieldsError(identifier string, fieldName string, action Action) error {
	return fmt.Errorf("%w: %s '%s' has no fields besides '%s'", ErrSchemaViolation, action, identifier, fieldName)
}

func NewNotFoundError(name string, action Action) error {
	return fmt.Errorf("%w: %s '%s'", ErrNotFound, action, name)
}

func NewDecodeError(details string) error {
	return fmt.Errorf("%w: %s", ErrDecode, details)
}

func NewStorageError(action Action, err error) error {
	return fmt.Errorf("%w: %s failed: %w", ErrStorageUnavailable, action, err)
}

func NewInvalidIdentifierError(identifier string, details string) error {
	return fmt.Errorf("%w: '%s' %s", ErrInvalidID, identifier, details)
}
