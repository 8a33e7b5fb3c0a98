package hashicorp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/hengadev/recordseal"
	"github.com/hengadev/recordseal/internal/crypto"
	"github.com/hengadev/recordseal/internal/reliability"
)

// Paths are relative to the KV v2 mount. Key material lives under data/;
// deleting under metadata/ removes every version.
const (
	keyPathTemplate         = "%s/data/recordseal/keys/%s"
	keyMetadataPathTemplate = "%s/metadata/recordseal/keys/%s"
)

// Logical is the subset of the Vault logical API used by KVKeyStore.
// *api.Logical satisfies it.
type Logical interface {
	ReadWithContext(ctx context.Context, path string) (*api.Secret, error)
	WriteWithContext(ctx context.Context, path string, data map[string]interface{}) (*api.Secret, error)
	DeleteWithContext(ctx context.Context, path string) (*api.Secret, error)
}

// KVKeyStore implements recordseal.KeyStore on Vault KV v2.
type KVKeyStore struct {
	logical Logical
	mount   string
}

// NewKVKeyStore creates a KVKeyStore for the KV v2 engine mounted at mount,
// using a client configured from the environment (see package docs).
func NewKVKeyStore(mount string) (*KVKeyStore, error) {
	client, err := createVaultClient()
	if err != nil {
		return nil, err
	}
	return NewKVKeyStoreWithLogical(client.Logical(), mount)
}

// NewKVKeyStoreWithLogical creates a KVKeyStore over an existing logical client.
func NewKVKeyStoreWithLogical(logical Logical, mount string) (*KVKeyStore, error) {
	if logical == nil {
		return nil, fmt.Errorf("%w: vault client cannot be nil", recordseal.ErrInvalidConfiguration)
	}
	mount = strings.Trim(mount, "/")
	if mount == "" {
		return nil, fmt.Errorf("%w: vault mount cannot be empty", recordseal.ErrInvalidConfiguration)
	}
	return &KVKeyStore{logical: logical, mount: mount}, nil
}

// Ping checks that Vault answers its health endpoint. A sealed or standby
// server makes the client return an error.
func (k *KVKeyStore) Ping(ctx context.Context) error {
	if _, err := k.logical.ReadWithContext(ctx, "sys/health"); err != nil {
		return fmt.Errorf("%w: vault health check failed: %w", recordseal.ErrStorageUnavailable, err)
	}
	return nil
}

// GetStoragePath returns the KV v2 path holding the key for entryID.
func (k *KVKeyStore) GetStoragePath(entryID string) string {
	return fmt.Sprintf(keyPathTemplate, k.mount, entryID)
}

// PutKey stores key for entryID. KV v2 keeps earlier versions if the path
// already exists.
func (k *KVKeyStore) PutKey(ctx context.Context, entryID, identifier string, key []byte) error {
	if entryID == "" {
		return fmt.Errorf("%w: entry id cannot be empty", recordseal.ErrInvalidConfiguration)
	}
	if len(key) != crypto.KeySize {
		return fmt.Errorf("%w: key must be exactly %d bytes, got %d",
			recordseal.ErrInvalidConfiguration, crypto.KeySize, len(key))
	}

	data := map[string]interface{}{
		"data": map[string]interface{}{
			"key":        base64.StdEncoding.EncodeToString(key),
			"identifier": identifier,
		},
	}

	err := reliability.Retry(ctx, func(ctx context.Context) error {
		_, err := k.logical.WriteWithContext(ctx, k.GetStoragePath(entryID), data)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to store key in Vault KV: %w", recordseal.ErrStorageUnavailable, err)
	}
	return nil
}

// DeleteKey permanently removes every version of the key stored for entryID.
func (k *KVKeyStore) DeleteKey(ctx context.Context, entryID string) error {
	path := fmt.Sprintf(keyMetadataPathTemplate, k.mount, entryID)
	err := reliability.Retry(ctx, func(ctx context.Context) error {
		_, err := k.logical.DeleteWithContext(ctx, path)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete key from Vault KV: %w", recordseal.ErrStorageUnavailable, err)
	}
	return nil
}

// GetKey returns the key stored for entryID.
func (k *KVKeyStore) GetKey(ctx context.Context, entryID string) ([]byte, error) {
	var secret *api.Secret
	err := reliability.Retry(ctx, func(ctx context.Context) error {
		var err error
		secret, err = k.logical.ReadWithContext(ctx, k.GetStoragePath(entryID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read key from Vault KV: %w", recordseal.ErrStorageUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: no key stored for entry '%s'", recordseal.ErrKeyUnavailable, entryID)
	}

	// KV v2 wraps the actual data in a "data" key
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid KV v2 secret format for entry '%s'", recordseal.ErrKeyUnavailable, entryID)
	}
	encoded, ok := data["key"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: key value missing for entry '%s'", recordseal.ErrKeyUnavailable, entryID)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode key: %w", recordseal.ErrKeyUnavailable, err)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("%w: invalid key length: expected %d bytes, got %d",
			recordseal.ErrKeyUnavailable, crypto.KeySize, len(key))
	}
	return key, nil
}
