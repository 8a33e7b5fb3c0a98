package hashicorp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/vault/api"
	"github.com/hengadev/recordseal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLogical emulates a KV v2 engine: writes are stored as-is and reads
// return them under Data.
type fakeLogical struct {
	secrets map[string]map[string]interface{}
	err     error
	// failures is the number of calls that fail with a transient error
	// before the fake starts answering.
	failures int
	calls    int
}

func (f *fakeLogical) fail() error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("dial tcp 127.0.0.1:8200: connection reset by peer")
	}
	return nil
}

func newFakeLogical() *fakeLogical {
	return &fakeLogical{secrets: map[string]map[string]interface{}{}}
}

func (f *fakeLogical) ReadWithContext(ctx context.Context, path string) (*api.Secret, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	data, ok := f.secrets[path]
	if !ok {
		return nil, nil
	}
	return &api.Secret{Data: data}, nil
}

func (f *fakeLogical) WriteWithContext(ctx context.Context, path string, data map[string]interface{}) (*api.Secret, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	f.secrets[path] = data
	return &api.Secret{}, nil
}

// DeleteWithContext on a metadata path drops the matching data path.
func (f *fakeLogical) DeleteWithContext(ctx context.Context, path string) (*api.Secret, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	delete(f.secrets, strings.Replace(path, "/metadata/", "/data/", 1))
	return nil, nil
}

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestNewKVKeyStoreWithLogical(t *testing.T) {
	tests := []struct {
		name    string
		logical Logical
		mount   string
		wantErr bool
	}{
		{"valid", newFakeLogical(), "secret", false},
		{"trims slashes", newFakeLogical(), "/secret/", false},
		{"nil client", nil, "secret", true},
		{"empty mount", newFakeLogical(), "/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ks, err := NewKVKeyStoreWithLogical(tt.logical, tt.mount)
			if tt.wantErr {
				assert.ErrorIs(t, err, recordseal.ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "secret/data/recordseal/keys/e1", ks.GetStoragePath("e1"))
		})
	}
}

func TestKVKeyStore_PutGet(t *testing.T) {
	ctx := context.Background()
	logical := newFakeLogical()
	ks, err := NewKVKeyStoreWithLogical(logical, "secret")
	require.NoError(t, err)

	require.NoError(t, ks.PutKey(ctx, "e1", "H001", testKey()))

	stored := logical.secrets["secret/data/recordseal/keys/e1"]
	require.NotNil(t, stored)
	inner, ok := stored["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "H001", inner["identifier"])

	key, err := ks.GetKey(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, testKey(), key)
}

func TestKVKeyStore_PutKeyValidation(t *testing.T) {
	ks, err := NewKVKeyStoreWithLogical(newFakeLogical(), "secret")
	require.NoError(t, err)

	err = ks.PutKey(context.Background(), "", "H001", testKey())
	assert.ErrorIs(t, err, recordseal.ErrInvalidConfiguration)

	err = ks.PutKey(context.Background(), "e1", "H001", []byte("short"))
	assert.ErrorIs(t, err, recordseal.ErrInvalidConfiguration)
}

func TestKVKeyStore_GetKeyErrors(t *testing.T) {
	tests := []struct {
		name    string
		secret  map[string]interface{}
		wantErr error
	}{
		{
			name:    "missing",
			secret:  nil,
			wantErr: recordseal.ErrKeyUnavailable,
		},
		{
			name:    "not kv v2",
			secret:  map[string]interface{}{"key": "abc"},
			wantErr: recordseal.ErrKeyUnavailable,
		},
		{
			name:    "no key value",
			secret:  map[string]interface{}{"data": map[string]interface{}{"identifier": "H001"}},
			wantErr: recordseal.ErrKeyUnavailable,
		},
		{
			name:    "bad base64",
			secret:  map[string]interface{}{"data": map[string]interface{}{"key": "!!!"}},
			wantErr: recordseal.ErrKeyUnavailable,
		},
		{
			name:    "wrong length",
			secret:  map[string]interface{}{"data": map[string]interface{}{"key": "c2hvcnQ="}},
			wantErr: recordseal.ErrKeyUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logical := newFakeLogical()
			if tt.secret != nil {
				logical.secrets["secret/data/recordseal/keys/e1"] = tt.secret
			}
			ks, err := NewKVKeyStoreWithLogical(logical, "secret")
			require.NoError(t, err)

			_, err = ks.GetKey(context.Background(), "e1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestKVKeyStore_VaultUnavailable(t *testing.T) {
	logical := newFakeLogical()
	logical.err = errors.New("connection refused")
	ks, err := NewKVKeyStoreWithLogical(logical, "secret")
	require.NoError(t, err)

	err = ks.PutKey(context.Background(), "e1", "H001", testKey())
	assert.ErrorIs(t, err, recordseal.ErrStorageUnavailable)

	_, err = ks.GetKey(context.Background(), "e1")
	assert.ErrorIs(t, err, recordseal.ErrStorageUnavailable)
	assert.True(t, recordseal.IsStorageError(err))
}

func TestKVKeyStore_RetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	logical := newFakeLogical()
	ks, err := NewKVKeyStoreWithLogical(logical, "secret")
	require.NoError(t, err)

	logical.failures = 1
	require.NoError(t, ks.PutKey(ctx, "e1", "H001", testKey()))
	assert.Equal(t, 2, logical.calls)

	logical.failures = 2
	logical.calls = 0
	got, err := ks.GetKey(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, testKey(), got)
	assert.Equal(t, 3, logical.calls)
}

func TestKVKeyStore_WithPipeline(t *testing.T) {
	ctx := context.Background()
	ks, err := NewKVKeyStoreWithLogical(newFakeLogical(), "secret")
	require.NoError(t, err)

	cfg := recordseal.DefaultConfig()
	cfg.PersistKey = true
	cfg.KeyStore = recordseal.KeyStoreVault
	p, src, err := recordseal.NewTestPipeline(&cfg, recordseal.WithKeyStore(ks))
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, src.Put(ctx, "H001.csv", []byte("name,age\nAlice,40\n")))
	sealed, err := p.Process(ctx, "H001")
	require.NoError(t, err)

	key, err := ks.GetKey(ctx, sealed.EntryID)
	require.NoError(t, err)
	assert.Equal(t, sealed.Key, key)

	rec, err := p.Reveal(ctx, "H001", nil)
	require.NoError(t, err)
	fp, ok := rec.Get("fingerprint")
	require.True(t, ok)
	assert.Equal(t, sealed.Fingerprint, fp)
}

func TestKVKeyStore_PipelineHealth(t *testing.T) {
	ctx := context.Background()
	logical := newFakeLogical()
	ks, err := NewKVKeyStoreWithLogical(logical, "secret")
	require.NoError(t, err)

	cfg := recordseal.DefaultConfig()
	cfg.PersistKey = true
	cfg.KeyStore = recordseal.KeyStoreVault
	p, _, err := recordseal.NewTestPipeline(&cfg, recordseal.WithKeyStore(ks))
	require.NoError(t, err)
	defer p.Close()

	report := p.Health(ctx)
	assert.Equal(t, recordseal.HealthHealthy, report.Status)
	assert.Equal(t, 3, report.Summary.Total)

	logical.err = errors.New("Error making API request. Code: 503. Vault is sealed")
	report = p.Health(ctx)
	assert.Equal(t, recordseal.HealthDegraded, report.Status)
	assert.Equal(t, 1, report.Summary.Unhealthy)
}

func TestKVKeyStore_DeleteKey(t *testing.T) {
	ctx := context.Background()
	logical := newFakeLogical()
	ks, err := NewKVKeyStoreWithLogical(logical, "secret")
	require.NoError(t, err)

	require.NoError(t, ks.PutKey(ctx, "e1", "H001", testKey()))
	require.NoError(t, ks.DeleteKey(ctx, "e1"))

	_, err = ks.GetKey(ctx, "e1")
	assert.ErrorIs(t, err, recordseal.ErrKeyUnavailable)

	require.NoError(t, ks.DeleteKey(ctx, "missing"))

	logical.err = errors.New("permission denied")
	assert.ErrorIs(t, ks.DeleteKey(ctx, "e1"), recordseal.ErrStorageUnavailable)
}
