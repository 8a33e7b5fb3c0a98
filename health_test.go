package recordseal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainSource implements Source but not Pinger.
type plainSource struct{ *MemorySource }

func (s plainSource) Get(ctx context.Context, name string) ([]byte, error) {
	return s.MemorySource.Get(ctx, name)
}

func (s plainSource) Put(ctx context.Context, name string, data []byte) error {
	return s.MemorySource.Put(ctx, name, data)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	report := f.p.Health(context.Background())
	assert.Equal(t, HealthHealthy, report.Status)
	assert.True(t, report.Healthy())
	require.Len(t, report.Results, 2)
	assert.Equal(t, "source", report.Results[0].Name)
	assert.Equal(t, "store", report.Results[1].Name)
}

func TestHealth_StoreDown(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	require.NoError(t, f.store.Close())

	report := f.p.Health(context.Background())
	assert.Equal(t, HealthUnhealthy, report.Status)
	assert.Equal(t, 1, report.Summary.Unhealthy)
	assert.NotEmpty(t, report.Results[1].Error)
}

func TestHealth_SkipsComponentsWithoutPing(t *testing.T) {
	f := newFixture(t, DefaultConfig(), WithSource(plainSource{NewMemorySource(nil)}))

	report := f.p.Health(context.Background())
	require.Len(t, report.Results, 1)
	assert.Equal(t, "store", report.Results[0].Name)
}

func TestHealth_KeyStoreSharedWithStore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PersistKey = true
	f := newFixture(t, cfg)

	report := f.p.Health(context.Background())
	assert.Equal(t, 2, report.Summary.Total, "the store doubles as key store and is checked once")
}

func TestHealth_FailingKeyStoreDegrades(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PersistKey = true
	keys := &pingingKeyStore{err: assert.AnError}
	f := newFixture(t, cfg, WithKeyStore(keys))

	report := f.p.Health(context.Background())
	assert.Equal(t, HealthDegraded, report.Status)
	assert.Equal(t, 3, report.Summary.Total)
}

type pingingKeyStore struct {
	MockKeyStore
	err error
}

func (k *pingingKeyStore) Ping(context.Context) error { return k.err }
