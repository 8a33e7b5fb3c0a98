package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hengadev/recordseal/internal/sealerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_GetPut(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewDir(root)
	require.NoError(t, err)
	assert.Equal(t, root, d.Root())

	require.NoError(t, d.Put(ctx, "sealed/H001.csv", []byte("name\nAlice\n")))

	got, err := d.Get(ctx, "sealed/H001.csv")
	require.NoError(t, err)
	assert.Equal(t, "name\nAlice\n", string(got))

	require.NoError(t, d.Put(ctx, "sealed/H001.csv", []byte("name\nBob\n")))
	got, err = d.Get(ctx, "sealed/H001.csv")
	require.NoError(t, err)
	assert.Equal(t, "name\nBob\n", string(got))

	entries, err := os.ReadDir(filepath.Join(root, "sealed"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestDir_GetMissing(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, err = d.Get(context.Background(), "H404.csv")
	assert.ErrorIs(t, err, sealerr.ErrNotFound)
}

func TestDir_RejectsEscapingNames(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../etc/passwd", "/etc/passwd", ""} {
		_, err := d.Get(context.Background(), name)
		assert.ErrorIs(t, err, sealerr.ErrNotFound, name)
		assert.Error(t, d.Put(context.Background(), name, []byte("x")), name)
	}
}

func TestNewDir_Empty(t *testing.T) {
	_, err := NewDir("")
	assert.ErrorIs(t, err, sealerr.ErrInvalidConfiguration)
}

func TestDir_Ping(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	d, err := NewDir(root)
	require.NoError(t, err)
	assert.NoError(t, d.Ping(ctx))

	missing, err := NewDir(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.ErrorIs(t, missing.Ping(ctx), sealerr.ErrNotFound)

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	notDir, err := NewDir(file)
	require.NoError(t, err)
	assert.ErrorIs(t, notDir.Ping(ctx), sealerr.ErrInvalidConfiguration)
}
