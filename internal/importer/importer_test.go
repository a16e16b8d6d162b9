package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&StatementParser{})
	p := r.Get("huf")
	require.NotNil(t, p)
	assert.Equal(t, "huf", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&StatementParser{})
	assert.NotNil(t, r.Get("HUF"))
	assert.NotNil(t, r.Get("Huf"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&StatementParser{})
	assert.Panics(t, func() { r.Register(&StatementParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("huf"))
	assert.Equal(t, []string{"huf"}, r.Formats())
}

func TestRegistry_FormatsEmpty(t *testing.T) {
	assert.Empty(t, NewRegistry().Formats())
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BANK2.CSV"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "BANK2.CSV", files[0].Name)
	assert.Equal(t, "bank.csv", files[1].Name)
	assert.Equal(t, filepath.Join(dir, "bank.csv"), files[1].Path)
	assert.Equal(t, int64(4), files[1].Size)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed")
	require.NoError(t, os.MkdirAll(processed, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processed, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "import"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	// Source gone.
	_, err := os.Stat(filepath.Join(dir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))

	// Destination exists.
	info, err := os.Stat(filepath.Join(dir, "processed", "bank.csv"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestMarkProcessed_MissingFile(t *testing.T) {
	err := MarkProcessed(t.TempDir(), "nope.csv")
	assert.Error(t, err)
}
