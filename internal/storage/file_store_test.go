package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

func newFileStore(t *testing.T, mode storage.DecodeMode) (*storage.FileStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	fs, err := storage.NewFileStore(dir, "csv", mode, types.NopLogger())
	require.NoError(t, err)
	return fs, dir
}

func TestFileStoreLoadMissing(t *testing.T) {
	fs, dir := newFileStore(t, storage.DecodeLenient)

	info, err := os.Stat(dir)
	require.NoError(t, err, "data directory is created up front")
	assert.True(t, info.IsDir())

	tbl, found, err := fs.Load("ghost")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, tbl)
	assert.False(t, fs.Exists("ghost"))
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	fs, dir := newFileStore(t, storage.DecodeStrict)

	original := allTypesTable()
	require.NoError(t, fs.Save(original))
	assert.Equal(t, filepath.Join(dir, "things.csv"), fs.Path("things"))
	assert.True(t, fs.Exists("things"))

	loaded, found, err := fs.Load("things")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, original.Columns(), loaded.Columns())
	assert.Equal(t, original.SelectAll(), loaded.SelectAll())

	// Saving again rewrites the file rather than appending to it.
	original.Clear()
	require.NoError(t, fs.Save(original))
	loaded, found, err = fs.Load("things")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, loaded.Len())
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	fs, dir := newFileStore(t, storage.DecodeLenient)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("id:WHATEVER\n"), 0644))

	_, found, err := fs.Load("broken")
	assert.False(t, found)
	assert.ErrorIs(t, err, types.ErrUnknownType)
}

func TestFileStoreSaveFailure(t *testing.T) {
	fs, dir := newFileStore(t, storage.DecodeLenient)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "blocked.csv"), 0755))

	err := fs.Save(storage.NewTable("blocked", types.Column{Name: "id", Type: types.Integer}))
	assert.ErrorIs(t, err, types.ErrIOFailure)
}

func TestFileStoreList(t *testing.T) {
	fs, dir := newFileStore(t, storage.DecodeLenient)
	require.NoError(t, fs.Save(storage.NewTable("zeta", types.Column{Name: "id", Type: types.Integer})))
	require.NoError(t, fs.Save(storage.NewTable("alpha", types.Column{Name: "id", Type: types.Integer})))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0755))

	names, err := fs.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestCheckTableName(t *testing.T) {
	for _, name := range []string{"users", "_tmp", "t2", "Ünits"} {
		assert.NoError(t, storage.CheckTableName(name), name)
	}
	for _, name := range []string{"", "../pwned", "a/b", `a\b`, "..", "2fast", "dotted.name", "white space"} {
		assert.ErrorIs(t, storage.CheckTableName(name), types.ErrSchemaMismatch, name)
	}
}

func TestFileStoreRejectsEscapingNames(t *testing.T) {
	fs, dir := newFileStore(t, storage.DecodeLenient)

	err := fs.Save(storage.NewTable("../escaped", types.Column{Name: "id", Type: types.Integer}))
	assert.ErrorIs(t, err, types.ErrSchemaMismatch)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dir), "escaped.csv"))

	_, found, err := fs.Load("../escaped")
	assert.ErrorIs(t, err, types.ErrSchemaMismatch)
	assert.False(t, found)
}
