package storage_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

func TestParquetMirrorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mirror, err := storage.NewParquetMirror(dir, types.NopLogger())
	require.NoError(t, err)

	original := allTypesTable()
	require.NoError(t, mirror.Write(original))
	assert.FileExists(t, mirror.Path("things"))

	rows, err := storage.NewParquetReader(dir).ReadTable("things", original.Columns())
	require.NoError(t, err)
	assert.Equal(t, original.SelectAll(), rows)
}

func TestParquetMirrorEmptyTableRemovesFile(t *testing.T) {
	dir := t.TempDir()
	mirror, err := storage.NewParquetMirror(dir, types.NopLogger())
	require.NoError(t, err)

	tbl := allTypesTable()
	require.NoError(t, mirror.Write(tbl))
	require.FileExists(t, mirror.Path("things"))

	tbl.Clear()
	require.NoError(t, mirror.Write(tbl))
	assert.NoFileExists(t, mirror.Path("things"))

	rows, err := storage.NewParquetReader(dir).ReadTable("things", tbl.Columns())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHybridStore(t *testing.T) {
	root := t.TempDir()
	var logs bytes.Buffer
	logger := types.InitLogger(types.LogLevelWarning, &logs)

	persister, err := storage.NewPersister(storage.Config{
		DataDir:   filepath.Join(root, "data"),
		Extension: "csv",
		MirrorDir: filepath.Join(root, "mirror"),
		Logger:    logger,
	})
	require.NoError(t, err)
	hybrid, ok := persister.(*storage.HybridStore)
	require.True(t, ok)
	assert.True(t, hybrid.GetLastSyncTime().IsZero())

	original := allTypesTable()
	require.NoError(t, hybrid.Save(original))
	assert.False(t, hybrid.GetLastSyncTime().IsZero())
	assert.FileExists(t, filepath.Join(root, "data", "things.csv"))
	assert.FileExists(t, filepath.Join(root, "mirror", "things.parquet"))

	loaded, found, err := hybrid.Load("things")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, original.SelectAll(), loaded.SelectAll())

	mirrored, err := hybrid.ReadMirror(loaded)
	require.NoError(t, err)
	assert.Equal(t, original.SelectAll(), mirrored)
	assert.Empty(t, logs.String())
}

func TestHybridStoreConcurrentSaves(t *testing.T) {
	root := t.TempDir()
	persister, err := storage.NewPersister(storage.Config{
		DataDir:   filepath.Join(root, "data"),
		MirrorDir: filepath.Join(root, "mirror"),
		Logger:    types.NopLogger(),
	})
	require.NoError(t, err)
	hybrid := persister.(*storage.HybridStore)

	const writers = 4
	tables := make([]*storage.Table, writers)
	for i := range tables {
		tables[i] = storage.NewTable(fmt.Sprintf("t%d", i), types.Column{Name: "id", Type: types.Integer})
	}

	var wg sync.WaitGroup
	for _, tbl := range tables {
		wg.Add(1)
		go func(tbl *storage.Table) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				row := types.NewRow(tbl.NextID())
				row.Set("id", types.IntegerValue(int64(i)))
				tbl.Insert(row)
				assert.NoError(t, hybrid.Save(tbl))
				_ = hybrid.GetLastSyncTime()
			}
		}(tbl)
	}
	wg.Wait()

	assert.False(t, hybrid.GetLastSyncTime().IsZero())
	for _, tbl := range tables {
		rows, err := hybrid.ReadMirror(tbl)
		require.NoError(t, err)
		assert.Len(t, rows, 5, tbl.Name())
	}
}

func TestHybridStoreMirrorFailureIsOnlyLogged(t *testing.T) {
	root := t.TempDir()
	var logs bytes.Buffer
	logger := types.InitLogger(types.LogLevelWarning, &logs)

	files, err := storage.NewFileStore(filepath.Join(root, "data"), "csv", storage.DecodeLenient, logger)
	require.NoError(t, err)
	mirror, err := storage.NewParquetMirror(filepath.Join(root, "mirror"), logger)
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(mirror.Path("things"), 0755))

	hybrid := storage.NewHybridStore(files, mirror, logger)
	require.NoError(t, hybrid.Save(allTypesTable()))

	assert.True(t, files.Exists("things"))
	assert.True(t, hybrid.GetLastSyncTime().IsZero())
	assert.Contains(t, logs.String(), "WARNING: ")
	assert.Contains(t, logs.String(), "parquet mirror of table things not updated")
}

func TestNewPersisterWithoutMirror(t *testing.T) {
	cfg := storage.DefaultConfig()
	assert.Equal(t, storage.DefaultDataDir, cfg.DataDir)
	assert.Equal(t, storage.DefaultExtension, cfg.Extension)
	assert.Equal(t, storage.DecodeLenient, cfg.DecodeMode)

	cfg.DataDir = filepath.Join(t.TempDir(), "tables")
	cfg.Logger = types.NopLogger()
	persister, err := storage.NewPersister(cfg)
	require.NoError(t, err)

	fs, ok := persister.(*storage.FileStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(cfg.DataDir, "x.csv"), fs.Path("x"))
}
