package storage_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

func peopleTable() *storage.Table {
	return storage.NewTable("people",
		types.Column{Name: "id", Type: types.Integer, PrimaryKey: true},
		types.Column{Name: "name", Type: types.Text},
		types.Column{Name: "score", Type: types.Double},
	)
}

func TestTableInsertFillsMissingColumns(t *testing.T) {
	tbl := peopleTable()

	row := types.NewRow(tbl.NextID())
	row.Set("id", types.IntegerValue(1))
	tbl.Insert(row)

	rows := tbl.SelectAll()
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Values, 3)
	assert.True(t, rows[0].Values["name"].IsNull())
	assert.True(t, rows[0].Values["score"].IsNull())
}

func TestTableNextIDAdvancesPastInsertedIDs(t *testing.T) {
	tbl := peopleTable()
	assert.Equal(t, uint64(1), tbl.NextID())
	assert.Equal(t, uint64(2), tbl.NextID())

	tbl.Insert(types.NewRow(41))
	assert.Equal(t, uint64(42), tbl.NextID())

	tbl.Insert(types.NewRow(5))
	assert.Equal(t, uint64(43), tbl.NextID())
}

func TestTableSelectAllIsASnapshot(t *testing.T) {
	tbl := peopleTable()
	first := types.NewRow(tbl.NextID())
	first.Set("name", types.TextValue("Alice"))
	tbl.Insert(first)

	snapshot := tbl.SelectAll()
	snapshot[0].Set("name", types.TextValue("changed"))

	second := types.NewRow(tbl.NextID())
	tbl.Insert(second)

	assert.Len(t, snapshot, 1)
	again := tbl.SelectAll()
	require.Len(t, again, 2)
	assert.Equal(t, types.TextValue("Alice"), again[0].Values["name"])
	assert.Equal(t, uint64(1), again[0].ID)
	assert.Equal(t, uint64(2), again[1].ID)
}

func TestTableColumnLookupIgnoresCase(t *testing.T) {
	tbl := peopleTable()

	col, ok := tbl.Column("NAME")
	require.True(t, ok)
	assert.Equal(t, "name", col.Name)
	assert.Equal(t, types.Text, col.Type)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)
}

func TestTableClear(t *testing.T) {
	tbl := peopleTable()
	tbl.Insert(types.NewRow(tbl.NextID()))
	tbl.Insert(types.NewRow(tbl.NextID()))

	tbl.Clear()
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, uint64(1), tbl.NextID())
}

func TestTableConcurrentUse(t *testing.T) {
	tbl := peopleTable()

	const (
		writers  = 8
		perWrite = 50
	)
	var wg sync.WaitGroup
	ids := make([][]uint64, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWrite; i++ {
				id := tbl.NextID()
				ids[w] = append(ids[w], id)
				tbl.Insert(types.NewRow(id))
				_ = tbl.SelectAll()
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for _, batch := range ids {
		for _, id := range batch {
			assert.False(t, seen[id], "id %d handed out twice", id)
			seen[id] = true
		}
	}
	assert.Equal(t, writers*perWrite, tbl.Len())
	assert.Equal(t, uint64(writers*perWrite+1), tbl.NextID())
}

func TestRegistry(t *testing.T) {
	r := storage.NewRegistry()
	assert.False(t, r.Exists("people"))

	r.Add(peopleTable())
	r.Add(storage.NewTable("alpha"))

	got, ok := r.Get("people")
	require.True(t, ok)
	assert.Equal(t, "people", got.Name())
	assert.Equal(t, []string{"alpha", "people"}, r.Names())
}
