package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/zakazai/tinysql/internal/types"
)

// Table is one relation: a fixed schema plus its rows keyed by row id.
//
// A single lock guards the schema, the rows and the id counter. It keeps the
// row map structurally sound under concurrent use; it does not make a
// sequence of calls atomic. Callers that need isolation must lock above this.
type Table struct {
	name string

	mu      sync.RWMutex
	columns []types.Column
	rows    map[uint64]types.Row
	nextID  uint64
}

// NewTable creates an empty table with the given columns.
func NewTable(name string, columns ...types.Column) *Table {
	t := &Table{
		name:   name,
		rows:   make(map[uint64]types.Row),
		nextID: 1,
	}
	for _, col := range columns {
		t.AddColumn(col)
	}
	return t
}

func (t *Table) Name() string {
	return t.name
}

// AddColumn appends col to the schema. It is meant for table construction,
// before any row is inserted.
func (t *Table) AddColumn(col types.Column) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.columns = append(t.columns, col)
}

// Columns returns a copy of the schema in declaration order.
func (t *Table) Columns() []types.Column {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks a column up by name, ignoring case.
func (t *Table) Column(name string) (types.Column, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, col := range t.columns {
		if strings.EqualFold(col.Name, name) {
			return col, true
		}
	}
	return types.Column{}, false
}

// Insert stores row under its id. Schema columns missing from the row are
// set to Null, and the id counter moves past row.ID so that rows loaded with
// pre-assigned ids never collide with ids handed out later.
func (t *Table) Insert(row types.Row) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if row.Values == nil {
		row.Values = make(map[string]types.Value, len(t.columns))
	}
	for _, col := range t.columns {
		if _, ok := row.Values[col.Name]; !ok {
			row.Values[col.Name] = types.Null()
		}
	}
	t.rows[row.ID] = row

	if row.ID >= t.nextID {
		t.nextID = row.ID + 1
	}
}

// SelectAll returns a copy of every row, ordered by id. Later inserts are
// not visible through the returned slice.
func (t *Table) SelectAll() []types.Row {
	t.mu.RLock()
	out := make([]types.Row, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row.Clone())
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextID returns the current counter value and advances it.
func (t *Table) NextID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	return id
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Clear drops every row and resets the id counter to 1.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = make(map[uint64]types.Row)
	t.nextID = 1
}
