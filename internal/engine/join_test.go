package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

func insertValues(t *storage.Table, values ...types.Value) {
	row := types.NewRow(t.NextID())
	for i, col := range t.Columns() {
		row.Set(col.Name, values[i])
	}
	t.Insert(row)
}

func usersAndOrders() (*storage.Table, *storage.Table) {
	users := storage.NewTable("A",
		types.Column{Name: "id", Type: types.Integer, PrimaryKey: true},
		types.Column{Name: "name", Type: types.Text},
	)
	insertValues(users, types.IntegerValue(1), types.TextValue("Alice"))
	insertValues(users, types.IntegerValue(2), types.TextValue("Bob"))

	orders := storage.NewTable("B",
		types.Column{Name: "id", Type: types.Integer, PrimaryKey: true},
		types.Column{Name: "user_id", Type: types.Integer},
		types.Column{Name: "total", Type: types.Double},
	)
	insertValues(orders, types.IntegerValue(100), types.IntegerValue(1), types.DoubleValue(50.0))
	insertValues(orders, types.IntegerValue(101), types.IntegerValue(99), types.DoubleValue(20.0))
	return users, orders
}

func TestJoin(t *testing.T) {
	users, orders := usersAndOrders()

	rows, err := Join(users, orders, "id", "user_id")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, uint64(1), got.ID)
	assert.Equal(t, types.IntegerValue(1), got.Values["A.id"])
	assert.Equal(t, types.TextValue("Alice"), got.Values["A.name"])
	assert.Equal(t, types.IntegerValue(100), got.Values["B.id"])
	assert.Equal(t, types.IntegerValue(1), got.Values["B.user_id"])
	assert.Equal(t, types.DoubleValue(50.0), got.Values["B.total"])
	assert.Len(t, got.Values, 5)

	assert.Equal(t, []string{"A.id", "A.name", "B.id", "B.user_id", "B.total"}, JoinColumns(users, orders))
}

func TestJoinMatchesByText(t *testing.T) {
	left := storage.NewTable("l", types.Column{Name: "k", Type: types.Integer})
	right := storage.NewTable("r", types.Column{Name: "k", Type: types.Text})
	insertValues(left, types.IntegerValue(1))
	insertValues(left, types.Null())
	insertValues(right, types.TextValue("1"))
	insertValues(right, types.TextValue("1"))
	insertValues(right, types.Null())

	rows, err := Join(left, right, "K", "k")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(1), rows[0].ID)
	assert.Equal(t, uint64(2), rows[1].ID)
}

func TestJoinNumericTextForms(t *testing.T) {
	left := storage.NewTable("l", types.Column{Name: "k", Type: types.Integer})
	right := storage.NewTable("r", types.Column{Name: "k", Type: types.Double})
	insertValues(left, types.IntegerValue(1))
	insertValues(left, types.IntegerValue(1000000))
	insertValues(right, types.DoubleValue(1.0))
	insertValues(right, types.DoubleValue(1e6))
	insertValues(right, types.DoubleValue(1.5))

	rows, err := Join(left, right, "k", "k")
	require.NoError(t, err)

	// 1.0 prints as "1" and matches; 1e6 prints as "1e+06" and does not.
	require.Len(t, rows, 1)
	assert.Equal(t, types.IntegerValue(1), rows[0].Values["l.k"])
	assert.Equal(t, types.DoubleValue(1), rows[0].Values["r.k"])
}

func TestJoinErrors(t *testing.T) {
	users, orders := usersAndOrders()

	_, err := Join(users, orders, "missing", "user_id")
	assert.ErrorIs(t, err, types.ErrMissingColumn)
	assert.Contains(t, err.Error(), "missing in A")

	_, err = Join(users, orders, "id", "missing")
	assert.ErrorIs(t, err, types.ErrMissingColumn)
	assert.Contains(t, err.Error(), "missing in B")

	_, err = Join(nil, orders, "id", "user_id")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
