package engine

import (
	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

// Join computes the inner equality join left.leftCol = right.rightCol with a
// nested loop over snapshots of both tables, so it costs
// O(len(left) * len(right)).
//
// Two cells match when both are non-null and their canonical text forms are
// equal, which lets an Integer 1 match a Text "1". Each output row gets a
// fresh id counting from 1 and holds every column of left then every column
// of right, named "<table>.<column>".
func Join(left, right *storage.Table, leftCol, rightCol string) ([]types.Row, error) {
	if left == nil || right == nil {
		return nil, types.Errorf(types.KindNotFound, "one or more tables not found for join")
	}

	lc, ok := left.Column(leftCol)
	if !ok {
		return nil, types.Errorf(types.KindMissingColumn, "column %s missing in %s", leftCol, left.Name())
	}
	rc, ok := right.Column(rightCol)
	if !ok {
		return nil, types.Errorf(types.KindMissingColumn, "column %s missing in %s", rightCol, right.Name())
	}

	leftColumns := left.Columns()
	rightColumns := right.Columns()
	leftRows := left.SelectAll()
	rightRows := right.SelectAll()

	var out []types.Row
	var nextID uint64 = 1
	for _, r1 := range leftRows {
		v1 := r1.Values[lc.Name]
		if v1.IsNull() {
			continue
		}
		key := v1.String()

		for _, r2 := range rightRows {
			v2 := r2.Values[rc.Name]
			if v2.IsNull() || v2.String() != key {
				continue
			}

			merged := types.NewRow(nextID)
			nextID++
			for _, col := range leftColumns {
				merged.Set(left.Name()+"."+col.Name, r1.Values[col.Name])
			}
			for _, col := range rightColumns {
				merged.Set(right.Name()+"."+col.Name, r2.Values[col.Name])
			}
			out = append(out, merged)
		}
	}
	return out, nil
}

// JoinColumns returns the column names of a join result in output order.
func JoinColumns(left, right *storage.Table) []string {
	var names []string
	for _, col := range left.Columns() {
		names = append(names, left.Name()+"."+col.Name)
	}
	for _, col := range right.Columns() {
		names = append(names, right.Name()+"."+col.Name)
	}
	return names
}
