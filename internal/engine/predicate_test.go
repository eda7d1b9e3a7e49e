package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zakazai/tinysql/internal/types"
)

func rowWith(col string, v types.Value) types.Row {
	r := types.NewRow(1)
	r.Set(col, v)
	return r
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		cell  types.Value
		op    Operator
		value string
		want  bool
	}{
		{"int equal", types.IntegerValue(30), OpEqual, "30", true},
		{"int greater", types.IntegerValue(40), OpGreater, "35", true},
		{"int less equal", types.IntegerValue(35), OpLessEqual, "35", true},
		{"int not equal", types.IntegerValue(35), OpNotEqual, "35", false},
		{"float equal", types.FloatValue(10.5), OpEqual, "10.5", true},
		{"float beyond epsilon", types.FloatValue(10.5), OpEqual, "10.500002", false},
		{"float not equal beyond epsilon", types.FloatValue(10.5), OpNotEqual, "10.500002", true},
		{"double within epsilon", types.DoubleValue(2.0), OpEqual, "2.0000001", true},
		{"double ordering is exact", types.DoubleValue(2.0), OpGreater, "1.9999999", true},
		{"text equal", types.TextValue("Alice"), OpEqual, "Alice", true},
		{"text not equal", types.TextValue("Alice"), OpNotEqual, "Bob", true},
		{"text ordering is false", types.TextValue("b"), OpGreater, "a", false},
		{"bool equal", types.BooleanValue(true), OpEqual, "true", true},
		{"bool ordering is false", types.BooleanValue(true), OpGreater, "false", false},
		{"null never matches", types.Null(), OpEqual, "NULL", false},
		{"null never matches not equal", types.Null(), OpNotEqual, "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(rowWith("c", tt.cell), Predicate{Column: "c", Op: tt.op, Literal: tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateMissingColumn(t *testing.T) {
	got, err := Evaluate(rowWith("c", types.IntegerValue(1)), Predicate{Column: "other", Op: OpEqual, Literal: "1"})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluateLiteralErrors(t *testing.T) {
	tests := []struct {
		name  string
		cell  types.Value
		value string
	}{
		{"integer", types.IntegerValue(1), "one"},
		{"float", types.FloatValue(1), "x"},
		{"double", types.DoubleValue(1), ""},
		{"boolean", types.BooleanValue(true), "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(rowWith("c", tt.cell), Predicate{Column: "c", Op: OpEqual, Literal: tt.value})
			assert.ErrorIs(t, err, types.ErrParse)
		})
	}
}

func TestParseOperator(t *testing.T) {
	for _, s := range []string{"=", "!=", ">", "<", ">=", "<="} {
		op, err := ParseOperator(s)
		require.NoError(t, err)
		assert.Equal(t, Operator(s), op)
	}

	_, err := ParseOperator("LIKE")
	assert.ErrorIs(t, err, types.ErrUnknownOperator)
}
