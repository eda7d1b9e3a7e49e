package types

import (
	"fmt"
	"sort"
	"strings"
)

// DataType is the closed set of column types a table can declare.
type DataType int

const (
	Integer DataType = iota
	Text
	Boolean
	Float
	Double
)

var dataTypeNames = map[DataType]string{
	Integer: "INTEGER",
	Text:    "TEXT",
	Boolean: "BOOLEAN",
	Float:   "FLOAT",
	Double:  "DOUBLE",
}

// String returns the canonical name written to table headers.
func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// IsNumeric reports whether values of this type take part in SUM/AVG/MIN/MAX.
func (t DataType) IsNumeric() bool {
	return t == Integer || t == Float || t == Double
}

// ParseDataType maps a user-supplied type token to a DataType. The match is
// case-insensitive and by prefix, so INT, INTEGER and INT64 all map to Integer.
func ParseDataType(token string) (DataType, error) {
	upper := strings.ToUpper(strings.TrimSpace(token))
	switch {
	case strings.HasPrefix(upper, "INT"):
		return Integer, nil
	case strings.HasPrefix(upper, "TEXT"):
		return Text, nil
	case strings.HasPrefix(upper, "FLOAT"):
		return Float, nil
	case strings.HasPrefix(upper, "DOUBLE"):
		return Double, nil
	case strings.HasPrefix(upper, "BOOL"):
		return Boolean, nil
	}
	return 0, Errorf(KindUnknownType, "unknown type %q", token)
}

// LookupDataType resolves a canonical header name. STRING is accepted for
// files written before TEXT was the canonical name.
func LookupDataType(name string) (DataType, error) {
	switch name {
	case "INTEGER":
		return Integer, nil
	case "TEXT", "STRING":
		return Text, nil
	case "BOOLEAN":
		return Boolean, nil
	case "FLOAT":
		return Float, nil
	case "DOUBLE":
		return Double, nil
	}
	return 0, Errorf(KindUnknownType, "unknown type %q", name)
}

// Column is one field of a table schema.
type Column struct {
	Name       string
	Type       DataType
	PrimaryKey bool
}

func (c Column) String() string {
	return fmt.Sprintf("%s(%s)", c.Name, c.Type)
}

// Row is a single tuple. Values is keyed by column name.
type Row struct {
	ID     uint64
	Values map[string]Value
}

// NewRow returns an empty row with the given id.
func NewRow(id uint64) Row {
	return Row{ID: id, Values: make(map[string]Value)}
}

// Get returns the value stored under column and whether the column is present.
func (r Row) Get(column string) (Value, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Set stores v under column.
func (r Row) Set(column string, v Value) {
	r.Values[column] = v
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := Row{ID: r.ID, Values: make(map[string]Value, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

func (r Row) String() string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Row#%d {", r.ID)
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", k, r.Values[k])
	}
	b.WriteString("}")
	return b.String()
}
