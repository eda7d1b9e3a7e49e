package storage

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/zakazai/tinysql/internal/types"
)

const (
	headerSeparator = "|"
	typeSeparator   = ":"
	fieldSeparator  = ","
)

// DecodeMode selects how Decode treats rows that do not match the schema.
type DecodeMode int

const (
	// DecodeLenient turns missing trailing fields and unparseable cells into
	// Null and ignores surplus fields.
	DecodeLenient DecodeMode = iota
	// DecodeStrict rejects the whole file on the first such row.
	DecodeStrict
)

func (m DecodeMode) String() string {
	if m == DecodeStrict {
		return "strict"
	}
	return "lenient"
}

// Codec reads and writes the flat text form of a table:
//
//	id:INTEGER|name:TEXT
//	1,1,Alice
//	2,2,NULL
//
// The header lists name:TYPE pairs in schema order. Each following line is
// the row id and then one field per column. Nothing is escaped: callers keep
// separators out of column names and text cells with CheckColumnName and
// CheckCell.
type Codec struct {
	Mode DecodeMode
}

// CheckColumnName rejects column names the header cannot carry.
func CheckColumnName(name string) error {
	if name == "" {
		return types.Errorf(types.KindSchemaMismatch, "column name must not be empty")
	}
	if strings.ContainsAny(name, headerSeparator+typeSeparator+fieldSeparator+"\r\n") {
		return types.Errorf(types.KindSchemaMismatch, "column name %q contains a reserved character", name)
	}
	return nil
}

// CheckCell rejects text the row format cannot read back: separators, line
// breaks and the NULL token itself.
func CheckCell(v types.Value) error {
	if v.Kind() != types.KindText {
		return nil
	}
	text := v.Text()
	if text == types.NullLiteral {
		return types.Errorf(types.KindSchemaMismatch, "text value %q is reserved for null", text)
	}
	if strings.ContainsAny(text, fieldSeparator+"\r\n") {
		return types.Errorf(types.KindSchemaMismatch, "text value %q contains a comma or line break", text)
	}
	return nil
}

// Encode writes the header and every row of t, in id order.
func (c Codec) Encode(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	columns := t.Columns()

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name + typeSeparator + col.Type.String()
	}
	if _, err := bw.WriteString(strings.Join(header, headerSeparator) + "\n"); err != nil {
		return err
	}

	fields := make([]string, len(columns)+1)
	for _, row := range t.SelectAll() {
		fields[0] = strconv.FormatUint(row.ID, 10)
		for i, col := range columns {
			fields[i+1] = row.Values[col.Name].String()
		}
		if _, err := bw.WriteString(strings.Join(fields, fieldSeparator) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode rebuilds a table named name from r. A column is marked as the
// primary key when its name is "id", ignoring case.
func (c Codec) Decode(r io.Reader, name string) (*Table, error) {
	br := bufio.NewReader(r)

	header, err := readLine(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, types.Errorf(types.KindParseError, "table %s: missing header", name)
		}
		return nil, types.Wrapf(types.KindIOFailure, err, "table %s: read header", name)
	}
	columns, err := decodeHeader(header)
	if err != nil {
		return nil, types.Wrapf(types.KindOf(err), err, "table %s: header", name)
	}

	t := NewTable(name, columns...)
	for lineNo := 2; ; lineNo++ {
		line, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, types.Wrapf(types.KindIOFailure, err, "table %s: read line %d", name, lineNo)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := c.decodeRow(line, columns)
		if err != nil {
			return nil, types.Wrapf(types.KindParseError, err, "table %s: line %d", name, lineNo)
		}
		t.Insert(row)
	}
	return t, nil
}

func (c Codec) decodeRow(line string, columns []types.Column) (types.Row, error) {
	fields := strings.Split(line, fieldSeparator)
	id, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return types.Row{}, types.Wrapf(types.KindParseError, err, "invalid row id %q", fields[0])
	}

	if c.Mode == DecodeStrict && len(fields) != len(columns)+1 {
		return types.Row{}, types.Errorf(types.KindParseError, "expected %d fields, got %d", len(columns)+1, len(fields))
	}

	row := types.NewRow(id)
	for i, col := range columns {
		if i+1 >= len(fields) {
			break
		}
		text := fields[i+1]
		if text == types.NullLiteral {
			row.Set(col.Name, types.Null())
			continue
		}
		v, err := types.ParseValue(text, col.Type)
		if err != nil {
			if c.Mode == DecodeStrict {
				return types.Row{}, types.Wrapf(types.KindParseError, err, "column %s", col.Name)
			}
			v = types.Null()
		}
		row.Set(col.Name, v)
	}
	return row, nil
}

func decodeHeader(line string) ([]types.Column, error) {
	var columns []types.Column
	for _, def := range strings.Split(line, headerSeparator) {
		if strings.TrimSpace(def) == "" {
			continue
		}
		colName, typeName, ok := strings.Cut(def, typeSeparator)
		if !ok || colName == "" {
			return nil, types.Errorf(types.KindParseError, "malformed column definition %q", def)
		}
		dt, err := types.LookupDataType(strings.TrimSpace(typeName))
		if err != nil {
			return nil, err
		}
		columns = append(columns, types.Column{
			Name:       colName,
			Type:       dt,
			PrimaryKey: strings.EqualFold(colName, "id"),
		})
	}
	if len(columns) == 0 {
		return nil, types.Errorf(types.KindParseError, "no columns in header")
	}
	return columns, nil
}

// readLine returns the next line without its terminator. A final line with
// no trailing newline is returned normally; io.EOF is only reported once
// nothing is left.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
