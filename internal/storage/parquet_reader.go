package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/zakazai/tinysql/internal/types"
)

// ParquetReader reads tables back out of a mirror directory.
type ParquetReader struct {
	dataDir string
}

// NewParquetReader creates a new ParquetReader
func NewParquetReader(dataDir string) *ParquetReader {
	return &ParquetReader{
		dataDir: dataDir,
	}
}

// ReadTable reads the mirrored rows of tableName, typing each value by the
// matching column in columns. A missing mirror yields no rows.
func (r *ParquetReader) ReadTable(tableName string, columns []types.Column) ([]types.Row, error) {
	filePath := filepath.Join(r.dataDir, fmt.Sprintf("%s.parquet", tableName))
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return []types.Row{}, nil
	}

	fr, err := local.NewLocalFileReader(filePath)
	if err != nil {
		return nil, types.Wrapf(types.KindIOFailure, err, "open parquet file %s", filePath)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ParquetRow), parallelism)
	if err != nil {
		return nil, types.Wrapf(types.KindIOFailure, err, "create parquet reader for %s", filePath)
	}
	defer pr.ReadStop()

	numRows := int(pr.GetNumRows())
	if numRows == 0 {
		return []types.Row{}, nil
	}
	parquetRows := make([]ParquetRow, numRows)
	if err := pr.Read(&parquetRows); err != nil {
		return nil, types.Wrapf(types.KindIOFailure, err, "read parquet rows of %s", tableName)
	}

	rows := make([]types.Row, 0, numRows)
	for _, prow := range parquetRows {
		if prow.TableName != tableName {
			continue
		}
		row, err := decodeMirrorRow(prow, columns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeMirrorRow(prow ParquetRow, columns []types.Column) (types.Row, error) {
	dec := json.NewDecoder(strings.NewReader(prow.DataJSON))
	dec.UseNumber()
	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return types.Row{}, types.Wrapf(types.KindParseError, err, "row %d", prow.RowID)
	}

	row := types.NewRow(uint64(prow.RowID))
	for _, col := range columns {
		var v types.Value
		switch raw := data[col.Name].(type) {
		case nil:
			v = types.Null()
		case bool:
			v = types.BooleanValue(raw)
		case json.Number:
			parsed, err := types.ParseValue(raw.String(), col.Type)
			if err != nil {
				return types.Row{}, err
			}
			v = parsed
		case string:
			parsed, err := types.ParseValue(raw, col.Type)
			if err != nil {
				return types.Row{}, err
			}
			v = parsed
		default:
			return types.Row{}, types.Errorf(types.KindParseError, "row %d: unexpected value for %s", prow.RowID, col.Name)
		}
		row.Set(col.Name, v)
	}
	return row, nil
}
