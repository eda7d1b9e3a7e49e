package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/zakazai/tinysql/internal/types"
)

// ParquetRow is the on-disk shape of one mirrored row. Column values are
// carried as a JSON object so that every table shares one parquet schema.
type ParquetRow struct {
	TableName string `parquet:"name=table_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	RowID     int64  `parquet:"name=row_id, type=INT64"`
	DataJSON  string `parquet:"name=data_json, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// parallelism is the goroutine count handed to the parquet writer and reader.
const parallelism = 4

// ParquetMirror writes a columnar copy of each table for analytical readers.
// It is never read back by the executor.
type ParquetMirror struct {
	baseDir string
	logger  *types.Logger
}

// NewParquetMirror creates the mirror directory if needed.
func NewParquetMirror(dir string, logger *types.Logger) (*ParquetMirror, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, types.Wrapf(types.KindIOFailure, err, "create mirror directory %s", dir)
	}
	if logger == nil {
		logger = types.GlobalLogger
	}
	return &ParquetMirror{baseDir: dir, logger: logger}, nil
}

// Path returns the parquet file for table name.
func (m *ParquetMirror) Path(name string) string {
	return filepath.Join(m.baseDir, fmt.Sprintf("%s.parquet", name))
}

// Write replaces the mirror of t with its current rows. An empty table
// removes the mirror file.
func (m *ParquetMirror) Write(t *Table) error {
	rows := t.SelectAll()
	path := m.Path(t.Name())
	if len(rows) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return types.Wrapf(types.KindIOFailure, err, "remove mirror of %s", t.Name())
		}
		return nil
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return types.Wrapf(types.KindIOFailure, err, "open mirror of %s", t.Name())
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(ParquetRow), parallelism)
	if err != nil {
		return types.Wrapf(types.KindIOFailure, err, "create parquet writer for %s", t.Name())
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	columns := t.Columns()
	for _, row := range rows {
		data := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			data[col.Name] = row.Values[col.Name].Native()
		}
		jsonData, err := json.Marshal(data)
		if err != nil {
			return types.Wrapf(types.KindIOFailure, err, "encode row %d of %s", row.ID, t.Name())
		}
		if err := pw.Write(&ParquetRow{
			TableName: t.Name(),
			RowID:     int64(row.ID),
			DataJSON:  string(jsonData),
		}); err != nil {
			return types.Wrapf(types.KindIOFailure, err, "write row %d of %s", row.ID, t.Name())
		}
	}

	if err := pw.WriteStop(); err != nil {
		return types.Wrapf(types.KindIOFailure, err, "flush mirror of %s", t.Name())
	}
	m.logger.Debug("mirrored table %s to %s (%d rows)", t.Name(), path, len(rows))
	return nil
}
