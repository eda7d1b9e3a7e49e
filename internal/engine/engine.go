// Package engine runs create, insert, select, aggregate and join against a
// registry of tables, loading tables from disk on first use and writing
// every insert straight back through a storage.Persister.
package engine

import (
	"fmt"
	"strings"

	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

// Executor owns the table registry and coordinates every operation.
//
// Operations are synchronous. The executor adds no locking of its own on top
// of the registry and table locks, so two callers racing on the same table
// (for example two creates of one name) may both pass their checks.
type Executor struct {
	registry  *storage.Registry
	persister storage.Persister
	logger    *types.Logger
}

// New creates an executor with an empty registry.
func New(persister storage.Persister, logger *types.Logger) *Executor {
	if logger == nil {
		logger = types.GlobalLogger
	}
	return &Executor{
		registry:  storage.NewRegistry(),
		persister: persister,
		logger:    logger,
	}
}

// InsertResult describes an applied insert. When Persisted is false the row
// is in memory but the table file could not be rewritten; PersistErr says why.
type InsertResult struct {
	RowID      uint64
	Persisted  bool
	PersistErr error
	Message    string
}

// Create registers a new table and writes its (empty) file.
//
// It fails with KindAlreadyExists when the name is registered or present on
// disk. The disk check is a real load: a table found there stays registered
// even though Create itself fails.
func (e *Executor) Create(name string, columns []types.Column) error {
	if err := storage.CheckTableName(name); err != nil {
		return err
	}
	if e.registry.Exists(name) {
		return types.Errorf(types.KindAlreadyExists, "table already exists: %s", name)
	}

	existing, found, err := e.persister.Load(name)
	if err != nil {
		return fmt.Errorf("check disk for table %s: %w", name, err)
	}
	if found {
		e.registry.Add(existing)
		return types.Errorf(types.KindAlreadyExists, "table already exists on disk: %s", name)
	}

	if err := validateColumns(columns); err != nil {
		return err
	}

	t := storage.NewTable(name, columns...)
	e.registry.Add(t)
	if err := e.persister.Save(t); err != nil {
		return err
	}
	e.logger.Info("created table %s with %d columns", name, len(columns))
	return nil
}

func validateColumns(columns []types.Column) error {
	if len(columns) == 0 {
		return types.Errorf(types.KindSchemaMismatch, "no columns defined")
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if err := storage.CheckColumnName(col.Name); err != nil {
			return err
		}
		key := strings.ToLower(col.Name)
		if seen[key] {
			return types.Errorf(types.KindSchemaMismatch, "duplicate column name: %s", col.Name)
		}
		seen[key] = true
	}
	return nil
}

// Insert binds values to the table's columns by position, stores the row and
// rewrites the table file.
//
// A failed rewrite does not undo the insert: the result reports
// Persisted=false and the error is nil.
func (e *Executor) Insert(name string, values []types.Value) (InsertResult, error) {
	t, err := e.resolve(name)
	if err != nil {
		return InsertResult{}, err
	}

	columns := t.Columns()
	if len(values) != len(columns) {
		return InsertResult{}, types.Errorf(types.KindSchemaMismatch,
			"column count mismatch: table %s has %d columns, got %d values", name, len(columns), len(values))
	}

	bound := make([]types.Value, len(values))
	for i, col := range columns {
		v, err := types.Coerce(values[i], col.Type)
		if err == nil {
			err = storage.CheckCell(v)
		}
		if err != nil {
			return InsertResult{}, fmt.Errorf("column %s: %w", col.Name, err)
		}
		bound[i] = v
	}

	row := types.NewRow(t.NextID())
	for i, col := range columns {
		row.Set(col.Name, bound[i])
	}
	t.Insert(row)

	if err := e.persister.Save(t); err != nil {
		e.logger.Warning("row %d inserted into %s but save failed: %v", row.ID, name, err)
		return InsertResult{
			RowID:      row.ID,
			PersistErr: err,
			Message:    "inserted but save failed: " + err.Error(),
		}, nil
	}
	return InsertResult{RowID: row.ID, Persisted: true, Message: "1 row inserted"}, nil
}

// Select returns every row of the table, or only those matching pred.
func (e *Executor) Select(name string, pred *Predicate) ([]types.Row, error) {
	t, err := e.resolve(name)
	if err != nil {
		return nil, err
	}

	rows := t.SelectAll()
	if pred == nil {
		return rows, nil
	}

	p, err := bindPredicate(t, *pred)
	if err != nil {
		return nil, err
	}

	results := make([]types.Row, 0, len(rows))
	for _, r := range rows {
		ok, err := Evaluate(r, p)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// bindPredicate checks the operator and maps the column onto its schema name.
func bindPredicate(t *storage.Table, p Predicate) (Predicate, error) {
	op, err := ParseOperator(string(p.Op))
	if err != nil {
		return Predicate{}, err
	}
	col, ok := t.Column(p.Column)
	if !ok {
		return Predicate{}, types.Errorf(types.KindMissingColumn, "column %s missing in %s", p.Column, t.Name())
	}
	return Predicate{Column: col.Name, Op: op, Literal: p.Literal}, nil
}

// Aggregate selects the matching rows and reduces them with function.
// column is matched to the schema ignoring case. An absent column has no
// numeric cells, so it yields 0 for SUM and AVG and the sentinels for MIN
// and MAX.
func (e *Executor) Aggregate(name, column, function string, pred *Predicate) (float64, error) {
	t, err := e.resolve(name)
	if err != nil {
		return 0, err
	}
	if col, ok := t.Column(column); ok {
		column = col.Name
	}

	rows, err := e.Select(name, pred)
	if err != nil {
		return 0, err
	}
	return Aggregate(rows, column, function)
}

// Join resolves both tables and joins them on leftCol = rightCol.
func (e *Executor) Join(left, right, leftCol, rightCol string) ([]types.Row, error) {
	t1, err := e.resolve(left)
	if err != nil {
		return nil, err
	}
	t2, err := e.resolve(right)
	if err != nil {
		return nil, err
	}
	return Join(t1, t2, leftCol, rightCol)
}

// Table returns the named table, loading it from disk if necessary.
func (e *Executor) Table(name string) (*storage.Table, error) {
	return e.resolve(name)
}

// Tables returns the names of the tables currently in memory.
func (e *Executor) Tables() []string {
	return e.registry.Names()
}

// resolve looks name up in memory, then on disk. A table loaded from disk
// stays registered for the life of the executor.
func (e *Executor) resolve(name string) (*storage.Table, error) {
	if err := storage.CheckTableName(name); err != nil {
		return nil, err
	}
	if t, ok := e.registry.Get(name); ok {
		return t, nil
	}

	t, found, err := e.persister.Load(name)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}
	if !found {
		return nil, types.Errorf(types.KindNotFound, "table not found: %s", name)
	}
	e.registry.Add(t)
	e.logger.Debug("table %s loaded from disk with %d rows", name, t.Len())
	return t, nil
}
