package planner

import (
	"fmt"
	"sort"

	"github.com/zakazai/tinysql/internal/engine"
	"github.com/zakazai/tinysql/internal/parser"
	"github.com/zakazai/tinysql/internal/types"
)

// Plan is a statement with its arguments resolved into engine terms.
type Plan struct {
	Type  string
	Table string

	// CREATE
	Schema []types.Column

	// INSERT
	Values []types.Value

	// SELECT; Columns is nil for SELECT *.
	Columns   []string
	Predicate *engine.Predicate

	// Aggregate SELECT
	Function        string
	AggregateColumn string

	// JOIN; Table holds the left table.
	RightTable  string
	LeftColumn  string
	RightColumn string
}

// Output is what a statement produces. Rows and Columns are set for
// row-returning statements, Aggregate for aggregate selects.
type Output struct {
	Message   string
	Columns   []string
	Rows      []types.Row
	Aggregate *float64
}

// TableLister reports the tables present in persistent storage.
type TableLister interface {
	List() ([]string, error)
}

// Planner turns statements into plans and runs them on an executor.
type Planner struct {
	exec    *engine.Executor
	catalog TableLister
}

// NewPlanner creates a new planner. catalog may be nil, in which case TABLES
// lists only the tables already in memory.
func NewPlanner(exec *engine.Executor, catalog TableLister) *Planner {
	return &Planner{exec: exec, catalog: catalog}
}

// CreatePlan converts a Statement into an execution Plan. Type names and
// operators are checked here; everything that depends on a table's schema is
// left to the executor.
func CreatePlan(stmt parser.Statement) (*Plan, error) {
	plan := &Plan{Type: stmt.StatementType()}

	switch s := stmt.(type) {
	case *parser.CreateStatement:
		plan.Table = s.Table
		plan.Schema = make([]types.Column, len(s.Columns))
		for i, col := range s.Columns {
			dt, err := types.ParseDataType(col.Type)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			plan.Schema[i] = types.Column{Name: col.Name, Type: dt}
		}
	case *parser.InsertStatement:
		plan.Table = s.Table
		plan.Values = s.Values
	case *parser.SelectStatement:
		plan.Table = s.Table
		if s.Aggregate != nil {
			plan.Function = s.Aggregate.Func
			plan.AggregateColumn = s.Aggregate.Column
		} else if !(len(s.Columns) == 1 && s.Columns[0] == "*") {
			plan.Columns = s.Columns
		}
		if s.Where != nil {
			op, err := engine.ParseOperator(s.Where.Operator)
			if err != nil {
				return nil, err
			}
			plan.Predicate = &engine.Predicate{Column: s.Where.Column, Op: op, Literal: s.Where.Value}
		}
	case *parser.JoinStatement:
		plan.Table = s.Left
		plan.RightTable = s.Right
		plan.LeftColumn = s.LeftColumn
		plan.RightColumn = s.RightColumn
	case *parser.TablesStatement:
	default:
		return nil, types.Errorf(types.KindParseError, "invalid statement type %T", stmt)
	}

	return plan, nil
}

// ExecuteSQL parses and runs one statement.
func (p *Planner) ExecuteSQL(sql string) (*Output, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return p.Execute(stmt)
}

// Execute plans and runs stmt.
func (p *Planner) Execute(stmt parser.Statement) (*Output, error) {
	plan, err := CreatePlan(stmt)
	if err != nil {
		return nil, err
	}
	return p.run(plan)
}

func (p *Planner) run(plan *Plan) (*Output, error) {
	switch plan.Type {
	case "CREATE":
		if err := p.exec.Create(plan.Table, plan.Schema); err != nil {
			return nil, err
		}
		return &Output{Message: fmt.Sprintf("Table %s created", plan.Table)}, nil

	case "INSERT":
		res, err := p.exec.Insert(plan.Table, plan.Values)
		if err != nil {
			return nil, err
		}
		return &Output{Message: res.Message}, nil

	case "SELECT":
		if plan.Function != "" {
			return p.aggregate(plan)
		}
		return p.selectRows(plan)

	case "JOIN":
		rows, err := p.exec.Join(plan.Table, plan.RightTable, plan.LeftColumn, plan.RightColumn)
		if err != nil {
			return nil, err
		}
		left, err := p.exec.Table(plan.Table)
		if err != nil {
			return nil, err
		}
		right, err := p.exec.Table(plan.RightTable)
		if err != nil {
			return nil, err
		}
		return &Output{
			Message: rowCount(len(rows)),
			Columns: engine.JoinColumns(left, right),
			Rows:    rows,
		}, nil

	case "TABLES":
		names, err := p.tables()
		if err != nil {
			return nil, err
		}
		out := &Output{Message: fmt.Sprintf("%d table(s)", len(names)), Columns: []string{"table"}}
		for i, name := range names {
			row := types.NewRow(uint64(i + 1))
			row.Set("table", types.TextValue(name))
			out.Rows = append(out.Rows, row)
		}
		return out, nil
	}
	return nil, types.Errorf(types.KindParseError, "unsupported statement type: %s", plan.Type)
}

func (p *Planner) selectRows(plan *Plan) (*Output, error) {
	t, err := p.exec.Table(plan.Table)
	if err != nil {
		return nil, err
	}

	var columns []string
	if plan.Columns == nil {
		for _, col := range t.Columns() {
			columns = append(columns, col.Name)
		}
	} else {
		for _, name := range plan.Columns {
			col, ok := t.Column(name)
			if !ok {
				return nil, types.Errorf(types.KindMissingColumn, "column %s missing in %s", name, plan.Table)
			}
			columns = append(columns, col.Name)
		}
	}

	rows, err := p.exec.Select(plan.Table, plan.Predicate)
	if err != nil {
		return nil, err
	}
	if plan.Columns != nil {
		for i, r := range rows {
			projected := types.NewRow(r.ID)
			for _, name := range columns {
				projected.Set(name, r.Values[name])
			}
			rows[i] = projected
		}
	}
	return &Output{Message: rowCount(len(rows)), Columns: columns, Rows: rows}, nil
}

func (p *Planner) aggregate(plan *Plan) (*Output, error) {
	result, err := p.exec.Aggregate(plan.Table, plan.AggregateColumn, plan.Function, plan.Predicate)
	if err != nil {
		return nil, err
	}
	return &Output{
		Message:   fmt.Sprintf("%s(%s) = %v", plan.Function, plan.AggregateColumn, result),
		Aggregate: &result,
	}, nil
}

// tables merges the in-memory tables with those in the catalog.
func (p *Planner) tables() ([]string, error) {
	seen := make(map[string]bool)
	for _, name := range p.exec.Tables() {
		seen[name] = true
	}
	if p.catalog != nil {
		onDisk, err := p.catalog.List()
		if err != nil {
			return nil, err
		}
		for _, name := range onDisk {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func rowCount(n int) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}
