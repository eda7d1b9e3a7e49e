package engine

import (
	"math"
	"strconv"

	"github.com/zakazai/tinysql/internal/types"
)

// floatEpsilon is the tolerance for = and != on Float and Double cells.
const floatEpsilon = 1e-6

// Operator is a comparison operator usable in a predicate.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
)

// ParseOperator validates an operator token.
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(s); op {
	case OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return op, nil
	}
	return "", types.Errorf(types.KindUnknownOperator, "unknown operator %q", s)
}

// Predicate is a single column-operator-literal filter. The literal is kept
// as text and parsed against the type of the cell it is compared with.
type Predicate struct {
	Column  string
	Op      Operator
	Literal string
}

// Evaluate applies p to row. A missing column or a Null cell never matches.
// An error means the literal could not be parsed as the cell's type or the
// operator is unknown.
func Evaluate(row types.Row, p Predicate) (bool, error) {
	cell, ok := row.Get(p.Column)
	if !ok || cell.IsNull() {
		return false, nil
	}

	switch cell.Kind() {
	case types.KindInteger:
		target, err := strconv.ParseInt(p.Literal, 10, 64)
		if err != nil {
			return false, literalError(p, cell, err)
		}
		return compareInt(cell.Int(), target, p.Op)
	case types.KindFloat:
		target, err := strconv.ParseFloat(p.Literal, 32)
		if err != nil {
			return false, literalError(p, cell, err)
		}
		return compareFloat(float64(cell.Float()), float64(float32(target)), p.Op)
	case types.KindDouble:
		target, err := strconv.ParseFloat(p.Literal, 64)
		if err != nil {
			return false, literalError(p, cell, err)
		}
		return compareFloat(cell.Double(), target, p.Op)
	case types.KindBoolean:
		target, err := strconv.ParseBool(p.Literal)
		if err != nil {
			return false, literalError(p, cell, err)
		}
		return compareEquality(cell.Bool() == target, p.Op)
	default:
		return compareEquality(cell.Text() == p.Literal, p.Op)
	}
}

func literalError(p Predicate, cell types.Value, err error) error {
	return types.Wrapf(types.KindParseError, err, "cannot compare %s column %s with %q", cell.Kind(), p.Column, p.Literal)
}

func compareInt(cell, target int64, op Operator) (bool, error) {
	switch op {
	case OpEqual:
		return cell == target, nil
	case OpNotEqual:
		return cell != target, nil
	case OpGreater:
		return cell > target, nil
	case OpLess:
		return cell < target, nil
	case OpGreaterEqual:
		return cell >= target, nil
	case OpLessEqual:
		return cell <= target, nil
	}
	return false, types.Errorf(types.KindUnknownOperator, "unknown operator %q", op)
}

func compareFloat(cell, target float64, op Operator) (bool, error) {
	switch op {
	case OpEqual:
		return math.Abs(cell-target) < floatEpsilon, nil
	case OpNotEqual:
		return math.Abs(cell-target) > floatEpsilon, nil
	case OpGreater:
		return cell > target, nil
	case OpLess:
		return cell < target, nil
	case OpGreaterEqual:
		return cell >= target, nil
	case OpLessEqual:
		return cell <= target, nil
	}
	return false, types.Errorf(types.KindUnknownOperator, "unknown operator %q", op)
}

// compareEquality handles Text and Boolean cells, which only support = and !=.
func compareEquality(equal bool, op Operator) (bool, error) {
	switch op {
	case OpEqual:
		return equal, nil
	case OpNotEqual:
		return !equal, nil
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return false, nil
	}
	return false, types.Errorf(types.KindUnknownOperator, "unknown operator %q", op)
}
