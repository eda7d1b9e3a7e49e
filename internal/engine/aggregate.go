package engine

import (
	"math"
	"strings"

	"github.com/zakazai/tinysql/internal/types"
)

// AggregateFunc names a scalar reduction.
type AggregateFunc string

const (
	Count AggregateFunc = "COUNT"
	Sum   AggregateFunc = "SUM"
	Avg   AggregateFunc = "AVG"
	Min   AggregateFunc = "MIN"
	Max   AggregateFunc = "MAX"
)

// ParseAggregateFunc validates a function name, ignoring case.
func ParseAggregateFunc(name string) (AggregateFunc, error) {
	switch fn := AggregateFunc(strings.ToUpper(strings.TrimSpace(name))); fn {
	case Count, Sum, Avg, Min, Max:
		return fn, nil
	}
	return "", types.Errorf(types.KindUnknownFunction, "unknown aggregation function %q", name)
}

// Aggregate reduces rows to one number over column.
//
// An empty row set yields 0 for every function, before the name is even
// looked at. Only Integer, Float and Double cells count towards SUM, AVG,
// MIN and MAX. AVG divides by len(rows), including rows whose cell was
// skipped. MIN and MAX return their starting value (+MaxFloat64 and
// -MaxFloat64) when no cell is numeric.
func Aggregate(rows []types.Row, column, function string) (float64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	fn, err := ParseAggregateFunc(function)
	if err != nil {
		return 0, err
	}

	switch fn {
	case Count:
		return float64(len(rows)), nil
	case Sum:
		return sum(rows, column), nil
	case Avg:
		return sum(rows, column) / float64(len(rows)), nil
	case Max:
		hi := -math.MaxFloat64
		for _, r := range rows {
			if v, ok := r.Values[column].Number(); ok && v > hi {
				hi = v
			}
		}
		return hi, nil
	default:
		lo := math.MaxFloat64
		for _, r := range rows {
			if v, ok := r.Values[column].Number(); ok && v < lo {
				lo = v
			}
		}
		return lo, nil
	}
}

func sum(rows []types.Row, column string) float64 {
	var total float64
	for _, r := range rows {
		if v, ok := r.Values[column].Number(); ok {
			total += v
		}
	}
	return total
}
