package types

import (
	"math"
	"strconv"
)

// NullLiteral is the text form of a Null cell.
const NullLiteral = "NULL"

// Kind is the runtime variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindText
	KindBoolean
	KindFloat
	KindDouble
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindText:
		return "TEXT"
	case KindBoolean:
		return "BOOLEAN"
	case KindFloat:
		return "FLOAT"
	case KindDouble:
		return "DOUBLE"
	}
	return NullLiteral
}

// Value is a typed cell. The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// Null returns the Null value.
func Null() Value { return Value{} }

// IntegerValue returns an Integer value.
func IntegerValue(v int64) Value { return Value{kind: KindInteger, i: v} }

// TextValue returns a Text value.
func TextValue(v string) Value { return Value{kind: KindText, s: v} }

// BooleanValue returns a Boolean value.
func BooleanValue(v bool) Value { return Value{kind: KindBoolean, b: v} }

// FloatValue returns a single precision Float value.
func FloatValue(v float32) Value { return Value{kind: KindFloat, f: float64(v)} }

// DoubleValue returns a Double value.
func DoubleValue(v float64) Value { return Value{kind: KindDouble, f: v} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Int() int64 { return v.i }
func (v Value) Text() string { return v.s }
func (v Value) Bool() bool { return v.b }
func (v Value) Float() float32 { return float32(v.f) }
func (v Value) Double() float64 { return v.f }

// IsNumeric reports whether the value is an Integer, Float or Double.
func (v Value) IsNumeric() bool {
	return v.kind == KindInteger || v.kind == KindFloat || v.kind == KindDouble
}

// Number returns the value widened to float64. ok is false for non-numeric values.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat, KindDouble:
		return v.f, true
	}
	return 0, false
}

// String returns the canonical text form used by the codec and the join.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindText:
		return v.s
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return NullLiteral
}

// Native returns the value as a plain Go value (nil for Null).
func (v Value) Native() interface{} {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindText:
		return v.s
	case KindBoolean:
		return v.b
	case KindFloat:
		return float32(v.f)
	case KindDouble:
		return v.f
	}
	return nil
}

// ParseValue parses the canonical text of a value of type t. NULL is not
// special here; callers that store NULL must check for it first.
func ParseValue(text string, t DataType) (Value, error) {
	switch t {
	case Integer:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Null(), Wrapf(KindParseError, err, "invalid integer %q", text)
		}
		return IntegerValue(n), nil
	case Text:
		return TextValue(text), nil
	case Boolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return Null(), Wrapf(KindParseError, err, "invalid boolean %q", text)
		}
		return BooleanValue(b), nil
	case Float:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Null(), Wrapf(KindParseError, err, "invalid float %q", text)
		}
		if !isFinite(f) {
			return Null(), Errorf(KindParseError, "invalid float %q: not a finite number", text)
		}
		return FloatValue(float32(f)), nil
	case Double:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Null(), Wrapf(KindParseError, err, "invalid double %q", text)
		}
		if !isFinite(f) {
			return Null(), Errorf(KindParseError, "invalid double %q: not a finite number", text)
		}
		return DoubleValue(f), nil
	}
	return Null(), Errorf(KindUnknownType, "unknown type %v", t)
}

// Coerce converts v so that it can be stored in a column of type t.
// Null passes through. Integers widen to Float and Double, Float and Double
// convert to each other, and Text is parsed as t. NaN and infinities are
// never stored.
func Coerce(v Value, t DataType) (Value, error) {
	if v.IsNull() {
		return v, nil
	}
	if (v.kind == KindFloat || v.kind == KindDouble) && !isFinite(v.f) {
		return Null(), Errorf(KindSchemaMismatch, "cannot store %s value %s", v.kind, v)
	}
	switch {
	case v.kind == kindOf(t):
		return v, nil
	case v.kind == KindText:
		return ParseValue(v.s, t)
	case v.kind == KindInteger && t == Float:
		return FloatValue(float32(v.i)), nil
	case v.kind == KindInteger && t == Double:
		return DoubleValue(float64(v.i)), nil
	case v.kind == KindFloat && t == Double:
		return DoubleValue(v.f), nil
	case v.kind == KindDouble && t == Float:
		if math.Abs(v.f) > math.MaxFloat32 {
			return Null(), Errorf(KindSchemaMismatch, "double value %s overflows FLOAT", v)
		}
		return FloatValue(float32(v.f)), nil
	case t == Text:
		return TextValue(v.String()), nil
	}
	return Null(), Errorf(KindSchemaMismatch, "cannot store %s value %s as %s", v.kind, v, t)
}

func kindOf(t DataType) Kind {
	switch t {
	case Integer:
		return KindInteger
	case Text:
		return KindText
	case Boolean:
		return KindBoolean
	case Float:
		return KindFloat
	case Double:
		return KindDouble
	}
	return KindNull
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
