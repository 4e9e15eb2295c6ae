package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindUndefined Kind = iota
	KindNumber
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// BoolValue only arises from comparisons; the language has no boolean literals.
type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

// UndefinedValue is bound to missing arguments and returned by calls that
// finish without phiriye dao.
type UndefinedValue struct{}

func (UndefinedValue) Kind() Kind { return KindUndefined }

//-----------------------------------------------------------------------------
// Conversions
//-----------------------------------------------------------------------------

// FormatValue renders a value the way bolo dada prints it.
func FormatValue(val Value) string {
	switch v := val.(type) {
	case NumberValue:
		return FormatNumber(v.Val)
	case StringValue:
		return v.Val
	case BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case UndefinedValue, nil:
		return "undefined"
	default:
		return fmt.Sprintf("[%s]", v.Kind())
	}
}

// FormatNumber prints integral values without a fraction and everything else
// in the shortest decimal form that round-trips.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}

// ToNumber converts a value for arithmetic. Strings are trimmed and parsed
// as decimals (the empty string is 0); booleans count as 1 and 0. Spelled
// out infinities and NaN are not numbers.
func ToNumber(val Value) (float64, bool) {
	switch v := val.(type) {
	case NumberValue:
		return v.Val, true
	case BoolValue:
		if v.Val {
			return 1, true
		}
		return 0, true
	case StringValue:
		s := strings.TrimSpace(v.Val)
		if s == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || strings.ContainsAny(s, "_xXpPiInN") {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Truthy reports whether a value selects a branch or keeps a loop running.
func Truthy(val Value) bool {
	switch v := val.(type) {
	case NumberValue:
		return v.Val != 0 && !math.IsNaN(v.Val)
	case StringValue:
		return v.Val != ""
	case BoolValue:
		return v.Val
	default:
		return false
	}
}

// LooseEqual implements == for the dynamic value model: values of the same
// kind compare directly, numbers and strings compare numerically, booleans
// count as 1 and 0, and undefined only equals undefined.
func LooseEqual(a, b Value) bool {
	if a == nil {
		a = UndefinedValue{}
	}
	if b == nil {
		b = UndefinedValue{}
	}
	if a.Kind() == KindUndefined || b.Kind() == KindUndefined {
		return a.Kind() == b.Kind()
	}
	if a.Kind() == b.Kind() {
		switch av := a.(type) {
		case NumberValue:
			return av.Val == b.(NumberValue).Val
		case StringValue:
			return av.Val == b.(StringValue).Val
		case BoolValue:
			return av.Val == b.(BoolValue).Val
		}
		return false
	}
	an, aok := ToNumber(a)
	bn, bok := ToNumber(b)
	return aok && bok && an == bn
}
