package val

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NumberKind tags which variant of Number is populated.
type NumberKind uint8

const (
	NumberInt NumberKind = iota
	NumberFloat
	NumberDecimal
)

// Number is SurrealQL's polymorphic numeric value: Int | Float | Decimal.
// Only one of the three fields is meaningful, selected by Kind.
type Number struct {
	Kind  NumberKind
	Int   int64
	Float float64
	Dec   decimal.Decimal
}

func Int(v int64) Number   { return Number{Kind: NumberInt, Int: v} }
func Float(v float64) Number { return Number{Kind: NumberFloat, Float: v} }
func Dec(v decimal.Decimal) Number { return Number{Kind: NumberDecimal, Dec: v} }

// AsFloat coerces the number to float64, the representation used throughout
// scoring (BM25, fusion) and k-NN distance comparisons.
func (n Number) AsFloat() float64 {
	switch n.Kind {
	case NumberInt:
		return float64(n.Int)
	case NumberFloat:
		return n.Float
	case NumberDecimal:
		f, _ := n.Dec.Float64()
		return f
	default:
		return 0
	}
}

// Compare orders numbers with total-compare semantics on the float
// projection, matching the FloatKey rules used across the module (NaN sorts
// last and NaN == NaN for float-kind operands).
func (n Number) Compare(o Number) int {
	return FloatTotalCompare(n.AsFloat(), o.AsFloat())
}

func (n Number) String() string {
	switch n.Kind {
	case NumberInt:
		return fmt.Sprintf("%d", n.Int)
	case NumberFloat:
		return fmt.Sprintf("%g", n.Float)
	case NumberDecimal:
		return n.Dec.String()
	default:
		return "NaN"
	}
}
