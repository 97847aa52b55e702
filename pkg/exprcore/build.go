package exprcore

import (
	"github.com/mcboltdev/exprcore/internal/ir"
	"github.com/mcboltdev/exprcore/internal/unroll"
)

// Expr is any node of an expression tree, the type every builder
// constructor below returns and Session.Resolve accepts as its root.
type Expr = unroll.Expr

// DataKind distinguishes the three data-ref target kinds (spec §3).
type DataKind = ir.DataKind

const (
	Storage = ir.DataStorage
	Entity  = ir.DataEntity
	Block   = ir.DataBlock
)

// TypeTag is the typed-tag system carried on data sources (spec §3).
type TypeTag = ir.TypeTag

const (
	AnyType    = ir.TypeAny
	ByteType   = ir.TypeByte
	ShortType  = ir.TypeShort
	IntType    = ir.TypeInt
	LongType   = ir.TypeLong
	FloatType  = ir.TypeFloat
	DoubleType = ir.TypeDouble
	StringType = ir.TypeString
	ListType   = ir.TypeList
	CompoundType = ir.TypeCompound
)

// Score builds a leaf expression addressing a scoreboard entry by
// (holder, objective).
func Score(holder, objective string) Expr { return unroll.Score(holder, objective) }

// Data builds a leaf expression addressing a data container by
// (target-kind, target). Chain Child/Index/All/Filtered to build a path.
func Data(kind DataKind, target string) *unroll.DataExpr { return unroll.Data(kind, target) }

// DataPath builds a data-ref leaf from a parsed path string (e.g.
// "a.b[0]"), the typed replacement for dynamic attribute-access path
// building (spec §9).
func DataPath(kind DataKind, target, path string) (*unroll.DataExpr, error) {
	p, err := ir.ParsePath(path)
	if err != nil {
		return nil, err
	}
	ref := ir.NewData(kind, target)
	ref.Path = p
	return unroll.DataFrom(ref), nil
}

// Int and Float build literal leaves.
func Int(v int64) Expr     { return unroll.Int(v) }
func Float(v float64) Expr { return unroll.Float(v) }

// Arithmetic builders. a and b may be an Expr, an int, an int64, or a
// float64 — bare Go numbers are coerced to literals automatically.
func Add(a, b any) Expr { return unroll.Add(a, b) }
func Sub(a, b any) Expr { return unroll.Sub(a, b) }
func Mul(a, b any) Expr { return unroll.Mul(a, b) }
func Div(a, b any) Expr { return unroll.Div(a, b) }
func Mod(a, b any) Expr { return unroll.Mod(a, b) }

// Min and Max fold a variadic argument list into a right-nested chain of
// pairwise Min/Max nodes (Min(a, b, c) is Min(a, Min(b, c))); a
// purely-literal tail collapses host-side (spec §4.1).
func Min(args ...any) Expr { return unroll.Min(args...) }
func Max(args ...any) Expr { return unroll.Max(args...) }

// Abs desugars to If(LessThan(x, 0), Set(x, x * -1)) at unroll time.
func Abs(v any) Expr { return unroll.Abs(v) }

// Set assigns value to dst, which must build down to a score or data leaf.
func Set(dst, value any) Expr { return unroll.Set(dst, value) }

// Comparison builders, legal only as an If guard. There is no NotEqual:
// Minecraft's `execute if score` grammar has no native `!=` form.
func LessThan(a, b any) *unroll.CompareExpr     { return unroll.LessThan(a, b) }
func GreaterThan(a, b any) *unroll.CompareExpr  { return unroll.GreaterThan(a, b) }
func LessEqual(a, b any) *unroll.CompareExpr    { return unroll.LessEqual(a, b) }
func GreaterEqual(a, b any) *unroll.CompareExpr { return unroll.GreaterEqual(a, b) }
func Equal(a, b any) *unroll.CompareExpr        { return unroll.Equal(a, b) }

// If executes body only when cond holds.
func If(cond *unroll.CompareExpr, body Expr) Expr {
	set, ok := body.(*unroll.SetExpr)
	if !ok {
		panic("exprcore: If body must be a Set expression")
	}
	return unroll.If(cond, set)
}

// Insert, Append and Prepend build list-mutation expressions over a data
// leaf (spec §Supplemented features: Insert/Append/Prepend family).
func Insert(dst *unroll.DataExpr, index int, value any) Expr { return unroll.Insert(dst, index, value) }
func Append(dst *unroll.DataExpr, value any) Expr            { return unroll.Append(dst, value) }
func Prepend(dst *unroll.DataExpr, value any) Expr           { return unroll.Prepend(dst, value) }

// Merge merges a compound value scoped to dst's path; MergeRoot replaces
// the whole target instead (spec §Supplemented features: MergeRoot vs Merge).
func Merge(dst *unroll.DataExpr, value any) Expr     { return unroll.Merge(dst, value) }
func MergeRoot(dst *unroll.DataExpr, value any) Expr { return unroll.MergeRoot(dst, value) }

// Remove deletes a data location outright.
func Remove(target *unroll.DataExpr) Expr { return unroll.Remove(target) }
