// Package unroll lowers an expression tree built from Expr nodes into the
// linear, three-address ir.Op sequence the optimizer consumes (spec §4.1
// "Unroller"). Expr mirrors the teacher compiler's model.Expr marker-method
// interface, but its leaves and internal nodes are the arithmetic-language
// vocabulary from spec §3/§4.1 rather than Python syntax.
package unroll

import (
	"github.com/mcboltdev/exprcore/internal/ir"
)

// Expr is any node of an expression tree. Expression trees are immutable
// after construction (spec §3 Lifecycles): every constructor below returns
// a fresh node rather than mutating one in place.
type Expr interface {
	// unroll lowers this node given a Unroller carrying the allocators for
	// the current resolve, returning the ops needed to compute its value
	// and the operand that holds that value once those ops have run.
	unroll(u *Unroller) ([]ir.Op, ir.Operand, error)
}

// isLeaf reports whether e is a leaf (score/data/literal), as opposed to an
// internal node ("Operation" in the original source). Used by the
// commutative-operand tie-break (spec §4.1) to tell "a non-Operation leaf"
// from "an Operation".
func isLeaf(e Expr) bool {
	switch e.(type) {
	case *ScoreExpr, *DataExpr, *LitExpr:
		return true
	default:
		return false
	}
}

// ScoreExpr is a leaf wrapping a score reference.
type ScoreExpr struct {
	Ref ir.ScoreRef
}

func Score(holder, objective string) *ScoreExpr {
	return &ScoreExpr{Ref: ir.NewScore(holder, objective)}
}

func (s *ScoreExpr) unroll(*Unroller) ([]ir.Op, ir.Operand, error) {
	return nil, s.Ref, nil
}

// DataExpr is a leaf wrapping a data reference.
type DataExpr struct {
	Ref ir.DataRef
}

func Data(kind ir.DataKind, target string) *DataExpr {
	return &DataExpr{Ref: ir.NewData(kind, target)}
}

func DataFrom(ref ir.DataRef) *DataExpr {
	return &DataExpr{Ref: ref}
}

func (d *DataExpr) unroll(*Unroller) ([]ir.Op, ir.Operand, error) {
	return nil, d.Ref, nil
}

// Child, Index, All and Filtered let callers keep composing a data path
// fluently from a DataExpr the way the original DataSource's dynamic
// accessors did (spec §9), but through typed methods instead.
func (d *DataExpr) Child(name string) *DataExpr       { return &DataExpr{Ref: d.Ref.Child(name)} }
func (d *DataExpr) Index(i int) *DataExpr             { return &DataExpr{Ref: d.Ref.Index(i)} }
func (d *DataExpr) All() *DataExpr                    { return &DataExpr{Ref: d.Ref.All()} }
func (d *DataExpr) Filtered(m map[string]ir.NbtValue) *DataExpr {
	return &DataExpr{Ref: d.Ref.Filtered(m)}
}
func (d *DataExpr) With(scale float64, nbtType ir.TypeTag) *DataExpr {
	return &DataExpr{Ref: d.Ref.With(scale, nbtType)}
}

// LitExpr is a leaf wrapping a constant value.
type LitExpr struct {
	Value ir.Literal
}

func Int(v int64) *LitExpr     { return &LitExpr{Value: ir.IntLiteral(v)} }
func Float(v float64) *LitExpr { return &LitExpr{Value: ir.FloatLiteral(v)} }

func (l *LitExpr) unroll(*Unroller) ([]ir.Op, ir.Operand, error) {
	return nil, l.Value, nil
}

// coerce wraps a bare Go number into a LitExpr, the Go analogue of
// Operation.create's "if not isinstance(former, ExpressionNode): former =
// Literal.create(former)". Passing anything other than an Expr, an int, an
// int64, or a float64 is a programmer error and panics immediately rather
// than silently producing a broken tree — this runs at tree-construction
// time, never inside resolve(), so it cannot surface as a resolve error.
func coerce(v any) Expr {
	switch t := v.(type) {
	case Expr:
		return t
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	default:
		panic("exprcore: cannot use value of unsupported type as an expression operand")
	}
}
