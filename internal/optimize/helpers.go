package optimize

import "github.com/mcboltdev/exprcore/internal/ir"

// readOperands returns every operand an op reads from (not writes to),
// used by validate and by the use-counting helpers the collapsing rules
// rely on.
func readOperands(op ir.Op) []ir.Operand {
	switch o := op.(type) {
	case ir.ScoreOp:
		return []ir.Operand{o.Src}
	case ir.DataSetOp:
		return []ir.Operand{o.Src}
	case ir.DataGetOp:
		return []ir.Operand{o.Src}
	case ir.DataMergeOp:
		return []ir.Operand{o.Src}
	case ir.DataInsertOp:
		return []ir.Operand{o.Src}
	case ir.DataRemoveOp:
		return nil
	case ir.IfOp:
		out := []ir.Operand{o.Cond.Left, o.Cond.Right}
		out = append(out, readOperands(o.Body)...)
		if d, ok := writeDestination(o.Body); ok {
			out = append(out, d)
		}
		return out
	default:
		return nil
	}
}

// writeDestination returns the operand an op writes to, if any.
func writeDestination(op ir.Op) (ir.Operand, bool) {
	switch o := op.(type) {
	case ir.ScoreOp:
		return o.Dst, true
	case ir.DataSetOp:
		return o.Dst, true
	case ir.DataGetOp:
		return o.Dst, true
	case ir.DataMergeOp:
		return o.Dst, true
	case ir.DataInsertOp:
		return o.Dst, true
	case ir.IfOp:
		return writeDestination(o.Body)
	default:
		return nil, false
	}
}

// operandEqual reports structural equality between two operands,
// dispatching to each concrete type's own Equal method — operands are
// "all value-typed and hashable" (spec §3), never compared by identity.
func operandEqual(a, b ir.Operand) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.OperandKind() != b.OperandKind() {
		return false
	}
	switch av := a.(type) {
	case ir.ScoreRef:
		return av.Equal(b.(ir.ScoreRef))
	case ir.DataRef:
		return av.Equal(b.(ir.DataRef))
	case ir.Literal:
		bv := b.(ir.Literal)
		return av.Value.Equal(bv.Value)
	default:
		return false
	}
}

// scoreUseCount counts how many times score s is read across ops[from:],
// the "use-count" the noncommutative/commutative set-collapsing rules and
// set_and_get_cleanup key their rewrites on (spec §4.3 rules 6, 7, 12).
func scoreUseCount(ops []ir.Op, from int, s ir.ScoreRef) int {
	n := 0
	for _, op := range ops[from:] {
		for _, r := range readOperands(op) {
			if sr, ok := r.(ir.ScoreRef); ok && sr.Equal(s) {
				n++
			}
		}
	}
	return n
}

// isTempScore reports whether operand is a compiler-allocated TempScore.
func isTempScore(operand ir.Operand) (ir.ScoreRef, bool) {
	sr, ok := operand.(ir.ScoreRef)
	return sr, ok && sr.Kind == ir.ScoreTemp
}

// asScoreOp is a convenience type-assertion helper used throughout the
// window-scanning rules.
func asScoreOp(op ir.Op) (ir.ScoreOp, bool) {
	s, ok := op.(ir.ScoreOp)
	return s, ok
}

// asConstScore reports whether operand is an interned constant holder and
// returns its integer value.
func asConstScore(operand ir.Operand) (int64, bool) {
	sr, ok := operand.(ir.ScoreRef)
	if !ok || sr.Kind != ir.ScoreConst {
		return 0, false
	}
	return sr.ConstValue, true
}

// asIntLiteral reports whether operand is an integer literal.
func asIntLiteral(operand ir.Operand) (int64, bool) {
	lit, ok := operand.(ir.Literal)
	if !ok {
		return 0, false
	}
	return lit.AsInt()
}
