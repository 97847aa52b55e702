package unroll

import (
	"strconv"
	"strings"

	"github.com/mcboltdev/exprcore/internal/ir"
)

// Key renders e as a content-addressable string: structurally identical
// trees (same node kinds, same leaf values, same shape) always produce the
// same key, and no two distinguishable trees collide, so it is safe to use
// as a ResolveCache lookup key alongside the session's const/temp objective
// names. Every branch wraps its children in its own delimited tag, so
// sibling concatenation can never be ambiguous.
func Key(e Expr) string {
	var b strings.Builder
	writeKey(&b, e)
	return b.String()
}

func writeKey(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *ScoreExpr:
		b.WriteString("S(")
		b.WriteString(n.Ref.Holder)
		b.WriteByte(' ')
		b.WriteString(n.Ref.Objective)
		b.WriteByte(')')
	case *DataExpr:
		b.WriteString("D(")
		b.WriteString(n.Ref.Kind.String())
		b.WriteByte(' ')
		b.WriteString(n.Ref.Target)
		b.WriteByte(' ')
		b.WriteString(n.Ref.Path.String())
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(n.Ref.Scale, 'g', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(int(n.Ref.NbtType)))
		b.WriteByte(')')
	case *LitExpr:
		b.WriteString("L(")
		b.WriteString(n.Value.Hash())
		b.WriteByte(')')
	case *BinaryExpr:
		b.WriteString("B")
		b.WriteString(strconv.Itoa(int(n.OpK)))
		b.WriteByte('(')
		writeKey(b, n.Former)
		b.WriteByte(',')
		writeKey(b, n.Latter)
		b.WriteByte(')')
	case *SetExpr:
		b.WriteString("=(")
		writeKey(b, n.Dst)
		b.WriteByte(',')
		writeKey(b, n.Value)
		b.WriteByte(')')
	case *CompareExpr:
		b.WriteString("C")
		b.WriteString(strconv.Itoa(int(n.CmpK)))
		b.WriteByte('(')
		writeKey(b, n.Left)
		b.WriteByte(',')
		writeKey(b, n.Right)
		b.WriteByte(')')
	case *IfExpr:
		b.WriteString("If(")
		writeKey(b, n.Cond)
		b.WriteByte(',')
		writeKey(b, n.Body)
		b.WriteByte(')')
	case *AbsExpr:
		b.WriteString("Abs(")
		writeKey(b, n.Value)
		b.WriteByte(')')
	case *InsertExpr:
		b.WriteString("Ins")
		b.WriteString(strconv.Itoa(int(n.Mode)))
		b.WriteByte('(')
		writeKey(b, n.Dst)
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(n.Index))
		b.WriteByte(',')
		writeKey(b, n.Value)
		b.WriteByte(')')
	case *MergeExpr:
		b.WriteString("Mg")
		if n.Root {
			b.WriteByte('R')
		}
		b.WriteByte('(')
		writeKey(b, n.Dst)
		b.WriteByte(',')
		writeKey(b, n.Value)
		b.WriteByte(')')
	case *RemoveExpr:
		b.WriteString("Rm(")
		writeKey(b, n.Target)
		b.WriteByte(')')
	default:
		// Unreachable: Expr's only implementations are the ones above, all
		// defined in this package.
		b.WriteString("?")
	}
}
