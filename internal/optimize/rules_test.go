package optimize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcboltdev/exprcore/internal/alloc"
	"github.com/mcboltdev/exprcore/internal/ir"
)

func newCtx() *Context {
	return &Context{
		Temp:     alloc.NewTempAllocator("bolt.expr.temp"),
		TempData: alloc.NewTempDataAllocator("bolt.expr:temp"),
		Const:    alloc.NewConstAllocator("bolt.expr.const"),
	}
}

func score(holder string) ir.ScoreRef { return ir.NewScore(holder, "obj") }
func temp(i int) ir.ScoreRef {
	return ir.ScoreRef{Holder: "$s" + string(rune('0'+i)), Objective: "bolt.expr.temp", Kind: ir.ScoreTemp, TempIndex: i}
}

func TestCommutativeSetCollapsing(t *testing.T) {
	ops := []ir.Op{
		ir.ScoreOp{OpK: ir.OpSet, Dst: temp(0), Src: score("@s")},
		ir.ScoreOp{OpK: ir.OpAdd, Dst: temp(0), Src: ir.IntLiteral(5)},
		ir.ScoreOp{OpK: ir.OpSet, Dst: score("@s"), Src: temp(0)},
	}
	out := commutativeSetCollapsing(ops, newCtx())
	require.Len(t, out, 2)
	require.Equal(t, ir.OpSet, out[0].Kind())
	require.Equal(t, ir.OpAdd, out[1].Kind())
}

func TestSetToSelfRemoval(t *testing.T) {
	ops := []ir.Op{
		ir.ScoreOp{OpK: ir.OpSet, Dst: score("@s"), Src: score("@s")},
		ir.ScoreOp{OpK: ir.OpAdd, Dst: score("@s"), Src: ir.IntLiteral(5)},
	}
	out := setToSelfRemoval(ops, newCtx())
	require.Len(t, out, 1)
}

func TestMultiplyDivideByOneRemoval(t *testing.T) {
	ops := []ir.Op{
		ir.ScoreOp{OpK: ir.OpMul, Dst: score("@s"), Src: ir.IntLiteral(1)},
		ir.ScoreOp{OpK: ir.OpMul, Dst: score("@s"), Src: ir.IntLiteral(-1)},
	}
	out := multiplyDivideByOneRemoval(ops, newCtx())
	require.Len(t, out, 1)
	require.Equal(t, ir.OpMul, out[0].Kind())
}

func TestAddSubtractByZeroRemoval(t *testing.T) {
	ops := []ir.Op{
		ir.ScoreOp{OpK: ir.OpAdd, Dst: score("@s"), Src: ir.IntLiteral(0)},
		ir.ScoreOp{OpK: ir.OpSub, Dst: score("@s"), Src: ir.IntLiteral(0)},
		ir.ScoreOp{OpK: ir.OpAdd, Dst: score("@s"), Src: ir.IntLiteral(3)},
	}
	out := addSubtractByZeroRemoval(ops, newCtx())
	require.Len(t, out, 1)
}

func TestSetAndGetCleanupDropsDeadTemp(t *testing.T) {
	ops := []ir.Op{
		ir.ScoreOp{OpK: ir.OpSet, Dst: temp(0), Src: score("@s")},
		ir.ScoreOp{OpK: ir.OpSet, Dst: score("@s2"), Src: ir.IntLiteral(1)},
	}
	out := setAndGetCleanup(ops, newCtx())
	require.Len(t, out, 1)
	require.Equal(t, score("@s2"), out[0].(ir.ScoreOp).Dst)
}

func TestLiteralToConstantReplacementSkipsSetAddSub(t *testing.T) {
	ctx := newCtx()
	ops := []ir.Op{
		ir.ScoreOp{OpK: ir.OpSet, Dst: score("@s"), Src: ir.IntLiteral(9)},
		ir.ScoreOp{OpK: ir.OpMul, Dst: score("@s"), Src: ir.IntLiteral(9)},
	}
	out := literalToConstantReplacement(ops, ctx)
	setOp := out[0].(ir.ScoreOp)
	mulOp := out[1].(ir.ScoreOp)
	_, stillLiteral := setOp.Src.(ir.Literal)
	require.True(t, stillLiteral)
	constRef, isConst := mulOp.Src.(ir.ScoreRef)
	require.True(t, isConst)
	require.Equal(t, ir.ScoreConst, constRef.Kind)
	require.True(t, ctx.Const.Has(9))
}

func TestLiteralToConstantReplacementReachesIntoIfBody(t *testing.T) {
	ctx := newCtx()
	ops := []ir.Op{
		ir.IfOp{
			Cond: ir.CompareOp{CmpK: ir.CmpLT, Left: temp(0), Right: ir.IntLiteral(0)},
			Body: ir.ScoreOp{OpK: ir.OpMul, Dst: temp(0), Src: ir.IntLiteral(-1)},
		},
	}
	out := literalToConstantReplacement(ops, ctx)
	ifOp := out[0].(ir.IfOp)
	body := ifOp.Body.(ir.ScoreOp)
	constRef, isConst := body.Src.(ir.ScoreRef)
	require.True(t, isConst)
	require.Equal(t, int64(-1), constRef.ConstValue)
}

func TestOutputScoreReplacementFoldsDirectWriterIntoDst(t *testing.T) {
	get := ir.DataGetOp{Dst: temp(0), Src: ir.NewData(ir.DataStorage, "ns:x").Child("a"), Scale: 1}
	ops := []ir.Op{
		get,
		ir.ScoreOp{OpK: ir.OpSet, Dst: score("@s"), Src: temp(0)},
	}
	out := outputScoreReplacement(ops, newCtx())
	require.Len(t, out, 1)
	folded := out[0].(ir.DataGetOp)
	require.Equal(t, score("@s"), folded.Dst)
}

// TestOutputScoreReplacementLeavesConditionalWriterAlone guards the bug
// where a preceding IfOp's conditional write was folded into dst even
// though nothing in the IfOp's "never run" branch actually writes it,
// which both discarded the trailing Set and left dst entirely unwritten
// (the shape Abs() produces: Set(t,x); If(t<0, Mul(t,-1)); Set(dst,t)).
func TestOutputScoreReplacementLeavesConditionalWriterAlone(t *testing.T) {
	ifOp := ir.IfOp{
		Cond: ir.CompareOp{CmpK: ir.CmpLT, Left: temp(0), Right: ir.IntLiteral(0)},
		Body: ir.ScoreOp{OpK: ir.OpMul, Dst: temp(0), Src: ir.IntLiteral(-1)},
	}
	ops := []ir.Op{
		ifOp,
		ir.ScoreOp{OpK: ir.OpSet, Dst: score("@s"), Src: temp(0)},
	}
	out := outputScoreReplacement(ops, newCtx())
	require.Len(t, out, 2, "a conditional write must not be folded away")
	require.Equal(t, ifOp, out[0])
	trailingSet := out[1].(ir.ScoreOp)
	require.Equal(t, score("@s"), trailingSet.Dst)
	require.Equal(t, temp(0), trailingSet.Src)
}

func TestDataSetScalingFoldsScaledMultiplyIntoDataSet(t *testing.T) {
	dst := ir.NewData(ir.DataStorage, "ns:x").Child("a")
	ops := []ir.Op{
		ir.ScoreOp{OpK: ir.OpSet, Dst: temp(0), Src: score("@s")},
		ir.ScoreOp{OpK: ir.OpMul, Dst: temp(0), Src: ir.IntLiteral(2)},
		ir.DataSetOp{Dst: dst, Src: temp(0)},
	}
	out := dataSetScaling(ops, newCtx())
	require.Len(t, out, 1)
	set := out[0].(ir.DataSetOp)
	require.Equal(t, 2.0, set.Dst.Scale)
	require.Equal(t, score("@s"), set.Src)
}
