package unroll

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcboltdev/exprcore/internal/alloc"
	"github.com/mcboltdev/exprcore/internal/ir"
)

func newUnroller() *Unroller {
	return New(
		alloc.NewTempAllocator("bolt.expr.temp"),
		alloc.NewConstAllocator("bolt.expr.const"),
		alloc.NewTempDataAllocator("bolt.expr:temp"),
	)
}

func TestAddSwapsLeafOperationOrderForAccumulation(t *testing.T) {
	inner := Add(Score("@s", "obj"), 1)
	outer := Add(5, inner) // leaf first, Operation second in source order
	b := outer
	require.Equal(t, inner, b.Former, "commutative tie-break must place the Operation as former")
	require.Equal(t, Int(5), b.Latter)
}

func TestSubDoesNotSwap(t *testing.T) {
	inner := Add(Score("@s", "obj"), 1)
	outer := Sub(5, inner)
	b := outer
	require.Equal(t, Int(5), b.Former, "non-commutative Sub must preserve source operand order")
}

func TestMinDoesNotParticipateInSwapTieBreak(t *testing.T) {
	inner := Add(Score("@s", "obj"), 1)
	result := Min(5, inner)
	b := result.(*BinaryExpr)
	require.Equal(t, Int(5), b.Former, "Min must not apply the Add/Multiply operand-swap tie-break")
}

func TestMinFoldsPureLiteralArgsHostSide(t *testing.T) {
	result := Min(5, 3, 9)
	lit, ok := result.(*LitExpr)
	require.True(t, ok, "an all-literal min() must fold to a single literal, not a BinaryExpr chain")
	v, _ := lit.Value.AsInt()
	require.Equal(t, int64(3), v)
}

func TestEnsureScoreOperandMaterializesDataRefViaDataGet(t *testing.T) {
	u := newUnroller()
	data := ir.NewData(ir.DataStorage, "ns:x").Child("a")
	ops, operand := ensureScoreOperand(u, nil, data)
	require.Len(t, ops, 1)
	get, ok := ops[0].(ir.DataGetOp)
	require.True(t, ok)
	require.Equal(t, data, get.Src)
	require.Equal(t, get.Dst, operand)
}

func TestBinaryUnrollAllocatesFreshTempForPlainScoreOperand(t *testing.T) {
	u := newUnroller()
	expr := Add(Score("@s", "obj"), 5)
	ops, tail, err := expr.unroll(u)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	setOp := ops[0].(ir.ScoreOp)
	require.Equal(t, ir.OpSet, setOp.OpK)
	require.Equal(t, ir.ScoreTemp, setOp.Dst.Kind)
	addOp := ops[1].(ir.ScoreOp)
	require.Equal(t, setOp.Dst, addOp.Dst)
	require.Equal(t, setOp.Dst, tail)
}

func TestAbsDesugarsToIfLessThanZeroMultiplyNegativeOne(t *testing.T) {
	u := newUnroller()
	ops, _, err := Abs(Score("@s", "obj")).unroll(u)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	ifOp, ok := ops[1].(ir.IfOp)
	require.True(t, ok)
	require.Equal(t, ir.CmpLT, ifOp.Cond.CmpK)
	body := ifOp.Body.(ir.ScoreOp)
	require.Equal(t, ir.OpMul, body.OpK)
	v, _ := body.Src.(ir.Literal).AsInt()
	require.Equal(t, int64(-1), v)
}

func TestTempCounterResetsBetweenUnrollCalls(t *testing.T) {
	u := newUnroller()
	_, _, err := u.Unroll(Add(Score("@s", "obj"), 1))
	require.NoError(t, err)
	ops, _, err := u.Unroll(Add(Score("@s", "obj2"), 1))
	require.NoError(t, err)
	setOp := ops[0].(ir.ScoreOp)
	require.Equal(t, 0, setOp.Dst.TempIndex)
}

func TestKeyIsStableForStructurallyIdenticalTrees(t *testing.T) {
	a := Set(Score("@s", "obj"), Add(Score("@s", "obj"), 5))
	b := Set(Score("@s", "obj"), Add(Score("@s", "obj"), 5))
	require.Equal(t, Key(a), Key(b))
}

func TestKeyDiffersForDifferentLiterals(t *testing.T) {
	a := Set(Score("@s", "obj"), Add(Score("@s", "obj"), 5))
	b := Set(Score("@s", "obj"), Add(Score("@s", "obj"), 6))
	require.NotEqual(t, Key(a), Key(b))
}

func TestKeyDiffersForDifferentDataScale(t *testing.T) {
	a := Data(ir.DataStorage, "ns:x").Child("a")
	b := a.With(2, ir.TypeInt)
	require.NotEqual(t, Key(a), Key(b))
}
