package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePathSimpleChain(t *testing.T) {
	p, err := ParsePath("a.b[0][]")
	require.NoError(t, err)
	require.Equal(t, NbtPath{NamedKey("a"), NamedKey("b"), ListIndex(0), AllIndex()}, p)
}

func TestParsePathCompoundFilter(t *testing.T) {
	p, err := ParsePath(`items[{id:1}]`)
	require.NoError(t, err)
	require.Len(t, p, 2)
	require.Equal(t, AccCompoundMatch, p[1].Kind)
	require.Equal(t, IntValue(1), p[1].Match.Compound["id"])
}

func TestDataRefChildPropagatesTypeHint(t *testing.T) {
	ref := NewData(DataStorage, "ns:x").WithChildTypes(map[string]TypeTag{"count": TypeInt})
	child := ref.Child("count")
	require.Equal(t, TypeInt, child.NbtType)
}

func TestDataRefEqualIgnoresChildTypesHint(t *testing.T) {
	a := NewData(DataStorage, "ns:x").Child("a")
	b := NewData(DataStorage, "ns:x").WithChildTypes(map[string]TypeTag{"a": TypeInt}).Child("a")
	require.True(t, a.Equal(b))
}

func TestScoreRefEqualIgnoresKind(t *testing.T) {
	plain := NewScore("$s0", "obj")
	tmp := ScoreRef{Holder: "$s0", Objective: "obj", Kind: ScoreTemp}
	require.True(t, plain.Equal(tmp))
}

func TestLiteralAsIntRejectsNonIntegerKinds(t *testing.T) {
	_, ok := FloatLiteral(1.5).AsInt()
	require.False(t, ok)
	v, ok := IntLiteral(7).AsInt()
	require.True(t, ok)
	require.Equal(t, int64(7), v)
}

func TestNbtValueEqualUsesContentNotIdentity(t *testing.T) {
	a := CompoundValue(map[string]NbtValue{"x": IntValue(1)})
	b := CompoundValue(map[string]NbtValue{"x": IntValue(1)})
	require.True(t, a.Equal(b))
}
